package main

import (
	"embed"
	"flag"
	"log/slog"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"

	"translatoroverlay/internal/config"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	console := flag.Bool("console", false, "run without the webview; overlay text is written to the log")
	flag.Parse()

	rt, err := config.LoadRuntime()
	if err != nil {
		slog.Error("failed to load runtime configuration", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: rt.LogLevel}))
	slog.SetDefault(logger)

	if *console {
		if err := runConsole(rt, logger); err != nil {
			logger.Error("console mode failed", "err", err)
			os.Exit(1)
		}
		return
	}

	app := NewApp(rt, logger)
	err = wails.Run(&options.App{
		Title:            config.AppName,
		Width:            settingsWidth,
		Height:           settingsHeight,
		Frameless:        true,
		StartHidden:      true,
		AlwaysOnTop:      true,
		BackgroundColour: &options.RGBA{R: 0, G: 0, B: 0, A: 0},
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:     app.startup,
		OnShutdown:    app.shutdown,
		OnBeforeClose: app.beforeClose,
		Bind: []interface{}{
			app,
		},
		Windows: &windows.Options{
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
		},
		Mac: &mac.Options{
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
		},
		Linux: &linux.Options{
			WindowIsTranslucent: true,
		},
	})
	if err != nil {
		logger.Error("application stopped with an error", "err", err)
		os.Exit(1)
	}
}
