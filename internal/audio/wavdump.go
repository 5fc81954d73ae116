package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"translatoroverlay/internal/ports"
)

// WAVDumper writes recognized audio to Capture_<uuid>.wav files for debugging.
type WAVDumper struct {
	dir string
}

func NewWAVDumper(dir string) *WAVDumper {
	return &WAVDumper{dir: dir}
}

func (d *WAVDumper) Dump(a ports.Audio) (string, error) {
	if d.dir == "" {
		return "", errors.New("capture dump directory is not configured")
	}
	if a.SampleWidth != 2 {
		return "", fmt.Errorf("unsupported sample width %d", a.SampleWidth)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("create dump directory: %w", err)
	}

	path := filepath.Join(d.dir, "Capture_"+uuid.NewString()+".wav")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create dump file: %w", err)
	}

	samples := make([]int, len(a.Data)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(a.Data[i*2:])))
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: a.SampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}

	enc := wav.NewEncoder(f, a.SampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("finalize wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
