package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"

	"translatoroverlay/internal/ports"
)

const portAudioFramesPerBuffer = 1024

// PortAudioCapture records from a PortAudio input device.
type PortAudioCapture struct {
	logger *slog.Logger
}

func NewPortAudioCapture(logger *slog.Logger) *PortAudioCapture {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortAudioCapture{logger: logger}
}

func (c *PortAudioCapture) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	device, err := resolveDevice(cfg.InputDevice)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, err
	}

	params := portaudio.LowLatencyParameters(device, nil)
	params.Input.Channels = 1
	params.Output.Channels = 0
	params.SampleRate = float64(cfg.SampleRate)
	params.FramesPerBuffer = portAudioFramesPerBuffer

	buffer := make([]int16, portAudioFramesPerBuffer)
	stream, err := portaudio.OpenStream(params, buffer)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open input stream on %q: %w", device.Name, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}
	c.logger.Debug("microphone capture started", "device", device.Name, "sample_rate", cfg.SampleRate)

	pr, pw := io.Pipe()
	s := &portAudioSession{
		stream: stream,
		buffer: buffer,
		reader: pr,
		writer: pw,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.pump()
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop()
		case <-s.stop:
		}
	}()
	return s, nil
}

func resolveDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" || name == "default" {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("no default input device: %w", err)
		}
		return device, nil
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list audio devices: %w", err)
	}
	device := pickInputDevice(devices, name)
	if device == nil {
		return nil, fmt.Errorf("input device %q not found", name)
	}
	return device, nil
}

// pickInputDevice prefers an exact name match, then a case-insensitive
// substring match, among devices that have input channels.
func pickInputDevice(devices []*portaudio.DeviceInfo, name string) *portaudio.DeviceInfo {
	var partial *portaudio.DeviceInfo
	needle := strings.ToLower(name)
	for _, d := range devices {
		if d == nil || d.MaxInputChannels <= 0 {
			continue
		}
		if d.Name == name {
			return d
		}
		if partial == nil && strings.Contains(strings.ToLower(d.Name), needle) {
			partial = d
		}
	}
	return partial
}

type portAudioSession struct {
	stream *portaudio.Stream
	buffer []int16

	reader *io.PipeReader
	writer *io.PipeWriter

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	stopErr  error
}

func (s *portAudioSession) pump() {
	defer close(s.done)
	out := make([]byte, len(s.buffer)*2)
	for {
		select {
		case <-s.stop:
			_ = s.writer.Close()
			return
		default:
		}
		if err := s.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
			_ = s.writer.CloseWithError(fmt.Errorf("portaudio read: %w", err))
			return
		}
		for i, v := range s.buffer {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
		}
		if _, err := s.writer.Write(out); err != nil {
			return
		}
	}
}

func (s *portAudioSession) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *portAudioSession) Close() error {
	return s.Stop()
}

func (s *portAudioSession) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stop)
		// Unblock a pending pipe write before waiting for the pump.
		_ = s.reader.Close()
		<-s.done
		if err := s.stream.Stop(); err != nil {
			s.stopErr = err
		}
		if err := s.stream.Close(); err != nil && s.stopErr == nil {
			s.stopErr = err
		}
		if err := portaudio.Terminate(); err != nil && s.stopErr == nil {
			s.stopErr = err
		}
	})
	return s.stopErr
}
