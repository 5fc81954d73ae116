package listener

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"translatoroverlay/internal/ports"
)

var (
	// ErrWaitTimeout means no phrase started before the wait timeout.
	ErrWaitTimeout = errors.New("listening timed out while waiting for phrase to start")
	// ErrStreamEnded means the audio source closed before a phrase started.
	ErrStreamEnded = errors.New("audio stream ended")
)

const sampleWidth = 2

// Config tunes the energy-based voice activity detector.
type Config struct {
	SampleRate int
	// ChunkSize is the number of bytes read per buffer.
	ChunkSize int

	EnergyThreshold     float64
	DynamicEnergy       bool
	DynamicDamping      float64
	DynamicRatio        float64
	PauseThreshold      time.Duration
	PhraseThreshold     time.Duration
	NonSpeakingDuration time.Duration
}

// DefaultConfig mirrors the thresholds desktop dictation tools commonly use.
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate:          sampleRate,
		ChunkSize:           2048,
		EnergyThreshold:     300,
		DynamicEnergy:       true,
		DynamicDamping:      0.15,
		DynamicRatio:        1.5,
		PauseThreshold:      800 * time.Millisecond,
		PhraseThreshold:     300 * time.Millisecond,
		NonSpeakingDuration: 500 * time.Millisecond,
	}
}

// Listener detects phrases in a mono s16le PCM stream.
type Listener struct {
	src       io.Reader
	cfg       Config
	threshold float64
	samples   []float64
	consumed  int
}

func New(src io.Reader, cfg Config) *Listener {
	d := DefaultConfig(cfg.SampleRate)
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.ChunkSize < 2*sampleWidth {
		cfg.ChunkSize = d.ChunkSize
	}
	cfg.ChunkSize -= cfg.ChunkSize % sampleWidth
	if cfg.EnergyThreshold <= 0 {
		cfg.EnergyThreshold = d.EnergyThreshold
	}
	if cfg.DynamicDamping <= 0 {
		cfg.DynamicDamping = d.DynamicDamping
	}
	if cfg.DynamicRatio <= 0 {
		cfg.DynamicRatio = d.DynamicRatio
	}
	if cfg.PauseThreshold <= 0 {
		cfg.PauseThreshold = d.PauseThreshold
	}
	if cfg.NonSpeakingDuration <= 0 {
		cfg.NonSpeakingDuration = d.NonSpeakingDuration
	}
	if cfg.NonSpeakingDuration > cfg.PauseThreshold {
		cfg.NonSpeakingDuration = cfg.PauseThreshold
	}
	return &Listener{
		src:       src,
		cfg:       cfg,
		threshold: cfg.EnergyThreshold,
		samples:   make([]float64, cfg.ChunkSize/sampleWidth),
	}
}

// Threshold is the current speech energy threshold.
func (l *Listener) Threshold() float64 {
	return l.threshold
}

// Consumed is the amount of audio read from the source so far.
func (l *Listener) Consumed() time.Duration {
	samples := l.consumed / sampleWidth
	return time.Duration(samples) * time.Second / time.Duration(l.cfg.SampleRate)
}

// Calibrate adjusts the energy threshold to the ambient noise level over d.
func (l *Listener) Calibrate(ctx context.Context, d time.Duration) error {
	spb := l.secondsPerBuffer()
	elapsed := 0.0
	for {
		elapsed += spb
		if elapsed > d.Seconds() {
			return nil
		}
		buf, err := l.read(ctx)
		if err != nil {
			return err
		}
		l.adjust(l.energy(buf), spb)
	}
}

// Listen waits up to timeout for a phrase to start and records it until a
// pause or until phraseLimit elapses. A zero timeout or phraseLimit means no
// limit. Phrases shorter than the phrase threshold are discarded.
func (l *Listener) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (ports.Audio, error) {
	spb := l.secondsPerBuffer()
	pauseBuffers := buffersFor(l.cfg.PauseThreshold, spb)
	phraseBuffers := buffersFor(l.cfg.PhraseThreshold, spb)
	nonSpeakingBuffers := buffersFor(l.cfg.NonSpeakingDuration, spb)

	elapsed := 0.0
	var (
		frames     [][]byte
		pauseCount int
	)
	for {
		frames = frames[:0]

		for {
			elapsed += spb
			if timeout > 0 && elapsed > timeout.Seconds() {
				return ports.Audio{}, ErrWaitTimeout
			}
			buf, err := l.read(ctx)
			if err != nil {
				return ports.Audio{}, err
			}
			frames = append(frames, buf)
			if len(frames) > nonSpeakingBuffers {
				frames = frames[1:]
			}
			e := l.energy(buf)
			if e > l.threshold {
				break
			}
			if l.cfg.DynamicEnergy {
				l.adjust(e, spb)
			}
		}

		pauseCount = 0
		phraseCount := 0
		phraseStart := elapsed
		streamEnded := false
		for {
			elapsed += spb
			if phraseLimit > 0 && elapsed-phraseStart > phraseLimit.Seconds() {
				break
			}
			buf, err := l.read(ctx)
			if err != nil {
				if errors.Is(err, ErrStreamEnded) {
					streamEnded = true
					break
				}
				return ports.Audio{}, err
			}
			frames = append(frames, buf)
			phraseCount++
			if l.energy(buf) > l.threshold {
				pauseCount = 0
			} else {
				pauseCount++
			}
			if pauseCount > pauseBuffers {
				break
			}
		}

		phraseCount -= pauseCount
		if phraseCount >= phraseBuffers || streamEnded {
			break
		}
	}

	for i := 0; i < pauseCount-nonSpeakingBuffers && len(frames) > 0; i++ {
		frames = frames[:len(frames)-1]
	}

	size := 0
	for _, f := range frames {
		size += len(f)
	}
	data := make([]byte, 0, size)
	for _, f := range frames {
		data = append(data, f...)
	}
	return ports.Audio{Data: data, SampleRate: l.cfg.SampleRate, SampleWidth: sampleWidth}, nil
}

// Concat joins segments into one block using the first segment's format.
func Concat(segments []ports.Audio) ports.Audio {
	switch len(segments) {
	case 0:
		return ports.Audio{}
	case 1:
		return segments[0]
	}
	size := 0
	for _, s := range segments {
		size += len(s.Data)
	}
	data := make([]byte, 0, size)
	for _, s := range segments {
		data = append(data, s.Data...)
	}
	return ports.Audio{Data: data, SampleRate: segments[0].SampleRate, SampleWidth: segments[0].SampleWidth}
}

// Duration returns the playback length of a.
func Duration(a ports.Audio) time.Duration {
	if a.SampleRate <= 0 || a.SampleWidth <= 0 {
		return 0
	}
	samples := len(a.Data) / a.SampleWidth
	return time.Duration(samples) * time.Second / time.Duration(a.SampleRate)
}

func (l *Listener) read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := make([]byte, l.cfg.ChunkSize)
	n, err := io.ReadFull(l.src, buf)
	l.consumed += n
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.ErrClosedPipe) {
			return nil, ErrStreamEnded
		}
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return buf[:n], nil
}

// energy is the RMS of the buffer's int16 samples.
func (l *Listener) energy(buf []byte) float64 {
	n := len(buf) / sampleWidth
	if n == 0 {
		return 0
	}
	samples := l.samples[:n]
	for i := 0; i < n; i++ {
		samples[i] = float64(int16(binary.LittleEndian.Uint16(buf[i*sampleWidth:])))
	}
	return math.Sqrt(floats.Dot(samples, samples) / float64(n))
}

func (l *Listener) adjust(energy, spb float64) {
	damping := math.Pow(l.cfg.DynamicDamping, spb)
	target := energy * l.cfg.DynamicRatio
	l.threshold = l.threshold*damping + target*(1-damping)
}

func (l *Listener) secondsPerBuffer() float64 {
	return float64(l.cfg.ChunkSize/sampleWidth) / float64(l.cfg.SampleRate)
}

func buffersFor(d time.Duration, spb float64) int {
	return int(math.Ceil(d.Seconds() / spb))
}
