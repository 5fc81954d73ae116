package listener

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"translatoroverlay/internal/ports"
)

const (
	testRate  = 16000
	testChunk = 2048
)

// pcm builds count chunks of a square wave whose RMS equals amplitude.
func pcm(amplitude int16, count int) []byte {
	samples := count * testChunk / 2
	out := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := amplitude
		if i%2 == 1 {
			v = -amplitude
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func stream(parts ...[]byte) *bytes.Reader {
	return bytes.NewReader(bytes.Join(parts, nil))
}

func newTestListener(parts ...[]byte) *Listener {
	return New(stream(parts...), DefaultConfig(testRate))
}

func TestCalibrateRaisesThresholdTowardsAmbientNoise(t *testing.T) {
	t.Parallel()

	l := newTestListener(pcm(1000, 20))
	if err := l.Calibrate(context.Background(), time.Second); err != nil {
		t.Fatalf("calibrate failed: %v", err)
	}
	if got := l.Threshold(); got < 1250 || got > 1350 {
		t.Fatalf("unexpected threshold after calibration: %.1f", got)
	}
}

func TestListenTimesOutWithoutSpeech(t *testing.T) {
	t.Parallel()

	l := newTestListener(pcm(100, 40))
	_, err := l.Listen(context.Background(), 500*time.Millisecond, 5*time.Second)
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("expected wait timeout, got %v", err)
	}
}

func TestListenRecordsPhraseWithPrerollAndTrimmedPause(t *testing.T) {
	t.Parallel()

	l := newTestListener(pcm(100, 8), pcm(5000, 16), pcm(100, 32))
	segment, err := l.Listen(context.Background(), 2*time.Second, 5*time.Second)
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	// 7 pre-roll + 16 speech + 8 kept pause chunks.
	if want := 31 * testChunk; len(segment.Data) != want {
		t.Fatalf("unexpected segment length: got %d want %d", len(segment.Data), want)
	}
	if segment.SampleRate != testRate || segment.SampleWidth != 2 {
		t.Fatalf("unexpected format: %+v", segment)
	}
}

func TestListenStopsAtPhraseLimit(t *testing.T) {
	t.Parallel()

	l := newTestListener(pcm(100, 4), pcm(5000, 64))
	segment, err := l.Listen(context.Background(), 0, time.Second)
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	if want := 20 * testChunk; len(segment.Data) != want {
		t.Fatalf("unexpected segment length: got %d want %d", len(segment.Data), want)
	}
}

func TestListenDiscardsShortBlips(t *testing.T) {
	t.Parallel()

	l := newTestListener(pcm(100, 4), pcm(5000, 2), pcm(100, 60))
	_, err := l.Listen(context.Background(), 2*time.Second, 5*time.Second)
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("expected blip to be discarded and wait to time out, got %v", err)
	}
}

func TestListenReportsStreamEnd(t *testing.T) {
	t.Parallel()

	l := newTestListener(pcm(100, 2))
	_, err := l.Listen(context.Background(), 0, 0)
	if !errors.Is(err, ErrStreamEnded) {
		t.Fatalf("expected stream end, got %v", err)
	}
}

func TestListenHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := newTestListener(pcm(100, 8))
	_, err := l.Listen(ctx, time.Second, time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestConcat(t *testing.T) {
	t.Parallel()

	if got := Concat(nil); len(got.Data) != 0 {
		t.Fatalf("expected empty audio")
	}

	one := ports.Audio{Data: []byte{1, 2}, SampleRate: 8000, SampleWidth: 2}
	if got := Concat([]ports.Audio{one}); &got.Data[0] != &one.Data[0] {
		t.Fatalf("expected single segment to pass through")
	}

	two := ports.Audio{Data: []byte{3, 4}, SampleRate: 16000, SampleWidth: 2}
	got := Concat([]ports.Audio{one, two})
	if !bytes.Equal(got.Data, []byte{1, 2, 3, 4}) || got.SampleRate != 8000 {
		t.Fatalf("unexpected concat result: %+v", got)
	}
}

func TestDuration(t *testing.T) {
	t.Parallel()

	a := ports.Audio{Data: make([]byte, 32000), SampleRate: 16000, SampleWidth: 2}
	if got := Duration(a); got != time.Second {
		t.Fatalf("unexpected duration: %s", got)
	}
	if got := Duration(ports.Audio{}); got != 0 {
		t.Fatalf("expected zero duration, got %s", got)
	}
}

func TestConsumedTracksAudioRead(t *testing.T) {
	t.Parallel()

	l := newTestListener(pcm(100, 40))
	if _, err := l.Listen(context.Background(), 500*time.Millisecond, 0); !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("expected wait timeout, got %v", err)
	}
	// Seven 64ms chunks are read before the wait times out.
	if got, want := l.Consumed(), 7*64*time.Millisecond; got != want {
		t.Fatalf("unexpected consumed duration: got %s want %s", got, want)
	}
}
