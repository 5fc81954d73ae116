package audio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/wav"

	"translatoroverlay/internal/ports"
)

func TestWAVDumperWritesDecodableFile(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 1200, -1200, 32767, -32768, 7}
	data := make([]byte, len(samples)*2)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}

	dir := filepath.Join(t.TempDir(), "dumps")
	path, err := NewWAVDumper(dir).Dump(ports.Audio{Data: data, SampleRate: 16000, SampleWidth: 2})
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "Capture_") || filepath.Ext(name) != ".wav" {
		t.Fatalf("unexpected dump name: %s", name)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open dump: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatalf("expected a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if dec.SampleRate != 16000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Fatalf("unexpected wav header: rate=%d chans=%d depth=%d", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("unexpected sample count: %d", len(buf.Data))
	}
	for i, v := range samples {
		if buf.Data[i] != int(v) {
			t.Fatalf("sample %d: got %d want %d", i, buf.Data[i], v)
		}
	}
}

func TestWAVDumperRejectsMissingDirAndWidth(t *testing.T) {
	t.Parallel()

	if _, err := NewWAVDumper("").Dump(ports.Audio{SampleWidth: 2}); err == nil {
		t.Fatalf("expected error without directory")
	}
	if _, err := NewWAVDumper(t.TempDir()).Dump(ports.Audio{Data: []byte{1, 2, 3}, SampleWidth: 3}); err == nil {
		t.Fatalf("expected error for 24-bit audio")
	}
}
