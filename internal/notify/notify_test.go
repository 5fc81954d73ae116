package notify

import (
	"errors"
	"testing"
)

func TestNotifierSendsAndSwallowsErrors(t *testing.T) {
	t.Parallel()

	var got []string
	n := New(nil)
	n.send = func(title, message string) error {
		got = append(got, title+": "+message)
		return errors.New("no notification daemon")
	}

	n.Notify("TranslatorOverlay", "Position changed to: Top Left")
	if len(got) != 1 || got[0] != "TranslatorOverlay: Position changed to: Top Left" {
		t.Fatalf("unexpected notifications: %q", got)
	}
}
