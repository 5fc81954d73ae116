// Package oshotkey registers hotkey combinations with the operating system
// through golang.design/x/hotkey. On Linux that library connects to the X
// display when the package is loaded, so only the entry points import it.
package oshotkey

import (
	"fmt"
	"sync"

	xhotkey "golang.design/x/hotkey"

	"translatoroverlay/internal/hotkey"
)

// New returns an unregistered binding for combo. It satisfies
// hotkey.BindingFactory.
func New(combo hotkey.Combo) (hotkey.Binding, error) {
	key, ok := keys[combo.Key]
	if !ok {
		return nil, fmt.Errorf("%w: no key code for %q", hotkey.ErrInvalidHotkey, combo.Key)
	}
	return &binding{
		hk:      xhotkey.New(osModifiers(combo.Mods), key),
		keydown: make(chan struct{}, 1),
	}, nil
}

type binding struct {
	hk      *xhotkey.Hotkey
	keydown chan struct{}

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func (b *binding) Register() error {
	if err := b.hk.Register(); err != nil {
		return err
	}
	b.mu.Lock()
	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	go b.forward(b.hk.Keydown(), b.stop, b.done)
	b.mu.Unlock()
	return nil
}

func (b *binding) Unregister() error {
	b.mu.Lock()
	stop, done := b.stop, b.done
	b.stop, b.done = nil, nil
	b.mu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}
	return b.hk.Unregister()
}

func (b *binding) Keydown() <-chan struct{} { return b.keydown }

// forward drops presses that arrive while the previous one is still queued.
func (b *binding) forward(events <-chan xhotkey.Event, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			select {
			case b.keydown <- struct{}{}:
			default:
			}
		}
	}
}
