package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"translatoroverlay/internal/domain"
)

// ErrRollbackFailed means a new binding failed and the previous one could
// not be restored either; the action currently has no hotkey.
var ErrRollbackFailed = errors.New("failed to restore previous hotkey")

// ErrUnavailable is returned by every Bind when no platform binding
// factory was supplied, for example when running without a display.
var ErrUnavailable = errors.New("global hotkeys are not available")

// Binding is one registered global hotkey. Keydown delivers a value each
// time the combination is pressed.
type Binding interface {
	Register() error
	Unregister() error
	Keydown() <-chan struct{}
}

// BindingFactory creates an unregistered Binding for combo.
type BindingFactory func(combo Combo) (Binding, error)

func unavailable(Combo) (Binding, error) {
	return nil, ErrUnavailable
}

// Manager owns the global hotkey registrations for every action.
type Manager struct {
	newBinding BindingFactory
	logger     *slog.Logger

	mu     sync.Mutex
	active map[domain.Action]*activeBinding
}

type activeBinding struct {
	combo   Combo
	handler func()
	hk      Binding
	stop    chan struct{}
	done    chan struct{}
}

// NewManager returns a Manager that registers hotkeys through factory. A nil
// factory makes every Bind fail with ErrUnavailable.
func NewManager(factory BindingFactory, logger *slog.Logger) *Manager {
	if factory == nil {
		factory = unavailable
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		newBinding: factory,
		logger:     logger,
		active:     make(map[domain.Action]*activeBinding),
	}
}

// Bind registers combo for action, replacing any previous binding. When
// registration fails the previous combo is re-registered and the error is
// returned; if that also fails the error wraps ErrRollbackFailed.
func (m *Manager) Bind(action domain.Action, combo Combo, handler func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.active[action]
	if previous != nil {
		previous.release()
		delete(m.active, action)
	}

	next, err := m.register(combo, handler)
	if err == nil {
		m.active[action] = next
		m.logger.Info("registered hotkey", "action", action, "hotkey", combo.String())
		return nil
	}

	bindErr := fmt.Errorf("failed to register %s hotkey %q: %w", action, combo.String(), err)
	m.logger.Error("hotkey registration failed", "action", action, "hotkey", combo.String(), "err", err)
	if previous == nil {
		return bindErr
	}

	restored, restoreErr := m.register(previous.combo, previous.handler)
	if restoreErr != nil {
		m.logger.Error("failed to restore previous hotkey", "action", action, "hotkey", previous.combo.String(), "err", restoreErr)
		return fmt.Errorf("%w %q: %v (after: %v)", ErrRollbackFailed, previous.combo.String(), restoreErr, bindErr)
	}
	m.active[action] = restored
	return bindErr
}

// Current returns the combo bound to action.
func (m *Manager) Current(action domain.Action) (Combo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.active[action]
	if !ok {
		return Combo{}, false
	}
	return b.combo, true
}

// Unbind releases the binding for action, if any.
func (m *Manager) Unbind(action domain.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.active[action]; ok {
		b.release()
		delete(m.active, action)
	}
}

// UnbindAll releases every registration. Used on exit.
func (m *Manager) UnbindAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for action, b := range m.active {
		b.release()
		delete(m.active, action)
	}
}

func (m *Manager) register(combo Combo, handler func()) (*activeBinding, error) {
	if !knownKey(combo.Key) {
		return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidHotkey, combo.Key)
	}
	hk, err := m.newBinding(combo)
	if err != nil {
		return nil, err
	}
	if err := hk.Register(); err != nil {
		return nil, err
	}

	b := &activeBinding{
		combo:   combo,
		handler: handler,
		hk:      hk,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go b.listen()
	return b, nil
}

func (b *activeBinding) listen() {
	defer close(b.done)
	keydown := b.hk.Keydown()
	for {
		select {
		case <-b.stop:
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			b.handler()
		}
	}
}

func (b *activeBinding) release() {
	close(b.stop)
	<-b.done
	_ = b.hk.Unregister()
}
