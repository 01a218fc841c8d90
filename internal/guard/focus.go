package guard

import "sync"

// FocusBus is an in-process FocusSource.
type FocusBus struct {
	mu        sync.Mutex
	listeners map[int]func()
	next      int
}

func NewFocusBus() *FocusBus {
	return &FocusBus{listeners: make(map[int]func())}
}

func (b *FocusBus) OnFocus(fn func()) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Focus delivers one focus event to every listener.
func (b *FocusBus) Focus() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Listeners is the number of registered listeners.
func (b *FocusBus) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
