package form

import "sync"

// Listener is anything that wants to be told when form state changed in
// a way that should reach the screen. The host UI implements it around
// its own re-render primitive.
type Listener interface {
	// MarkDirty notifies the listener that the form needs re-rendering.
	// Implementations typically coalesce repeated calls into one render.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication on subscribe.
	ID() uint64
}

// listenerSet manages the form's re-render subscribers.
// It is embedded in Form to keep subscription bookkeeping in one place.
type listenerSet struct {
	// subs are the listeners subscribed to this form.
	subs []Listener

	// subMu protects the subs slice.
	subMu sync.RWMutex
}

// subscribe adds a listener to the set.
// Deduplicates by listener ID to prevent double-subscription.
func (s *listenerSet) subscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}

	s.subs = append(s.subs, l)
}

// unsubscribe removes a listener from the set.
func (s *listenerSet) unsubscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			// Remove by swapping with last element (order doesn't matter)
			s.subs[i] = s.subs[len(s.subs)-1]
			s.subs = s.subs[:len(s.subs)-1]
			return
		}
	}
}

// notifyAll marks every subscriber dirty.
// Uses copy-before-notify so MarkDirty can subscribe or unsubscribe
// without deadlocking.
func (s *listenerSet) notifyAll() {
	s.subMu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	for _, sub := range subs {
		sub.MarkDirty()
	}
}
