package services

import "sync"

// CatalogNotifier fans out change nudges to catalog watchers. Subscribers get
// a non-blocking signal channel; a nudge during a slow consumer's rebuild
// coalesces into the one already pending.
type CatalogNotifier struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewCatalogNotifier() *CatalogNotifier {
	return &CatalogNotifier{
		subs: make(map[chan struct{}]struct{}),
	}
}

// Subscribe registers a signal channel. The caller must Unsubscribe when its
// stream ends.
func (n *CatalogNotifier) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

func (n *CatalogNotifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	delete(n.subs, ch)
	n.mu.Unlock()
}

// Nudge signals every subscriber that catalog-affecting state changed.
func (n *CatalogNotifier) Nudge() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
