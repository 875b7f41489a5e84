// Package notify is the in-process realtime fan-out for notifications.
// Subscribers receive events over a buffered channel; delivery of the same
// event twice to one subscription is collapsed, so an at-least-once producer
// never double-counts on the consumer side.
package notify

import (
	"sync"

	"github.com/google/uuid"

	"github.com/locm1/nippo/internal/models"
)

const subscriptionBuffer = 16

// Subscription is one listener for a single user's notifications.
type Subscription struct {
	userID uuid.UUID
	ch     chan models.Notification

	mu   sync.Mutex
	seen map[uuid.UUID]struct{}
}

// Events is the delivery channel. It is closed on Unsubscribe.
func (s *Subscription) Events() <-chan models.Notification {
	return s.ch
}

// deliver drops duplicates and never blocks: a slow consumer loses events
// rather than stalling the publisher.
func (s *Subscription) deliver(n models.Notification) {
	s.mu.Lock()
	if _, dup := s.seen[n.ID]; dup {
		s.mu.Unlock()
		return
	}
	s.seen[n.ID] = struct{}{}
	s.mu.Unlock()

	select {
	case s.ch <- n:
	default:
	}
}

// Hub routes notifications to the subscriptions of their recipient.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(userID uuid.UUID) *Subscription {
	sub := &Subscription{
		userID: userID,
		ch:     make(chan models.Notification, subscriptionBuffer),
		seen:   make(map[uuid.UUID]struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.userID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.userID)
	}
	close(sub.ch)
}

// Publish fans a notification out to every subscription of its recipient.
func (h *Hub) Publish(n models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[n.UserID] {
		sub.deliver(n)
	}
}
