package processor

import (
	"fmt"
	"slices"
	"sync"
)

// Registry maps topics to handlers. Registration happens at startup; lookups
// are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// NewDefaultRegistry registers the built-in topic handlers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(TopicMarketplaceAccountDeletion, &AccountDeletionHandler{})
	_ = r.Register(TopicPriorityListingRevision, &PriorityListingRevisionHandler{})
	return r
}

func (r *Registry) Register(topic string, h Handler) error {
	if topic == "" {
		return fmt.Errorf("%w: empty topic", ErrInvalidRegistration)
	}
	if h == nil {
		return fmt.Errorf("%w: nil handler for %q", ErrInvalidRegistration, topic)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[topic]; ok {
		return fmt.Errorf("%w: %q already registered", ErrInvalidRegistration, topic)
	}
	r.handlers[topic] = h
	return nil
}

// GetProcessor returns *UnregisteredTopicError when no handler is registered.
func (r *Registry) GetProcessor(topic string) (Handler, error) {
	r.mu.RLock()
	h, ok := r.handlers[topic]
	r.mu.RUnlock()

	if !ok {
		return nil, &UnregisteredTopicError{Topic: topic}
	}
	return h, nil
}

func (r *Registry) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		topics = append(topics, topic)
	}
	slices.Sort(topics)
	return topics
}
