package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func noop(context.Context, Notification) error { return nil }

func TestRegister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		topic   string
		handler Handler
		wantErr error
	}{
		{name: "valid", topic: "CUSTOM_TOPIC", handler: HandlerFunc(noop)},
		{name: "empty topic", topic: "", handler: HandlerFunc(noop), wantErr: ErrInvalidRegistration},
		{name: "nil handler", topic: "CUSTOM_TOPIC", handler: nil, wantErr: ErrInvalidRegistration},
		{name: "duplicate", topic: TopicMarketplaceAccountDeletion, handler: HandlerFunc(noop), wantErr: ErrInvalidRegistration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewDefaultRegistry().Register(tt.topic, tt.handler)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetProcessor(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()

	for _, topic := range []string{TopicMarketplaceAccountDeletion, TopicPriorityListingRevision} {
		if _, err := r.GetProcessor(topic); err != nil {
			t.Errorf("GetProcessor(%q) error = %v", topic, err)
		}
	}

	_, err := r.GetProcessor("ITEM_SOLD")
	if !errors.Is(err, ErrUnregisteredTopic) {
		t.Fatalf("GetProcessor() error = %v, want ErrUnregisteredTopic", err)
	}
	var topicErr *UnregisteredTopicError
	if !errors.As(err, &topicErr) || topicErr.Topic != "ITEM_SOLD" {
		t.Errorf("GetProcessor() error = %v, want *UnregisteredTopicError naming ITEM_SOLD", err)
	}
}

func TestTopics(t *testing.T) {
	t.Parallel()

	want := []string{TopicMarketplaceAccountDeletion, TopicPriorityListingRevision}
	if diff := cmp.Diff(want, NewDefaultRegistry().Topics()); diff != "" {
		t.Errorf("Topics() mismatch (-want +got):\n%s", diff)
	}
}
