package processor

import (
	"context"
	"errors"
	"fmt"
)

const (
	TopicMarketplaceAccountDeletion = "MARKETPLACE_ACCOUNT_DELETION"
	TopicPriorityListingRevision    = "PRIORITY_LISTING_REVISION"
)

var (
	ErrUnregisteredTopic   = errors.New("no processor registered for topic")
	ErrInvalidRegistration = errors.New("invalid processor registration")
	ErrInvalidNotification = errors.New("invalid notification")
)

// Handler processes one validated notification for a topic.
type Handler interface {
	Process(ctx context.Context, n Notification) error
}

type HandlerFunc func(ctx context.Context, n Notification) error

func (f HandlerFunc) Process(ctx context.Context, n Notification) error { return f(ctx, n) }

type UnregisteredTopicError struct {
	Topic string
}

func (e *UnregisteredTopicError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnregisteredTopic, e.Topic)
}

func (e *UnregisteredTopicError) Is(target error) bool { return target == ErrUnregisteredTopic }
