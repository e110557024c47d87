package webhook

import (
	"context"
	"errors"
	"net/http"

	"github.com/garrettladley/ebaynotify/internal/config"
	"github.com/garrettladley/ebaynotify/internal/env"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrMalformedSignature   = errors.New("malformed signature header")
	ErrInvalidKeyFormat     = errors.New("invalid public key format")
	ErrVerificationMismatch = errors.New("signature does not match")
	ErrChallengeComputation = errors.New("failed to compute challenge response")
)

// Outcome statuses returned by Process.
const (
	StatusProcessed = http.StatusNoContent
	StatusRejected  = http.StatusPreconditionFailed
	StatusFailed    = http.StatusInternalServerError
)

type ProcessRequest struct {
	// Body is the notification exactly as received.
	Body []byte
	// Signature is the X-EBAY-SIGNATURE header value.
	Signature   string
	Config      config.EBay
	Environment env.Environment
}

type Service interface {
	// ProcessWebhook validates the request, verifies the signature and
	// dispatches the notification to the handler registered for its topic.
	// Returns ErrInvalidInput if the body, signature, environment or the
	// selected environment's credentials are missing.
	// Returns ErrVerificationMismatch if the signature does not match.
	// Returns processor.ErrUnregisteredTopic if no handler accepts the topic.
	ProcessWebhook(ctx context.Context, req ProcessRequest) error

	// Process runs ProcessWebhook and maps the result to the status eBay
	// expects: StatusProcessed, StatusRejected or StatusFailed.
	Process(ctx context.Context, req ProcessRequest) int

	// ValidateEndpoint answers the endpoint ownership challenge.
	// Returns ErrInvalidInput if challengeCode, endpoint or verification token is empty.
	ValidateEndpoint(ctx context.Context, challengeCode string, cfg config.EBay) (string, error)
}
