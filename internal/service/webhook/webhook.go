package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garrettladley/ebaynotify/internal/config"
	"github.com/garrettladley/ebaynotify/internal/metrics"
	"github.com/garrettladley/ebaynotify/internal/oauth"
	"github.com/garrettladley/ebaynotify/internal/service/processor"
	"github.com/garrettladley/ebaynotify/internal/xslog"
)

type Verifier interface {
	ValidateSignature(ctx context.Context, message []byte, header string, creds oauth.AppCredentials) (bool, error)
}

type Dispatcher interface {
	GetProcessor(topic string) (processor.Handler, error)
}

var (
	_ Verifier   = (*SignatureVerifier)(nil)
	_ Dispatcher = (*processor.Registry)(nil)
	_ Service    = (*Processor)(nil)
)

type Processor struct {
	verifier   Verifier
	dispatcher Dispatcher
	metrics    *metrics.Metrics
}

type Option func(*Processor)

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

func NewProcessor(verifier Verifier, dispatcher Dispatcher, opts ...Option) *Processor {
	p := &Processor{
		verifier:   verifier,
		dispatcher: dispatcher,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) ProcessWebhook(ctx context.Context, req ProcessRequest) error {
	_, err := p.process(ctx, req)
	return err
}

func (p *Processor) Process(ctx context.Context, req ProcessRequest) int {
	logger := xslog.FromContext(ctx)
	start := time.Now()

	n, err := p.process(ctx, req)
	status := statusFor(err)
	p.metrics.RecordNotification(status, time.Since(start))

	attrs := []any{
		xslog.NotificationGroup(n.Metadata.Topic, n.Notification.NotificationID),
		xslog.HTTPStatus(status),
		xslog.Duration(time.Since(start)),
	}
	switch status {
	case StatusProcessed:
		logger.InfoContext(ctx, "processed notification", attrs...)
	case StatusRejected:
		logger.WarnContext(ctx, "rejected notification", attrs...)
	default:
		logger.ErrorContext(ctx, "failed to process notification", append(attrs, xslog.ErrorGroup(err))...)
	}
	return status
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return StatusProcessed
	case errors.Is(err, ErrVerificationMismatch):
		return StatusRejected
	default:
		return StatusFailed
	}
}

func (p *Processor) process(ctx context.Context, req ProcessRequest) (processor.Notification, error) {
	n, err := processor.ParseNotification(req.Body)
	if err != nil {
		return processor.Notification{}, fmt.Errorf("%w: message: %w", ErrInvalidInput, err)
	}
	if req.Signature == "" {
		return n, fmt.Errorf("%w: signature is required", ErrInvalidInput)
	}
	if !req.Environment.Valid() {
		return n, fmt.Errorf("%w: environment must be SANDBOX or PRODUCTION, got %q", ErrInvalidInput, req.Environment)
	}
	creds := req.Config.CredentialsFor(req.Environment)
	if creds.ClientID == "" {
		return n, fmt.Errorf("%w: client id is required for %s", ErrInvalidInput, req.Environment)
	}
	if creds.ClientSecret == "" {
		return n, fmt.Errorf("%w: client secret is required for %s", ErrInvalidInput, req.Environment)
	}

	ok, err := p.verifier.ValidateSignature(ctx, req.Body, req.Signature, oauth.AppCredentials{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Environment:  req.Environment,
	})
	if err != nil {
		return n, fmt.Errorf("failed to validate signature: %w", err)
	}
	if !ok {
		return n, ErrVerificationMismatch
	}

	return n, p.dispatch(ctx, n)
}

func (p *Processor) dispatch(ctx context.Context, n processor.Notification) (err error) {
	topic := n.Metadata.Topic

	h, err := p.dispatcher.GetProcessor(topic)
	if err != nil {
		p.metrics.RecordDispatch(topic, metrics.ResultUnregistered)
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			xslog.FromContext(ctx).ErrorContext(ctx, "notification handler panicked", xslog.ErrorGroupWithStack(r))
			err = fmt.Errorf("handler for %s panicked: %v", topic, r)
		}
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		p.metrics.RecordDispatch(topic, result)
	}()

	if err := h.Process(ctx, n); err != nil {
		return fmt.Errorf("failed to process %s notification: %w", topic, err)
	}
	return nil
}

func (p *Processor) ValidateEndpoint(ctx context.Context, challengeCode string, cfg config.EBay) (string, error) {
	if challengeCode == "" {
		return "", fmt.Errorf("%w: challenge code is required", ErrInvalidInput)
	}
	if cfg.Endpoint == "" {
		return "", fmt.Errorf("%w: endpoint is required", ErrInvalidInput)
	}
	if cfg.VerificationToken == "" {
		return "", fmt.Errorf("%w: verification token is required", ErrInvalidInput)
	}

	response, err := GenerateChallengeResponse(challengeCode, cfg.Endpoint, cfg.VerificationToken)
	if err != nil {
		p.metrics.RecordChallenge(metrics.ResultError)
		return "", err
	}

	p.metrics.RecordChallenge(metrics.ResultSuccess)
	xslog.FromContext(ctx).InfoContext(ctx, "answered endpoint challenge")
	return response, nil
}
