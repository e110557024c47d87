package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/garrettladley/ebaynotify/internal/config"
	"github.com/garrettladley/ebaynotify/internal/service/webhook"
	"github.com/garrettladley/ebaynotify/internal/xerrors"
	"github.com/garrettladley/ebaynotify/internal/xhttp"
	"github.com/garrettladley/ebaynotify/internal/xslog"
)

const (
	paramChallengeCode = "challenge_code"

	maxNotificationBytes = 1 << 20
)

type Webhook struct {
	service webhook.Service
	config  config.EBay
}

func NewWebhook(service webhook.Service, cfg config.EBay) *Webhook {
	return &Webhook{service: service, config: cfg}
}

// HandleNotification handles POST /webhook requests.
func (h *Webhook) HandleNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxNotificationBytes))
	if err != nil {
		xslog.FromContext(ctx).WarnContext(ctx, "failed to read notification body", xslog.Error(err))
		xhttp.WriteStatus(w, webhook.StatusFailed)
		return
	}

	status := h.service.Process(ctx, webhook.ProcessRequest{
		Body:        body,
		Signature:   r.Header.Get(xhttp.XEBaySignature),
		Config:      h.config,
		Environment: h.config.Environment,
	})
	xhttp.WriteStatus(w, status)
}

type challengeResponse struct {
	ChallengeResponse string `json:"challengeResponse"`
}

// HandleChallenge handles GET /webhook?challenge_code=... requests.
func (h *Webhook) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := r.URL.Query().Get(paramChallengeCode)
	if code == "" {
		xerrors.WriteError(ctx, w, xerrors.BadRequest(xerrors.WithMessage("missing challenge_code")))
		return
	}

	response, err := h.service.ValidateEndpoint(ctx, code, h.config)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidInput) {
			xerrors.WriteError(ctx, w, xerrors.Internal(xerrors.WithMessage("endpoint validation is not configured"), xerrors.WithCause(err)))
			return
		}
		xerrors.WriteError(ctx, w, xerrors.Internal(xerrors.WithCause(err)))
		return
	}

	xhttp.WriteOK(w, challengeResponse{ChallengeResponse: response})
}
