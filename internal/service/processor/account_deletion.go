package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/garrettladley/ebaynotify/internal/xslog"
	go_json "github.com/goccy/go-json"
)

// AccountDeletion identifies the eBay user whose data must be erased.
type AccountDeletion struct {
	Username  string `json:"username"`
	UserID    string `json:"userId"`
	EIASToken string `json:"eiasToken"`
}

// AccountDeletionHandler handles MARKETPLACE_ACCOUNT_DELETION. OnDelete is
// optional; without it the request is only logged.
type AccountDeletionHandler struct {
	OnDelete func(ctx context.Context, deletion AccountDeletion) error
}

var _ Handler = (*AccountDeletionHandler)(nil)

func (h *AccountDeletionHandler) Process(ctx context.Context, n Notification) error {
	var deletion AccountDeletion
	if err := go_json.Unmarshal(n.Notification.Data, &deletion); err != nil {
		return fmt.Errorf("failed to decode account deletion data: %w", err)
	}

	xslog.FromContext(ctx).InfoContext(ctx, "account deletion requested",
		xslog.NotificationGroup(n.Metadata.Topic, n.Notification.NotificationID),
		slog.String("username", deletion.Username),
		slog.String("user_id", deletion.UserID),
		slog.String("eias_token", deletion.EIASToken),
	)

	if h.OnDelete == nil {
		return nil
	}
	if err := h.OnDelete(ctx, deletion); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", deletion.UserID, err)
	}
	return nil
}
