package processor

import (
	"context"
	"log/slog"

	"github.com/garrettladley/ebaynotify/internal/xslog"
)

type PriorityListingRevisionHandler struct{}

var _ Handler = (*PriorityListingRevisionHandler)(nil)

func (h *PriorityListingRevisionHandler) Process(ctx context.Context, n Notification) error {
	xslog.FromContext(ctx).InfoContext(ctx, "priority listing revision",
		xslog.NotificationGroup(n.Metadata.Topic, n.Notification.NotificationID),
		slog.String("data", string(n.Notification.Data)),
	)
	return nil
}
