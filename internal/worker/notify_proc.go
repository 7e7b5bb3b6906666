package worker

import (
	"context"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/framework"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/notify"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/errorutil"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

// NewNotifyProc returns the Proc that delivers queued customer messages.
// Retryable gateway failures are left for redelivery; everything else is
// settled so a bad job cannot loop forever.
func NewNotifyProc(gateway notify.Gateway, log logger.Logger) framework.Proc {
	return func(ctx context.Context, msg *framework.Message) framework.Action {
		meta, n, err := notify.DecodeNotification(msg.Data)
		if err != nil {
			log.Errorf(ctx, "[NotifyProc] Burying malformed job %s: %v", msg.ID, err)
			return framework.ActionBury
		}

		ctx = logger.WithTraceID(ctx, meta.RequestID)
		ctx = logger.WithTenantID(ctx, meta.OrgID)
		ctx = logger.WithOrderID(ctx, meta.ID)

		if err := gateway.Send(ctx, n.Phone, n.Text, n.Token); err != nil {
			if errorutil.IsRetryable(err) {
				log.Warnf(ctx, "[NotifyProc] Send failed, will retry: %v", err)
				return framework.ActionRelease
			}
			log.Errorf(ctx, "[NotifyProc] Send failed permanently: %v", err)
			return framework.ActionBury
		}

		log.Infof(ctx, "[NotifyProc] Delivered job %s", msg.ID)
		return framework.ActionAck
	}
}
