package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/errorutil"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/lmstfy"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

// ActionNotify routes notification jobs to the notifier worker.
const ActionNotify = "order_notify"

const (
	jobTTL   = 3600
	jobDelay = 0
)

// Notification is the business data of a notification job.
type Notification struct {
	Phone string `json:"phone"`
	Text  string `json:"text"`
	Token string `json:"token"`
}

// Publisher enqueues raw job bodies.
type Publisher interface {
	Publish(queue string, data []byte, ttl, delay uint32) (string, error)
}

// QueueGateway hands messages to the notifier worker through lmstfy instead
// of calling the messaging API inline.
type QueueGateway struct {
	publisher Publisher
	queue     string
	tenantID  string
}

// NewQueueGateway creates a QueueGateway publishing on queue.
func NewQueueGateway(publisher Publisher, queue, tenantID string) *QueueGateway {
	return &QueueGateway{
		publisher: publisher,
		queue:     queue,
		tenantID:  tenantID,
	}
}

// Send enqueues the message. A publish failure is retryable.
func (g *QueueGateway) Send(ctx context.Context, phone, text, token string) error {
	requestID := logger.TraceID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	job := lmstfy.NewJob(lmstfy.Meta{
		RequestID:  requestID,
		OrgID:      g.tenantID,
		ActionType: ActionNotify,
		ID:         logger.OrderID(ctx),
	}, Notification{Phone: phone, Text: text, Token: token})

	data, err := json.Marshal(job)
	if err != nil {
		return errorutil.NonRetriableWithDetails("encode notification job failed", err.Error())
	}

	if _, err := g.publisher.Publish(g.queue, data, jobTTL, jobDelay); err != nil {
		return errorutil.RetriableWithDetails(fmt.Sprintf("enqueue on %s failed", g.queue), err.Error())
	}
	return nil
}

// DecodeNotification extracts a Notification from a job body produced by
// QueueGateway.
func DecodeNotification(body []byte) (lmstfy.Meta, Notification, error) {
	var n Notification
	meta, err := lmstfy.DecodeJob(body, &n)
	if err != nil {
		return meta, n, err
	}
	if meta.ActionType != ActionNotify {
		return meta, n, fmt.Errorf("unexpected action type %q", meta.ActionType)
	}
	return meta, n, nil
}
