package framework

import (
	"context"
	"time"
)

// Message is one job pulled from the queue.
type Message struct {
	ID    string
	Queue string
	Data  []byte
}

// MessageSource is the queue the subscriber pulls from.
type MessageSource interface {
	// Consume blocks until a job arrives or timeout passes (nil message).
	Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error)

	// Ack removes a job from the queue.
	Ack(queue string, jobID string) error
}

// Action tells the processor what to do with a handled job.
type Action int

const (
	// ActionAck removes the job: it succeeded.
	ActionAck Action = iota
	// ActionRelease leaves the job for redelivery after its TTR.
	ActionRelease
	// ActionBury drops a job that can never succeed. lmstfy has no bury
	// call, so it is acked and logged.
	ActionBury
)

func (a Action) String() string {
	switch a {
	case ActionAck:
		return "ack"
	case ActionRelease:
		return "release"
	case ActionBury:
		return "bury"
	default:
		return "unknown"
	}
}

// Proc handles one message.
type Proc func(ctx context.Context, msg *Message) Action

// SubscriberConfig configures a Subscriber.
type SubscriberConfig struct {
	QueueName    string
	Concurrency  int
	Rate         time.Duration
	Timeout      time.Duration
	TTR          time.Duration
	ErrorBackoff time.Duration
}

// ProcessorConfig configures a Processor.
type ProcessorConfig struct {
	Concurrency int
	BufferSize  int
	Timeout     time.Duration
}
