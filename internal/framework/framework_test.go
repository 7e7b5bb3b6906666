package framework

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

type memorySource struct {
	mu    sync.Mutex
	queue []*Message
	acked []string
}

func (s *memorySource) Consume(_ string, timeout, _ time.Duration) (*Message, error) {
	s.mu.Lock()
	if len(s.queue) > 0 {
		msg := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		return msg, nil
	}
	s.mu.Unlock()
	time.Sleep(timeout)
	return nil, nil
}

func (s *memorySource) Ack(_ string, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acked = append(s.acked, jobID)
	return nil
}

func (s *memorySource) Acked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.acked...)
}

func TestSubscriberProcessorSettlesMessages(t *testing.T) {
	t.Parallel()

	source := &memorySource{queue: []*Message{
		{ID: "ok", Queue: "q"},
		{ID: "retry", Queue: "q"},
		{ID: "poison", Queue: "q"},
	}}
	actions := map[string]Action{"ok": ActionAck, "retry": ActionRelease, "poison": ActionBury}

	var mu sync.Mutex
	seen := map[string]bool{}
	proc := func(_ context.Context, msg *Message) Action {
		mu.Lock()
		seen[msg.ID] = true
		mu.Unlock()
		return actions[msg.ID]
	}

	inputChan := make(chan *Message, 4)
	sub := NewSubscriber(&SubscriberConfig{QueueName: "q", Concurrency: 1, Rate: time.Millisecond, Timeout: 5 * time.Millisecond, ErrorBackoff: time.Millisecond}, source, logger.NewNop())
	p := NewProcessor(&ProcessorConfig{Concurrency: 2, BufferSize: 4, Timeout: time.Second}, proc, source, logger.NewNop())

	ctx := context.Background()
	p.Start(ctx, inputChan)
	sub.Start(ctx, inputChan)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n == 3 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}

	sub.Stop()
	sub.Wait()
	p.SignalShutdown()
	p.Wait()

	acked := source.Acked()
	if len(acked) != 2 {
		t.Fatalf("expected ok and poison acked, got %v", acked)
	}
	for _, id := range acked {
		if id == "retry" {
			t.Fatalf("expected released message to stay in the queue")
		}
	}
}

func TestProcessorDrainsBufferedMessages(t *testing.T) {
	t.Parallel()

	source := &memorySource{}
	var mu sync.Mutex
	handled := 0
	p := NewProcessor(&ProcessorConfig{Concurrency: 1, BufferSize: 8, Timeout: time.Second}, func(context.Context, *Message) Action {
		mu.Lock()
		handled++
		mu.Unlock()
		return ActionAck
	}, source, logger.NewNop())

	inputChan := make(chan *Message, 8)
	for i := 0; i < 5; i++ {
		inputChan <- &Message{ID: "m", Queue: "q"}
	}

	p.SignalShutdown()
	p.Start(context.Background(), inputChan)
	p.Wait()

	if handled != 5 {
		t.Fatalf("expected 5 drained messages, got %d", handled)
	}
}
