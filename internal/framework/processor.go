package framework

import (
	"context"
	"sync"
	"time"

	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

// Processor runs a Proc on each message and settles it with the source.
type Processor struct {
	cfg        *ProcessorConfig
	proc       Proc
	acker      MessageSource
	logger     logger.Logger
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewProcessor creates a Processor.
func NewProcessor(cfg *ProcessorConfig, proc Proc, acker MessageSource, log logger.Logger) *Processor {
	return &Processor{
		cfg:        cfg,
		proc:       proc,
		acker:      acker,
		logger:     log,
		shutdownCh: make(chan struct{}),
	}
}

// Start launches cfg.Concurrency processing loops.
func (p *Processor) Start(ctx context.Context, inputChan <-chan *Message) {
	p.logger.Infof(ctx, "[Processor] Starting with %d workers", p.cfg.Concurrency)

	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go p.loop(logger.WithWorkerID(ctx, i), i, inputChan)
	}
}

// SignalShutdown switches the loops to drain mode.
func (p *Processor) SignalShutdown() {
	p.logger.Infof(context.Background(), "[Processor] Shutdown signal received")
	close(p.shutdownCh)
}

// Wait blocks until every loop has drained and exited.
func (p *Processor) Wait() {
	p.wg.Wait()
	p.logger.Infof(context.Background(), "[Processor] All workers exited")
}

func (p *Processor) loop(ctx context.Context, workerID int, inputChan <-chan *Message) {
	defer p.wg.Done()
	p.logger.Infof(ctx, "[Processor-%d] Started", workerID)

	for {
		select {
		case msg := <-inputChan:
			p.process(ctx, msg, workerID)

		case <-p.shutdownCh:
			p.logger.Infof(ctx, "[Processor-%d] Entering DRAIN mode", workerID)
			count := 0
			for {
				select {
				case msg := <-inputChan:
					p.process(ctx, msg, workerID)
					count++
				default:
					p.logger.Infof(ctx, "[Processor-%d] Drained %d messages, exiting", workerID, count)
					return
				}
			}
		}
	}
}

func (p *Processor) process(ctx context.Context, msg *Message, workerID int) {
	if msg == nil {
		return
	}

	startTime := time.Now()

	procCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	p.logger.Debugf(procCtx, "[Processor-%d] Processing message: %s", workerID, msg.ID)

	action := p.proc(procCtx, msg)

	switch action {
	case ActionAck, ActionBury:
		if err := p.acker.Ack(msg.Queue, msg.ID); err != nil {
			p.logger.Errorf(procCtx, "[Processor-%d] Ack %s failed: %v", workerID, msg.ID, err)
		}
	case ActionRelease:
		// redelivered by the queue once the TTR expires
	}

	p.logger.Infof(procCtx, "[Processor-%d] Message processed: %s, action: %s, duration: %v",
		workerID, msg.ID, action, time.Since(startTime))
}
