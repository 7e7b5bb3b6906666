package worker

import (
	"context"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/framework"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

// Worker is one subscriber/processor pair bound to a queue.
type Worker interface {
	Start()
	Shutdown()
	GetName() string
}

// WorkerInstance wires a Subscriber to a Processor through a buffered channel.
type WorkerInstance struct {
	ctx        context.Context
	name       string
	subscriber *framework.Subscriber
	processor  *framework.Processor
	inputChan  chan *framework.Message
	shutdownCh chan struct{}
	logger     logger.Logger
}

// NewWorkerInstance creates a Worker.
func NewWorkerInstance(
	ctx context.Context,
	name string,
	subscriberCfg *framework.SubscriberConfig,
	processorCfg *framework.ProcessorConfig,
	source framework.MessageSource,
	proc framework.Proc,
	log logger.Logger,
) Worker {
	return &WorkerInstance{
		ctx:        ctx,
		name:       name,
		subscriber: framework.NewSubscriber(subscriberCfg, source, log),
		processor:  framework.NewProcessor(processorCfg, proc, source, log),
		inputChan:  make(chan *framework.Message, processorCfg.BufferSize),
		shutdownCh: make(chan struct{}),
		logger:     log,
	}
}

// Start runs the worker until Shutdown completes.
func (w *WorkerInstance) Start() {
	w.logger.Infof(w.ctx, "[Worker] %s started", w.name)

	w.processor.Start(w.ctx, w.inputChan)
	w.subscriber.Start(w.ctx, w.inputChan)

	<-w.shutdownCh
}

// Shutdown stops pulling, then drains what was already pulled.
func (w *WorkerInstance) Shutdown() {
	w.logger.Infof(w.ctx, "[Worker] %s began to close", w.name)

	// 1. stop pulling
	w.subscriber.Stop()

	// 2. wait for pull loops to exit
	w.subscriber.Wait()

	// 3. drain the buffer
	w.processor.SignalShutdown()

	// 4. wait for the drain
	w.processor.Wait()

	close(w.shutdownCh)
	w.logger.Infof(w.ctx, "[Worker] %s shutdown complete", w.name)
}

// GetName returns the worker name.
func (w *WorkerInstance) GetName() string {
	return w.name
}
