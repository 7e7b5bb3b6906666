package worker

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/framework"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/notify"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/config"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

// Manager owns the notifier's workers.
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance starts every worker and shuts them down together.
type ManagerInstance struct {
	ctx        context.Context
	cfg        *config.Config
	source     framework.MessageSource
	gateway    notify.Gateway
	workers    []Worker
	closing    *atomic.Bool
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	logger     logger.Logger
}

// NewManagerInstance creates a Manager consuming notification jobs from
// source and delivering them through gateway.
func NewManagerInstance(cfg *config.Config, source framework.MessageSource, gateway notify.Gateway, log logger.Logger) Manager {
	return &ManagerInstance{
		ctx:        context.Background(),
		cfg:        cfg,
		source:     source,
		gateway:    gateway,
		closing:    atomic.NewBool(false),
		shutdownCh: make(chan struct{}),
		logger:     log,
	}
}

// Start launches the workers and blocks until Shutdown.
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	// 1. build workers
	m.loadWorkers()

	// 2. run each on its own goroutine
	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	// 3. block
	<-m.shutdownCh

	return nil
}

// Shutdown stops every worker once. Safe to call concurrently.
func (m *ManagerInstance) Shutdown() {
	if !m.closing.CAS(false, true) {
		return
	}
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	for _, worker := range m.workers {
		m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
		worker.Shutdown()
	}

	m.wg.Wait()
	close(m.shutdownCh)

	m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
}

func (m *ManagerInstance) loadWorkers() {
	sub := m.cfg.Worker.Subscriber
	proc := m.cfg.Worker.Processor

	subCfg := &framework.SubscriberConfig{
		QueueName:    m.cfg.Lmstfy.NotifyQueue,
		Concurrency:  sub.Threads,
		Rate:         sub.Rate,
		Timeout:      sub.Timeout,
		TTR:          sub.TTR,
		ErrorBackoff: sub.ErrorBackoff,
	}
	procCfg := &framework.ProcessorConfig{
		Concurrency: proc.Threads,
		BufferSize:  proc.BufferSize,
		Timeout:     proc.Timeout,
	}

	m.workers = append(m.workers, NewWorkerInstance(
		m.ctx,
		"notifier",
		subCfg,
		procCfg,
		m.source,
		NewNotifyProc(m.gateway, m.logger),
		m.logger,
	))
}
