package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/dashboard"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/marker"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/notify"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/poller"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/reconcile"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/repository/rporder"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/repository/rptenant"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/server"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/workflow"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/config"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/infra/mysql"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/infra/redis"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/lmstfy"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

// App is the wired panel.
type App struct {
	Engine *gin.Engine
	Poller *poller.Poller
}

// InitializeApp wires every component and returns a cleanup for the
// connections it opened.
func InitializeApp(cfg *config.Config, log logger.Logger) (*App, func(), error) {
	loc, err := time.LoadLocation(cfg.Views.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone %q: %w", cfg.Views.Timezone, err)
	}

	// 1. stores
	db, err := mysql.Open(cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}

	redisClient, err := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		_ = mysql.Close(db)
		return nil, nil, err
	}

	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			log.Warnf(context.Background(), "[App] close redis: %v", err)
		}
		if err := mysql.Close(db); err != nil {
			log.Warnf(context.Background(), "[App] close mysql: %v", err)
		}
	}

	orderRepo := rporder.NewOrderRepository(db)
	tenantRepo := rptenant.NewTenantRepository(db)

	// 2. change tracking
	tenantID := cfg.Poller.TenantID
	markers := marker.NewStore(redis.NewKV(redisClient), log)
	tracker := reconcile.NewTracker(context.Background(), tenantID, markers, log)

	// 3. notification gateway
	gateway, err := newGateway(cfg, tenantID)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	hook := notify.NewHook(tenantID, tenantRepo, gateway, log)

	// 4. workflow and board
	machine := workflow.NewMachine(tenantID, orderRepo, tracker, log, hook)
	board := dashboard.NewBoard(dashboard.Options{
		TenantID: tenantID,
		Location: loc,
		PageSize: cfg.Views.PageSize,
	}, machine, redis.NewPubSub(redisClient, cfg.Redis.ChangesChannel), log)

	// 5. poller and HTTP
	p := poller.New(cfg.Poller.Interval, orderRepo, tracker, board, log)
	engine := server.SetupRoutes(server.NewOrderHandler(board, log), log, tenantID)

	return &App{Engine: engine, Poller: p}, cleanup, nil
}

func newGateway(cfg *config.Config, tenantID string) (notify.Gateway, error) {
	if cfg.Notifier.Mode != config.NotifierModeQueue {
		return notify.NewHTTPGateway(cfg.Notifier.BaseURL, cfg.Notifier.Timeout), nil
	}

	client, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		return nil, fmt.Errorf("create lmstfy client: %w", err)
	}
	return notify.NewQueueGateway(client, cfg.Lmstfy.NotifyQueue, tenantID), nil
}
