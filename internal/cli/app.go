package cli

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/selftrack/internal/config"
	"github.com/selftrack/internal/db"
	"github.com/selftrack/internal/handler"
	"github.com/selftrack/internal/logger"
	"github.com/selftrack/internal/router"
	"github.com/selftrack/internal/service"
	"github.com/selftrack/internal/store"
)

// App 组装存储与服务，供各个子命令共用。
type App struct {
	Config   config.AppConfig
	Log      *logger.Logger
	Store    *store.Store
	Tracker  *service.TrackerService
	Transfer *service.TransferService
	Quotes   *service.QuoteService
}

// NewApp 打开数据库并初始化状态，缺失的键会写入默认值。
func NewApp(cfg config.AppConfig, log *logger.Logger) (*App, error) {
	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return newAppWithBackend(cfg, log, db.NewKVStore(gdb))
}

func newAppWithBackend(cfg config.AppConfig, log *logger.Logger, backend store.Backend) (*App, error) {
	st := store.New(backend, store.WithLogger(log.With("component", "store")), store.WithTimezone(cfg.Timezone))
	if err := st.Initialize(); err != nil {
		// 写入失败时仍可在内存中使用默认值
		log.Warn("state initialization not persisted", "error", err)
	}

	return &App{
		Config:   cfg,
		Log:      log,
		Store:    st,
		Tracker:  service.NewTrackerService(st, log, service.WithSampleHabits(cfg.SeedSampleHabits)),
		Transfer: service.NewTransferService(st, log, nil),
		Quotes:   service.NewQuoteService(cfg.QuotesPath, log),
	}, nil
}

// Router 构造 HTTP 路由
func (a *App) Router() *gin.Engine {
	gin.SetMode(a.Config.GinMode)
	api := handler.NewAPI(a.Tracker, a.Transfer, a.Quotes, a.Log.With("component", "http"))
	return router.SetupRouter(api, a.Config.SessionSecret)
}
