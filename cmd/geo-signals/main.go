// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"geo-signals/internal/api"
	"geo-signals/internal/config"
	"geo-signals/internal/engine"
	"geo-signals/internal/logger"
	"geo-signals/internal/metrics"
	"geo-signals/internal/middleware"
	"geo-signals/internal/migrate"
	"geo-signals/internal/publish"
	"geo-signals/internal/store"
	"geo-signals/internal/utils"
	"geo-signals/internal/version"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// 文档注释：装配并运行服务直到收到退出信号
// 约束：错误在返回前已记录日志；所有 defer 的资源释放在 run 返回时执行，main 仅负责设置退出码。
func run() error {
	cfg := config.Load()
	l := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	l.Debug("log_init_ok")
	l.Info("config_loaded", "addr", cfg.Addr, "api_base", cfg.APIBase, "real_only", cfg.RealOnly, "commit", version.Commit)

	eng, closeEngine, err := engine.FromConfig(cfg)
	if err != nil {
		l.Error("engine_init_error", "err", err)
		return err
	}
	defer closeEngine()

	deps := api.Deps{Engine: eng}
	var sinks []publish.Publisher

	// 归档：可选；数据库不可用时服务仍可扫描，仅统计接口返回 503
	if cfg.ArchiveEnabled {
		if st := openArchive(cfg); st != nil {
			defer st.Close()
			deps.Stats = st
			deps.Fetchers = append(deps.Fetchers, st.LoadEnvelope)
			sinks = append(sinks, &publish.Archive{Store: st})
		}
	}

	if cfg.PublishRedis {
		if rc := openRedis(cfg); rc != nil {
			defer rc.Close()
			rp := publish.NewRedisPublisher(rc, cfg.ScanTTL)
			// Redis 在前：近期结果优先从缓存取回
			deps.Fetchers = append([]api.FetchFunc{rp.Fetch}, deps.Fetchers...)
			sinks = append(sinks, rp)
		}
	}

	if kp := publish.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic); kp != nil {
		defer kp.Close()
		sinks = append(sinks, kp)
		l.Info("kafka_publisher_ready", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	pub := publish.NewMulti(3*time.Second, sinks...)
	deps.Publisher = pub
	l.Info("publish_sinks", "sinks", pub.Names())

	mux := http.NewServeMux()
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, api.BuildRoutes(deps)))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	var handler http.Handler = mux
	if cfg.RateLimitEnabled {
		handler = middleware.RateLimit(cfg.RateLimitQPS, cfg.RateLimitBurst)(handler)
	}
	if cfg.OriginDefense {
		handler = middleware.NewAllowList(cfg.OriginAllow, cfg.OriginLocal, cfg.OriginIPHeader).Wrap(handler)
		l.Info("origin_defense_enabled", "entries", len(cfg.OriginAllow), "allow_local", cfg.OriginLocal)
	}
	handler = logger.AccessMiddleware(l)(handler)

	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()

	if cfg.TLSEnable {
		if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "geo-signals.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			return err
		}
		l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
		err = s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
	} else {
		l.Info("listening", "addr", cfg.Addr)
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		return err
	}
	l.Info("server_stopped")
	return nil
}

func openArchive(cfg config.Config) *store.Store {
	l := logger.L()
	db, err := utils.OpenPostgres(cfg.PG)
	if err != nil {
		l.Error("db_open_error", "err", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
		_ = db.Close()
		return nil
	}
	l.Info("db_ping_ok")
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		_ = db.Close()
		return nil
	}
	return store.AttachDB(db)
}

func openRedis(cfg config.Config) *redis.Client {
	l := logger.L()
	rc := utils.OpenRedis(cfg.Redis)
	if rc == nil {
		l.Info("redis_disabled")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		l.Error("redis_ping_error", "err", err)
		_ = rc.Close()
		return nil
	}
	l.Info("redis_ping_ok")
	return rc
}
