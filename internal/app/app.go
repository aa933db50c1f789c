package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"civchat/internal/maintenance"
	"civchat/pkg/banner"
	"civchat/pkg/config"
	"civchat/pkg/identity"
	"civchat/pkg/logger"
	"civchat/pkg/notify"
	"civchat/pkg/presence"
	"civchat/pkg/store"
	"civchat/pkg/validation"
)

// App encapsulates the server components and lifecycle.
type App struct {
	cfg       *config.Config
	addr      string
	dbPath    string
	source    string
	version   string
	commit    string
	buildDate string

	directory  identity.Directory
	tracker    presence.Tracker
	sweeper    *presence.Memory // non-nil only for the in-memory tracker
	dispatcher *notify.Dispatcher
	natsSink   *notify.NATSSink
	rdb        *redis.Client

	srv *http.Server
}

// New initializes resources that do not require a running context: the
// message store, typing tracker, notification sink and validation rules.
// It does not start the HTTP server; call Run to start it and block until
// shutdown.
func New(cfg *config.Config, addr, dbPath, source, version, commit, buildDate string) (*App, error) {
	if err := validateConfig(cfg, dbPath); err != nil {
		return nil, err
	}

	// runtime keys
	runtimeCfg := &config.RuntimeConfig{BackendKeys: map[string]struct{}{}, SigningKeys: map[string]struct{}{}}
	for _, k := range cfg.Security.APIKeys.Backend {
		runtimeCfg.BackendKeys[k] = struct{}{}
		runtimeCfg.SigningKeys[k] = struct{}{}
	}
	config.SetRuntime(runtimeCfg)

	// validation rules
	validation.SetRules(validation.Rules{MaxBodyBytes: cfg.Validation.MaxBodyBytes})

	// open store
	if err := store.Open(dbPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", dbPath, err)
	}

	a := &App{
		cfg:       cfg,
		addr:      addr,
		dbPath:    dbPath,
		source:    source,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		directory: identity.NewStatic(cfg.Identity.DisplayNames),
	}

	if err := a.setupTracker(); err != nil {
		a.closeResources()
		return nil, err
	}
	if err := a.setupDispatcher(); err != nil {
		a.closeResources()
		return nil, err
	}
	return a, nil
}

// setupTracker selects the typing tracker backend from config. Default is
// the in-process tracker; redis is for multi-instance deployments.
func (a *App) setupTracker() error {
	ttl := time.Duration(a.cfg.Typing.TTL)
	if ttl <= 0 {
		ttl = presence.DefaultTTL
	}
	switch a.cfg.Typing.Backend {
	case "", "memory":
		m := presence.NewMemory(ttl)
		a.sweeper = m
		a.tracker = m
	case "redis":
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Typing.Redis.Addr,
			Password: a.cfg.Typing.Redis.Password,
			DB:       a.cfg.Typing.Redis.DB,
		})
		a.tracker = presence.NewRedis(a.rdb, ttl)
	default:
		return fmt.Errorf("unknown typing backend: %s", a.cfg.Typing.Backend)
	}
	logger.Info("typing_tracker_ready", "backend", a.cfg.Typing.Backend, "ttl", ttl.String())
	return nil
}

// setupDispatcher wires the notification sink: NATS when a URL is
// configured, otherwise the log sink.
func (a *App) setupDispatcher() error {
	if url := a.cfg.Notify.NATSURL; url != "" {
		sink, err := notify.NewNATSSink(url, a.cfg.Notify.SubjectPrefix)
		if err != nil {
			return fmt.Errorf("failed to connect notification sink at %s: %w", url, err)
		}
		a.natsSink = sink
		a.dispatcher = notify.NewDispatcher(sink)
		logger.Info("notify_sink_ready", "kind", "nats", "url", url)
		return nil
	}
	a.dispatcher = notify.NewDispatcher(nil)
	logger.Info("notify_sink_ready", "kind", "log")
	return nil
}

// Run starts the maintenance scheduler and the HTTP server, and blocks
// until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	stopMaint, err := maintenance.Start(ctx, a.cfg, a.sweeper)
	if err != nil {
		a.closeResources()
		return err
	}
	defer stopMaint()

	a.printBanner()

	errCh := a.startHTTP()

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		a.closeResources()
		return err
	}
}

// shutdown drains the HTTP server then releases resources.
func (a *App) shutdown() {
	if a.srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(sctx); err != nil {
			logger.Error("http_shutdown_error", "error", err)
		}
	}
	a.closeResources()
	logger.Info("shutdown_complete")
}

func (a *App) closeResources() {
	if a.natsSink != nil {
		a.natsSink.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if store.Ready() {
		if err := store.Close(); err != nil {
			logger.Error("store_close_error", "error", err)
		}
	}
}

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	verStr := a.version
	if a.commit != "none" {
		verStr += " (" + a.commit + ")"
	}
	if a.buildDate != "unknown" {
		verStr += " @ " + a.buildDate
	}
	banner.Print(a.cfg, a.addr, a.dbPath, a.source, verStr)
}
