package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"bot-dispatch/internal/adapters/discord"
	"bot-dispatch/internal/adapters/discord/commands"
	"bot-dispatch/internal/adapters/discord/modals"
	"bot-dispatch/internal/adapters/discord/pagination"
	"bot-dispatch/internal/adapters/storage/postgres"
	"bot-dispatch/internal/config"
	"bot-dispatch/internal/core/cooldown"
	"bot-dispatch/internal/logging"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	config             *config.Config
	audit              auditSink
	discord            *discordgo.Session
	manager            *commands.Manager
	hub                *pagination.Hub
	modals             *modals.Registry
	router             *commands.Router
	removeHandlers     func()
	metricsServer      *http.Server
	auditCancel        context.CancelFunc
	auditDone          sync.WaitGroup
	registeredCommands []*discordgo.ApplicationCommand
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{config: cfg}

	opts := []logging.Option{logging.WithConsole(os.Stderr)}
	var auditReader AuditReader
	if cfg.AuditEnabled() {
		store, err := postgres.NewAuditStore(ctx, cfg.DatabaseURL, postgres.DefaultQueueSize)
		if err != nil {
			slog.Error("Failed to connect to audit storage", "error", err)
			return nil, err
		}
		if n, err := store.Prune(ctx, cfg.AuditRetention); err != nil {
			slog.Warn("Failed to prune audit log", "error", err)
		} else {
			slog.Info("Pruned audit log", "deleted", n, "retention", cfg.AuditRetention)
		}
		app.audit = store
		auditReader = store
		opts = append(opts, logging.WithSink(store, slog.LevelWarn))
	}
	logger := logging.New(slog.Default(), opts...)

	session, err := discord.NewSession(cfg)
	if err != nil {
		if app.audit != nil {
			app.audit.Close()
		}
		return nil, err
	}
	app.discord = session

	app.manager = commands.NewManager(cooldown.NewTracker(), logger)
	app.hub = pagination.NewHub(logger)
	app.modals = modals.NewRegistry(logger)

	app.manager.RegisterMultiple(BuildCommands(CommandDeps{
		Manager:      app.manager,
		Hub:          app.hub,
		Modals:       app.modals,
		Bans:         session,
		Audit:        auditReader,
		Logger:       logger,
		HelpPageSize: cfg.HelpPageSize,
		PageTimeout:  cfg.PageTimeout,
	})...)

	app.router = commands.NewRouter(commands.Handlers{
		Commands:   app.manager,
		Components: app.hub,
		Modals:     app.modals,
		Ready:      discord.ReadyHandler,
	}, commands.WithRouterLogger(logger), commands.WithReplyWindow(cfg.ReplyWindow))
	app.removeHandlers = app.router.Install(session)

	return app, nil
}

func (a *App) Run() error {
	a.startMetricsServer()
	a.startAuditWriter()

	if err := a.discord.Open(); err != nil {
		slog.Error("Failed to open discord session", "error", err)
		return err
	}

	a.registeredCommands = commands.Sync(a.discord, a.manager, a.discord.State.User.ID, a.config.DiscordGuildID)

	slog.Info("Bot is ready", "commands", a.manager.Len(), "guild_id", a.config.DiscordGuildID)
	return nil
}

func (a *App) startMetricsServer() {
	if a.config.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metricsServer = &http.Server{
		Addr:              a.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Metrics server listening", "addr", a.config.MetricsAddr)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
}

func (a *App) startAuditWriter() {
	if a.audit == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.auditCancel = cancel
	a.auditDone.Add(1)
	go func() {
		defer a.auditDone.Done()
		a.audit.Run(ctx)
	}()
}

func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down...")

	var errs []error

	if a.hub != nil {
		a.hub.Close()
	}

	if a.removeHandlers != nil {
		a.removeHandlers()
	}

	if a.discord != nil {
		if a.config.CleanupCommands && a.discord.State != nil && a.discord.State.User != nil {
			if err := commands.CleanupCommands(a.discord, a.registeredCommands, a.discord.State.User.ID, a.config.DiscordGuildID); err != nil {
				errs = append(errs, err)
			}
		}
		if err := a.discord.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if a.auditCancel != nil {
		a.auditCancel()
		a.auditDone.Wait()
	}
	if a.audit != nil {
		a.audit.Close()
	}

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
