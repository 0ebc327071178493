package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/staticsite/internal/config"
	"github.com/MrSnakeDoc/staticsite/internal/dispatch"
	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/httpserver"
	"github.com/MrSnakeDoc/staticsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/staticsite/internal/index"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/publish"
	"github.com/MrSnakeDoc/staticsite/internal/render"
	"github.com/MrSnakeDoc/staticsite/internal/scheduler"
	"github.com/MrSnakeDoc/staticsite/internal/sources/content"
	"github.com/MrSnakeDoc/staticsite/internal/version"
)

// App ties the host site, the renderer and the publishers together. It is
// what the command line drives.
type App struct {
	cfg      *config.Config
	settings *config.Settings
	logger   logger.Logger
	site     *httpserver.Site
	content  *index.MemoryIndex
	langs    []string

	// OnState, when set, is called on every state transition of a
	// generate or publish run.
	OnState func(State)
}

// New loads the site content and declares the host site's routes. Every
// configuration problem surfaces here, before anything is rendered.
func New(cfg *config.Config, settings *config.Settings, loggerClient logger.Logger) (*App, error) {
	if loggerClient == nil {
		loggerClient = logger.NewNop()
	}

	langs, err := settings.Langs()
	if err != nil {
		return nil, err
	}

	siteContent, err := content.LoadFile(settings.ContentFile)
	if err != nil {
		return nil, domain.WrapConfig(err, "cannot load content")
	}
	loggerClient.Debug("content loaded",
		logger.String("file", settings.ContentFile),
		logger.Int("pages", len(siteContent.Pages)),
		logger.Int("posts", len(siteContent.Posts)),
	)

	contentIndex := index.NewMemoryIndex(siteContent)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		Debug:        settings.Debug,
		Languages:    langs,
		Content:      contentIndex,
	}

	site, err := httpserver.NewSite(d)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		settings: settings,
		logger:   loggerClient,
		site:     site,
		content:  contentIndex,
		langs:    langs,
	}, nil
}

func (a *App) Settings() *config.Settings { return a.settings }
func (a *App) Languages() []string         { return a.langs }

func (a *App) hostname() string {
	if a.settings.Hostname != "" {
		return a.settings.Hostname
	}
	return a.cfg.Hostname
}

// renderer builds the static renderer for one run.
func (a *App) renderer(parallel int) *render.Site {
	if parallel <= 0 {
		parallel = a.cfg.Parallel
	}
	return render.NewSite(a.site.Routes, dispatch.New(a.site.Handler), a.logger, render.Options{
		Languages:   a.langs,
		Hostname:    a.hostname(),
		Debug:       a.settings.Debug,
		Concurrency: parallel,
	})
}

// StaticURLs lists every URI a full render produces.
func (a *App) StaticURLs() ([]string, error) {
	return a.renderer(1).URIs()
}

// RenderRoute renders one named static route into dir.
func (a *App) RenderRoute(ctx context.Context, dir, name string, params domain.ParamSet, lang string) (string, error) {
	return a.renderer(1).RenderOne(ctx, dir, name, params, lang)
}

// TargetInfo describes a configured publishing target.
type TargetInfo struct {
	Name      string
	Engine    string
	PublicURL string
	Supported bool
	Err       error
}

// PublishTargets lists the configured targets, sorted by name.
func (a *App) PublishTargets() []TargetInfo {
	var out []TargetInfo
	for _, name := range a.settings.TargetNames() {
		t, err := a.settings.Target(name)
		out = append(out, TargetInfo{
			Name:      name,
			Engine:    t.Engine,
			PublicURL: t.PublicURL,
			Supported: err == nil && publish.Supports(t.Engine),
			Err:       err,
		})
	}
	return out
}

// Target resolves a publishing target the way publish and test-target do.
func (a *App) Target(name string) (domain.PublishTarget, error) { return a.target(name) }

// target resolves name and applies process wide defaults to it.
func (a *App) target(name string) (domain.PublishTarget, error) {
	t, err := a.settings.Target(name)
	if err != nil {
		return t, err
	}
	if _, ok := t.Options[publish.OptionHTTPTimeout]; !ok && a.cfg.HTTPTimeout > 0 {
		t.Options[publish.OptionHTTPTimeout] = a.cfg.HTTPTimeout.String()
	}
	if !publish.Supports(t.Engine) {
		return t, domain.Configf(domain.ErrUnknownEngine,
			"Publishing target %q uses unknown engine %q, available engines: %v", name, t.Engine, publish.Engines())
	}
	return t, nil
}

// TestTarget checks a publishing target with a probe file round trip.
func (a *App) TestTarget(ctx context.Context, name string) (*publish.TestReport, error) {
	t, err := a.target(name)
	if err != nil {
		return nil, err
	}
	return publish.TestTarget(ctx, t, a.logger)
}

// ServeOptions configure the preview server.
type ServeOptions struct {
	Addr string
	// ReloadInterval is how often the content file is checked for
	// changes. Zero disables reloading.
	ReloadInterval time.Duration
}

// Serve runs the host site on the preview server until interrupted. SIGHUP
// reloads the content file.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	addr := opts.Addr
	if addr == "" {
		addr = a.cfg.ListenAddr
	}
	a.logger.Infof("🚀 Starting preview server on %s", addr)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.settings.ContentFile != "" && opts.ReloadInterval > 0 {
		trigger := make(chan struct{}, 1)
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		go func() {
			for {
				select {
				case <-hup:
					select {
					case trigger <- struct{}{}:
					default:
					}
				case <-ctx.Done():
					return
				}
			}
		}()

		reloader := scheduler.NewContentReloader(a.settings.ContentFile, a.content, a.logger, opts.ReloadInterval, trigger)
		if err := reloader.Start(ctx); err != nil {
			return err
		}
		defer reloader.Stop()
		a.logger.Info("watching content file",
			logger.String("file", a.settings.ContentFile),
			logger.Duration("interval", opts.ReloadInterval))
	}

	server := httpserver.New(addr, a.site.Handler, a.logger)
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ Preview server stopped cleanly")
	return nil
}
