package app

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/render"
	"github.com/MrSnakeDoc/staticsite/internal/sources/redirects"
	"github.com/MrSnakeDoc/staticsite/internal/staticfiles"
)

// GenerateOptions mirror the generate command's flags.
type GenerateOptions struct {
	OutputDir         string
	CollectStatic     bool
	ExcludeStatic     bool
	GenerateRedirects bool
	Parallel          int
}

// GenerateReport is what a generate run wrote.
type GenerateReport struct {
	OutputDir string
	Files     []string
	Assets    int
	Redirects []string
	States    []State
	Took      time.Duration
}

// Generate renders the site into opts.OutputDir, which must exist, then
// copies static and media files and writes redirect pages when asked to.
func (a *App) Generate(ctx context.Context, opts GenerateOptions) (*GenerateReport, error) {
	r := &run{onState: a.OnState}
	report, err := a.generate(ctx, r, opts)
	if err != nil {
		r.enter(Failed)
	} else {
		r.enter(Done)
	}
	report.States = r.states
	return report, err
}

func (a *App) generate(ctx context.Context, r *run, opts GenerateOptions) (*GenerateReport, error) {
	start := time.Now()
	report := &GenerateReport{OutputDir: opts.OutputDir}

	// Redirect records are read first so a broken file fails the run
	// before anything is rendered.
	var records []domain.Redirect
	if opts.GenerateRedirects {
		if a.settings.RedirectsFile == "" {
			return report, domain.Configf(domain.ErrConfig, "generating redirects needs redirects_file in the settings")
		}
		var err error
		if records, err = redirects.NewLoader(a.settings.RedirectsFile).Load(); err != nil {
			return report, domain.WrapConfig(err, "cannot load redirects")
		}
	}

	filter := a.settings.Filter()
	if opts.CollectStatic {
		n, err := staticfiles.Collect(a.settings.StaticDirs, a.settings.StaticRoot, filter, a.logger)
		if err != nil {
			return report, domain.WrapConfig(err, "collecting static files")
		}
		a.logger.Info("collected static files", logger.Int("files", n))
	}

	r.enter(Generating)
	files, err := a.renderer(opts.Parallel).RenderToDirectory(ctx, opts.OutputDir)
	report.Files = files
	if err != nil {
		return report, err
	}

	if !opts.ExcludeStatic {
		r.enter(CopyingStaticAssets)
		mounts := []struct {
			kind string
			m    staticfiles.Mount
		}{
			{"static", staticfiles.Mount{URL: a.settings.StaticURL, Root: a.settings.StaticRoot}},
			{"media", staticfiles.Mount{URL: a.settings.MediaURL, Root: a.settings.MediaRoot}},
		}
		for _, mount := range mounts {
			n, err := staticfiles.CopyMount(opts.OutputDir, mount.kind, mount.m, filter, a.logger)
			if err != nil {
				return report, &domain.RenderError{Msg: "copying " + mount.kind + " files", Err: err}
			}
			report.Assets += n
		}
	}

	if opts.GenerateRedirects {
		r.enter(GeneratingRedirects)
		written, err := render.WriteRedirects(opts.OutputDir, records, a.logger)
		report.Redirects = written
		if err != nil {
			return report, err
		}
	}

	report.Took = time.Since(start)
	a.logger.Info("site generated",
		logger.String("output", opts.OutputDir),
		logger.Int("pages", len(report.Files)),
		logger.Int("assets", report.Assets),
		logger.Int("redirects", len(report.Redirects)),
		logger.Duration("took", report.Took),
	)
	return report, nil
}
