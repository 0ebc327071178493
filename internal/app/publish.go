package app

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/publish"
	"github.com/MrSnakeDoc/staticsite/internal/utils"
)

// PublishOptions select the target and how the site is generated for it.
// Generate.OutputDir is ignored, publishing always renders into a scratch
// directory.
type PublishOptions struct {
	Target   string
	Generate GenerateOptions
}

// PublishReport summarizes a publish run.
type PublishReport struct {
	Target    string
	Engine    string
	Account   string
	Container string
	Generated *GenerateReport
	Sync      *publish.SyncReport
	States    []State
	Took      time.Duration
}

// Publish renders the site into a scratch directory and mirrors it onto the
// target. Configuration is checked before rendering, rendering before any
// network call, authentication before any upload. Files uploaded before a
// failure stay on the target.
func (a *App) Publish(ctx context.Context, opts PublishOptions) (*PublishReport, error) {
	start := time.Now()
	r := &run{onState: a.OnState}
	report := &PublishReport{Target: opts.Target}

	err := a.publish(ctx, r, opts, report)
	if err != nil {
		a.logger.Error("publish failed",
			logger.String("target", opts.Target),
			logger.String("state", r.current().String()),
			logger.Error(err),
		)
		r.enter(Failed)
	} else {
		r.enter(Done)
	}
	report.States = r.states
	report.Took = time.Since(start)
	return report, err
}

func (a *App) publish(ctx context.Context, r *run, opts PublishOptions, report *PublishReport) error {
	target, err := a.target(opts.Target)
	if err != nil {
		return err
	}
	report.Engine = target.Engine

	scratch, err := os.MkdirTemp("", "staticsite-publish-")
	if err != nil {
		return &domain.PublishError{Target: target.Name, Msg: "cannot create scratch directory", Err: err}
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			a.logger.Warn("failed to remove scratch directory", logger.String("dir", scratch), logger.Error(err))
		}
	}()

	backend, err := publish.Open(target, scratch, a.logger)
	if err != nil {
		return err
	}
	if c, ok := backend.(io.Closer); ok {
		defer utils.Close(c, "publishing backend", a.logger)
	}

	gen := opts.Generate
	gen.OutputDir = scratch
	report.Generated, err = a.generate(ctx, r, gen)
	if err != nil {
		return err
	}

	r.enter(Authenticating)
	if err := backend.Authenticate(ctx); err != nil {
		return domain.WrapPublish(err, target.Name, "authentication failed")
	}
	report.Account = backend.AccountUsername()
	report.Container = backend.AccountContainer()
	a.logger.Info("authenticated",
		logger.String("target", target.Name),
		logger.String("engine", target.Engine),
		logger.String("account", report.Account),
		logger.String("container", report.Container),
	)

	r.enter(Syncing)
	report.Sync, err = publish.Sync(ctx, backend, a.logger)
	if err != nil {
		return err
	}

	r.enter(Verifying)
	if err := backend.FinalChecks(ctx); err != nil {
		return domain.WrapPublish(err, target.Name, "final checks failed")
	}

	a.logger.Info("site published",
		logger.String("target", target.Name),
		logger.Int("uploaded", len(report.Sync.Uploaded)),
		logger.Int("unchanged", len(report.Sync.Unchanged)),
		logger.Int("deleted", len(report.Sync.Deleted)),
	)
	return nil
}
