package render

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/MrSnakeDoc/staticsite/internal/dispatch"
	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
)

// Routes is what the site needs from a route table.
type Routes interface {
	Reverser
	Static() []*domain.RouteDescriptor
	StaticRoute(qualified string) (*domain.RouteDescriptor, error)
}

type Options struct {
	// Languages to render under. Empty renders once with no language
	// activated.
	Languages []string

	// Hostname sent to the host site. Empty allows any host.
	Hostname string

	Debug       bool
	Concurrency int
}

// Site renders every static route of a host site into a directory.
type Site struct {
	routes    Routes
	renderer  *Renderer
	opts      Options
	scheduler Scheduler
	log       logger.Logger
}

func NewSite(routes Routes, d dispatch.Dispatcher, log logger.Logger, opts Options) *Site {
	if log == nil {
		log = logger.NewNop()
	}
	return &Site{
		routes:    routes,
		renderer:  NewRenderer(routes, d, log),
		opts:      opts,
		scheduler: Scheduler{Concurrency: opts.Concurrency},
		log:       log,
	}
}

func (s *Site) Renderer() *Renderer { return s.renderer }

func (s *Site) languages() []string {
	if len(s.opts.Languages) == 0 {
		return []string{""}
	}
	return s.opts.Languages
}

// Scope is the host-environment override every render pass runs under.
func (s *Site) Scope() dispatch.Scope {
	hosts := []string{"*"}
	if s.opts.Hostname != "" {
		hosts = []string{s.opts.Hostname}
	}
	return dispatch.Scope{AllowedHosts: hosts, Debug: s.opts.Debug, Hostname: s.opts.Hostname}
}

// Plan expands every static route into tasks, routes outermost, then
// parameter sets, then languages. Each generator runs exactly once. A
// task resolving to an output path already claimed by an earlier task is
// dropped so workers never share a file.
func (s *Site) Plan() ([]Task, error) {
	var (
		tasks   []Task
		claimed = make(map[string]string)
	)

	for _, route := range s.routes.Static() {
		sets, err := ExpandParams(route)
		if err != nil {
			return nil, err
		}
		for _, params := range sets {
			for _, lang := range s.languages() {
				uri, err := s.renderer.URI(route, params, lang)
				if err != nil {
					return nil, err
				}
				filename, err := Filename(route.FilenameTemplate, uri, params)
				if err != nil {
					return nil, err
				}
				_, rel, err := OutputPath("", filename, uri)
				if err != nil {
					return nil, err
				}
				if prev, ok := claimed[rel]; ok {
					if prev != uri {
						return nil, domain.Renderf(domain.ErrPathCollision, uri,
							"URIs %s and %s both render to %s", prev, uri, rel)
					}
					s.log.Debug("skipping duplicate render",
						logger.String("uri", uri),
						logger.String("lang", lang),
						logger.String("path", rel),
					)
					continue
				}
				claimed[rel] = uri
				tasks = append(tasks, Task{
					Route:    route,
					Params:   params,
					Language: lang,
					URI:      uri,
					Filename: filename,
					RelPath:  rel,
				})
			}
		}
	}
	return tasks, nil
}

// URIs lists every URI a full render would produce, in plan order.
func (s *Site) URIs() ([]string, error) {
	tasks, err := s.Plan()
	if err != nil {
		return nil, err
	}
	uris := make([]string, 0, len(tasks))
	for _, t := range tasks {
		uris = append(uris, t.URI)
	}
	return uris, nil
}

// RenderToDirectory renders every static route into dir and returns the
// written paths, sorted. The host scope is restored when it returns,
// whether it succeeded or not.
func (s *Site) RenderToDirectory(ctx context.Context, dir string) ([]string, error) {
	tasks, err := s.Plan()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &domain.RenderError{Msg: "cannot create output directory " + dir, Err: err}
	}

	ctx, release := dispatch.Enter(ctx, s.Scope())
	defer release()

	s.log.Info("rendering static site",
		logger.String("output", dir),
		logger.Int("tasks", len(tasks)),
		logger.Int("concurrency", s.scheduler.limit()),
	)

	paths, err := s.scheduler.Run(ctx, tasks, func(ctx context.Context, t Task) (string, error) {
		artifact, err := s.renderer.RenderAt(ctx, t.Route, t.Params, t.Language, t.URI)
		if err != nil {
			return "", err
		}
		return s.materialize(dir, artifact)
	})
	sort.Strings(paths)
	if err != nil {
		return paths, err
	}
	return paths, nil
}

// RenderOne renders a single route and parameter set into dir. Unlike a
// full render it does not need the route's generator.
func (s *Site) RenderOne(ctx context.Context, dir, qualifiedName string, params domain.ParamSet, lang string) (string, error) {
	route, err := s.routes.StaticRoute(qualifiedName)
	if err != nil {
		return "", err
	}

	ctx, release := dispatch.Enter(ctx, s.Scope())
	defer release()

	artifact, err := s.renderer.Render(ctx, route, params, lang)
	if err != nil {
		return "", err
	}
	return s.materialize(dir, artifact)
}

func (s *Site) materialize(dir string, a *domain.RenderedArtifact) (string, error) {
	full, rel, err := OutputPath(dir, a.Filename, a.URI)
	if err != nil {
		return "", err
	}
	if err := WriteFile(full, a.URI, a.Body); err != nil {
		return "", err
	}
	s.log.Debug("wrote", logger.String("uri", a.URI), logger.String("path", filepath.ToSlash(rel)))
	return full, nil
}
