package render

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/staticsite/internal/dispatch"
	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
)

// Reverser resolves a route name and parameters to a URI.
type Reverser interface {
	Reverse(namespace, name string, params domain.ParamSet, lang string) (string, error)
}

// Renderer turns one (route, params, language) triple into an artifact.
type Renderer struct {
	reverser   Reverser
	dispatcher dispatch.Dispatcher
	log        logger.Logger
}

func NewRenderer(rev Reverser, d dispatch.Dispatcher, log logger.Logger) *Renderer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Renderer{reverser: rev, dispatcher: d, log: log}
}

// URI resolves the route to the URI it will be rendered at.
func (r *Renderer) URI(route *domain.RouteDescriptor, params domain.ParamSet, lang string) (string, error) {
	uri, err := r.reverser.Reverse(route.Namespace, route.Name, params, lang)
	if err != nil {
		return "", domain.Renderf(domain.ErrNoReverseMatch, "", "cannot resolve %s: %v", route.QualifiedName(), err)
	}
	return uri, nil
}

// Render resolves the URI, dispatches a GET to the host site under lang
// and checks the status against the route's accepted codes.
func (r *Renderer) Render(ctx context.Context, route *domain.RouteDescriptor, params domain.ParamSet, lang string) (*domain.RenderedArtifact, error) {
	uri, err := r.URI(route, params, lang)
	if err != nil {
		return nil, err
	}
	return r.RenderAt(ctx, route, params, lang, uri)
}

// RenderAt renders route at an already resolved uri.
func (r *Renderer) RenderAt(ctx context.Context, route *domain.RouteDescriptor, params domain.ParamSet, lang, uri string) (*domain.RenderedArtifact, error) {
	filename, err := Filename(route.FilenameTemplate, uri, params)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	status, header, body, err := r.RenderURI(ctx, uri, route.AcceptedStatusCodes(), lang)
	if err != nil {
		return nil, err
	}

	r.log.Debug("rendered",
		logger.String("route", route.QualifiedName()),
		logger.String("uri", uri),
		logger.String("lang", lang),
		logger.Int("status", status),
		logger.Duration("took", time.Since(start)),
	)

	return &domain.RenderedArtifact{
		Route:    route,
		Params:   params,
		Language: lang,
		URI:      uri,
		Status:   status,
		Header:   header,
		Body:     body,
		Filename: filename,
	}, nil
}

// RenderURI dispatches a GET for uri and returns status, headers and body.
func (r *Renderer) RenderURI(ctx context.Context, uri string, accepted []int, lang string) (int, http.Header, []byte, error) {
	resp, err := r.dispatcher.Dispatch(dispatch.WithLanguage(ctx, lang), dispatch.Request{
		Method: http.MethodGet,
		Path:   uri,
	})
	if err != nil {
		return 0, nil, nil, domain.WrapRender(err, uri, "dispatch failed for URI "+uri)
	}

	if len(resp.Statuses) != 1 {
		return 0, nil, nil, domain.Renderf(domain.ErrInvalidStatus, uri,
			"Invalid HTTP status: expected a single status line for URI %s, got %d", uri, len(resp.Statuses))
	}

	line := resp.Statuses[0]
	status, err := ParseStatus(line)
	if err != nil {
		return 0, nil, nil, domain.Renderf(domain.ErrInvalidStatus, uri, "Invalid HTTP status %q for URI: %s", line, uri)
	}

	if !contains(accepted, status) {
		return 0, nil, nil, domain.Renderf(domain.ErrStatusMismatch, uri, "Unexpected HTTP status: %s for URI: %s", line, uri)
	}
	return status, resp.Header, resp.Body, nil
}

// ParseStatus reads the numeric code at the start of a status line.
func ParseStatus(line string) (int, error) {
	code, _, _ := strings.Cut(line, " ")
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0, err
	}
	if n < 100 || n > 599 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

func contains(codes []int, code int) bool {
	if len(codes) == 0 {
		return code == http.StatusOK
	}
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
