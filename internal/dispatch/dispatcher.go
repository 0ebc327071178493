package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

const defaultHost = "localhost"

// Request is a synthetic request sent to the host site.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Response is what the host site produced. Statuses holds one entry per
// status line the handler emitted, formatted "404 Not Found".
type Response struct {
	Statuses []string
	Header   http.Header
	Body     []byte
}

// Dispatcher invokes the host site without a network hop.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) (*Response, error)
}

// HandlerDispatcher drives an http.Handler in-process.
type HandlerDispatcher struct {
	handler http.Handler
}

func New(h http.Handler) *HandlerDispatcher {
	return &HandlerDispatcher{handler: h}
}

// Dispatch builds a request from req and the scope/language on ctx, runs
// the handler to completion and collects what it wrote. A panicking
// handler is reported as a render error, never propagated.
func (d *HandlerDispatcher) Dispatch(ctx context.Context, req Request) (resp *Response, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	host := defaultHost
	if scope, ok := ScopeFrom(ctx); ok && scope.Hostname != "" {
		host = scope.Hostname
	}

	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	r, err := http.NewRequestWithContext(ctx, method, "http://"+host+req.Path, body)
	if err != nil {
		return nil, &domain.RenderError{URI: req.Path, Msg: "cannot build request for " + req.Path, Err: err}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if lang := Language(ctx); lang != "" && r.Header.Get("Accept-Language") == "" {
		r.Header.Set("Accept-Language", lang)
	}
	r.RemoteAddr = "127.0.0.1:0"
	r.RequestURI = req.Path

	rec := newRecorder()
	defer func() {
		if p := recover(); p != nil {
			resp = nil
			err = &domain.RenderError{URI: req.Path, Msg: fmt.Sprintf("handler panicked while rendering %s: %v", req.Path, p)}
		}
	}()

	d.handler.ServeHTTP(rec, r)
	return rec.response(), nil
}

// recorder is a minimal ResponseWriter. Unlike httptest.ResponseRecorder it
// remembers every WriteHeader call so duplicated status lines are visible.
type recorder struct {
	header   http.Header
	snapshot http.Header
	codes    []int
	body     bytes.Buffer
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header)}
}

func (w *recorder) Header() http.Header { return w.header }

func (w *recorder) WriteHeader(code int) {
	if len(w.codes) == 0 {
		w.snapshot = w.header.Clone()
	}
	w.codes = append(w.codes, code)
}

func (w *recorder) Write(p []byte) (int, error) {
	if len(w.codes) == 0 {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(p)
}

func (w *recorder) Flush() {
	if len(w.codes) == 0 {
		w.WriteHeader(http.StatusOK)
	}
}

func (w *recorder) response() *Response {
	statuses := make([]string, 0, len(w.codes))
	for _, c := range w.codes {
		statuses = append(statuses, StatusLine(c))
	}
	header := w.snapshot
	if header == nil {
		header = w.header.Clone()
	}
	return &Response{
		Statuses: statuses,
		Header:   header,
		Body:     bytes.Clone(w.body.Bytes()),
	}
}

// StatusLine formats code the way a status line reads, "200 OK".
func StatusLine(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return strconv.Itoa(code)
	}
	return strconv.Itoa(code) + " " + text
}
