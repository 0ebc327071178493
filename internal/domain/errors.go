package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error surfaced by the renderer or the publisher
// matches exactly one of the first three with errors.Is.
var (
	ErrConfig  = errors.New("configuration error")
	ErrRender  = errors.New("render error")
	ErrPublish = errors.New("publish error")
)

// Finer grained kinds, carried alongside a category.
var (
	ErrInvalidGeneratorResult = errors.New("invalid parameter generator result")
	ErrStatusMismatch         = errors.New("unexpected HTTP status")
	ErrInvalidStatus          = errors.New("invalid HTTP status")
	ErrPathCollision          = errors.New("output path collision")
	ErrUnsafePath             = errors.New("output path escapes output directory")
	ErrTemplateMismatch       = errors.New("filename template does not match parameters")
	ErrNoReverseMatch         = errors.New("no reverse match")
	ErrUnknownRoute           = errors.New("unknown static route")
	ErrUnknownTarget          = errors.New("unknown publishing target")
	ErrUnknownEngine          = errors.New("unknown publishing engine")
	ErrMissingOption          = errors.New("missing publishing option")
	ErrUnsupportedScheme      = errors.New("unsupported URL scheme")
	ErrVerificationExhausted  = errors.New("remote verification exhausted")
)

// ConfigError is returned before any rendering or network traffic.
type ConfigError struct {
	Kind error
	Msg  string
	Err  error
}

func (e *ConfigError) Error() string { return message(e.Msg, e.Err) }
func (e *ConfigError) Unwrap() []error {
	return compact(ErrConfig, e.Kind, e.Err)
}

// RenderError carries the URI being rendered when one is known.
type RenderError struct {
	Kind error
	URI  string
	Msg  string
	Err  error
}

func (e *RenderError) Error() string { return message(e.Msg, e.Err) }
func (e *RenderError) Unwrap() []error {
	return compact(ErrRender, e.Kind, e.Err)
}

// PublishError names the target being published to.
type PublishError struct {
	Kind   error
	Target string
	Msg    string
	Err    error
}

func (e *PublishError) Error() string { return message(e.Msg, e.Err) }
func (e *PublishError) Unwrap() []error {
	return compact(ErrPublish, e.Kind, e.Err)
}

func Configf(kind error, format string, args ...any) *ConfigError {
	return &ConfigError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Renderf(kind error, uri, format string, args ...any) *RenderError {
	return &RenderError{Kind: kind, URI: uri, Msg: fmt.Sprintf(format, args...)}
}

func Publishf(kind error, target, format string, args ...any) *PublishError {
	return &PublishError{Kind: kind, Target: target, Msg: fmt.Sprintf(format, args...)}
}

// WrapConfig attaches cause to a configuration error unless it already is
// one.
func WrapConfig(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConfig) {
		return err
	}
	return &ConfigError{Msg: msg, Err: err}
}

// WrapRender attaches cause to a render error unless it already is one.
func WrapRender(err error, uri, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRender) {
		return err
	}
	return &RenderError{URI: uri, Msg: msg, Err: err}
}

// WrapPublish attaches cause to a publish error unless it already is a
// publish or config error.
func WrapPublish(err error, target, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPublish) || errors.Is(err, ErrConfig) {
		return err
	}
	return &PublishError{Target: target, Msg: msg, Err: err}
}

func message(msg string, err error) string {
	switch {
	case err == nil:
		return msg
	case msg == "":
		return err.Error()
	default:
		return msg + ": " + err.Error()
	}
}

func compact(errs ...error) []error {
	out := errs[:0]
	for _, e := range errs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}
