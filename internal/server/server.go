package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Loopback is a temporary localhost HTTP server that captures one Discogs
// authorization redirect and then shuts down.
type Loopback struct {
	handler  *CallbackHandler
	listener net.Listener
	srv      *http.Server
	logger   *log.Logger
}

// NewLoopback binds an ephemeral localhost port and prepares the callback
// route. Call [Loopback.Serve] to start accepting, [Loopback.URL] for the
// redirect target to register with the backend.
func NewLoopback(state string, logger *log.Logger) (*Loopback, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to bind loopback listener: %w", err)
	}

	handler := NewCallbackHandler(state)

	router := NewBasicRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("callback server request", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	})
	router.Handler(handler)

	return &Loopback{
		handler:  handler,
		listener: listener,
		srv:      &http.Server{Handler: router},
		logger:   logger,
	}, nil
}

// SetState sets the expected state token once the backend has issued one.
func (l *Loopback) SetState(state string) {
	l.handler.SetState(state)
}

// URL returns the callback URL to register as the redirect target.
func (l *Loopback) URL() string {
	return fmt.Sprintf("http://%s/callback", l.listener.Addr().String())
}

// Serve starts accepting requests. Blocks until [Loopback.Shutdown] is called.
func (l *Loopback) Serve() error {
	err := l.srv.Serve(l.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Wait blocks until the redirect arrives or the context expires, then shuts
// the server down either way.
func (l *Loopback) Wait(ctx context.Context) (CallbackResult, error) {
	defer l.Shutdown()

	select {
	case result, ok := <-l.handler.Result():
		if !ok {
			return CallbackResult{}, fmt.Errorf("callback server closed without a result")
		}
		if err := result.Error(); err != nil {
			return CallbackResult{}, err
		}
		return result, nil
	case <-ctx.Done():
		return CallbackResult{}, fmt.Errorf("timed out waiting for authorization: %w", ctx.Err())
	}
}

// Shutdown stops the server, giving in-flight responses a moment to finish.
func (l *Loopback) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = l.srv.Shutdown(ctx)
}
