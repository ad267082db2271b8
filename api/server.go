// Package api exposes the renderer's command socket over HTTP and MQTT.
package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/matt-g-everett/marquee/command"
)

// Forwarder delivers commands to the renderer. *ipc.Client implements it.
type Forwarder interface {
	Do(c command.Command) error
	Query(c command.Command) (command.Response, error)
}

// Parse reads a bridged payload: a JSON envelope, a single text command
// line, or several lines which become a command-list.
func Parse(payload []byte) (command.Command, error) {
	payload = bytes.TrimSpace(payload)
	if bytes.HasPrefix(payload, []byte("{")) {
		return command.Decode(payload)
	}
	if bytes.ContainsRune(payload, '\n') {
		return command.ParseScript(string(payload))
	}
	return command.ParseLine(string(payload))
}

// Api serves the HTTP bridge.
type Api struct {
	fwd Forwarder
	log *zap.SugaredLogger
}

// NewApi creates an Api forwarding to fwd.
func NewApi(fwd Forwarder, log *zap.SugaredLogger) *Api {
	a := new(Api)
	a.fwd = fwd
	a.log = log
	return a
}

// Handler routes the bridge endpoints.
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /command", a.handleCommand)
	mux.HandleFunc("GET /state", a.handleState)
	mux.HandleFunc("GET /healthz", a.handleHealth)
	return mux
}

// Serve listens on addr until ctx is done.
func (a *Api) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	a.log.Infow("http bridge listening", "addr", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http bridge")
	}
	return nil
}

func (a *Api) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, command.DefaultMaxFrame))
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	c, err := Parse(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if c.Op == command.OpGetState {
		resp, err := a.fwd.Query(c)
		if err != nil {
			a.unavailable(w, c, err)
			return
		}
		a.writeJSON(w, http.StatusOK, resp)
		return
	}
	if err := a.fwd.Do(c); err != nil {
		a.unavailable(w, c, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (a *Api) handleState(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "missing key", http.StatusBadRequest)
		return
	}
	c := command.GetState(key)
	resp, err := a.fwd.Query(c)
	if err != nil {
		a.unavailable(w, c, err)
		return
	}
	status := http.StatusOK
	if !resp.Found {
		status = http.StatusNotFound
	}
	a.writeJSON(w, status, resp)
}

func (a *Api) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.fwd.Do(command.Noop()); err != nil {
		a.unavailable(w, command.Noop(), err)
		return
	}
	_, _ = io.WriteString(w, "ok\n")
}

func (a *Api) unavailable(w http.ResponseWriter, c command.Command, err error) {
	a.log.Warnw("renderer unavailable", "op", c.Op, "error", err)
	http.Error(w, "renderer unavailable", http.StatusServiceUnavailable)
}

func (a *Api) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Warnw("writing response", "error", err)
	}
}
