package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/morezero/typed-rpc/pkg/events"
	"github.com/morezero/typed-rpc/pkg/rpc"
	"github.com/morezero/typed-rpc/pkg/schema"
)

const httpLogPrefix = "server:http"

// HealthCheck probes one dependency. A non-nil error marks the server
// unhealthy.
type HealthCheck func(ctx context.Context) error

// HTTPOptions configures NewHTTPHandler.
type HTTPOptions struct {
	MaxBodyBytes       int64
	RequestTimeout     time.Duration
	HealthCheckTimeout time.Duration
	Checks             map[string]HealthCheck
}

type httpHandler struct {
	app  *rpc.App
	opts HTTPOptions
}

// HealthOutput is the body of GET /health.
type HealthOutput struct {
	Status     string          `json:"status"`
	App        string          `json:"app"`
	Version    string          `json:"version"`
	Procedures int             `json:"procedures"`
	Checks     map[string]bool `json:"checks"`
	Timestamp  string          `json:"timestamp"`
}

// NewHTTPHandler returns the HTTP surface of app:
//
//	GET  /        procedure listing
//	POST /rpc     call batch
//	GET  /schema  schema document
//	GET  /health  health with dependency checks
//	GET  /ready   readiness
func NewHTTPHandler(app *rpc.App, opts HTTPOptions) http.Handler {
	h := &httpHandler{app: app, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", h.handleHome())
	r.Post("/rpc", h.handleRPC)
	r.Get("/schema", h.handleSchema)
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)
	return r
}

func (h *httpHandler) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes))
	if err != nil {
		e := rpc.InvalidRequest(err.Error())
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			e = e.WithStatus(http.StatusRequestEntityTooLarge)
		}
		writeResult(w, errorResult(e))
		return
	}

	ctx := r.Context()
	if h.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.RequestTimeout)
		defer cancel()
	}
	writeResult(w, runBatch(ctx, h.app, body, middleware.GetReqID(r.Context())))
}

func (h *httpHandler) handleSchema(w http.ResponseWriter, r *http.Request) {
	data, err := h.app.SchemaJSON()
	if err != nil {
		slog.Error(fmt.Sprintf("%s - schema generation failed: %v", httpLogPrefix, err))
		writeResult(w, errorResult(err))
		return
	}

	etag := `"` + events.Etag(data) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeResult(w, batchResult{status: http.StatusOK, body: data})
}

func (h *httpHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.HealthCheckTimeout)
	defer cancel()

	info := h.app.Info()
	out := HealthOutput{
		Status:     "healthy",
		App:        info.Name,
		Version:    info.Version,
		Procedures: h.app.Registry().Len(),
		Checks:     make(map[string]bool, len(h.opts.Checks)),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	for name, check := range h.opts.Checks {
		err := check(ctx)
		out.Checks[name] = err == nil
		if err != nil {
			slog.Warn(fmt.Sprintf("%s - health check %s failed: %v", httpLogPrefix, name, err))
			out.Status = "unhealthy"
		}
	}

	status := http.StatusOK
	if out.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, out)
}

func (h *httpHandler) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// homePageTemplate lists the procedures of the app (white bg, black/blue text).
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Info.Name}}</title>
  <style>
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    h1, h2 { color: #0066cc; }
    table { border-collapse: collapse; width: 100%; max-width: 900px; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; }
    th { background: #f0f4f8; color: #0066cc; }
    .error { color: #cc0000; }
  </style>
</head>
<body>
  <h1>{{.Info.Name}} {{.Info.Version}}</h1>
  {{if .Info.Description}}<p>{{.Info.Description}}</p>{{end}}
  {{if .Error}}
  <p class="error">Could not build schema: {{.Error}}</p>
  {{else}}
  <h2>Procedures</h2>
  <table>
    <thead><tr><th>Id</th><th>Type</th><th>Path</th><th>Name</th></tr></thead>
    <tbody>
    {{range .Procedures}}
      <tr><td>{{.ID}}</td><td>{{.Type}}</td><td>{{.Path}}</td><td>{{.Name}}</td></tr>
    {{end}}
    </tbody>
  </table>
  <h2>Types</h2>
  <p>{{range .TypeNames}}{{.}} {{end}}</p>
  {{end}}
</body>
</html>
`

type homeData struct {
	Info       rpc.AppInfo
	Procedures []schema.Procedure
	TypeNames  []string
	Error      string
}

func (h *httpHandler) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		data := homeData{Info: h.app.Info()}

		doc, err := h.app.Schema()
		if err != nil {
			data.Error = err.Error()
		} else {
			data.Procedures = doc.Procedures
			sort.Slice(data.Procedures, func(i, j int) bool { return data.Procedures[i].ID < data.Procedures[j].ID })
			for name := range doc.Types {
				data.TypeNames = append(data.TypeNames, name)
			}
			sort.Strings(data.TypeNames)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home template execute: %v", httpLogPrefix, err))
		}
	}
}

func writeResult(w http.ResponseWriter, res batchResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.status)
	if _, err := w.Write(res.body); err != nil {
		slog.Debug(fmt.Sprintf("%s - write response: %v", httpLogPrefix, err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug(fmt.Sprintf("%s - write response: %v", httpLogPrefix, err))
	}
}
