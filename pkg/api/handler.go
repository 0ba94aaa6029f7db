package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hazyhaar/namestat/pkg/kit"
)

// Options tune the HTTP surface.
type Options struct {
	Logger *slog.Logger
}

// NewRouter returns an http.Handler with all namestat API routes.
func NewRouter(d Deps, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(), kit.Logging(logger, name))(ep)
	}

	mux := http.NewServeMux()
	h := &handler{
		names:    wrap("names", namesEndpoint(d)),
		trending: wrap("trending", trendingEndpoint(d)),
		imp:      wrap("import", importEndpoint(d)),
		health:   healthEndpoint(d),
	}

	mux.HandleFunc("GET /v1/import", methodNotAllowed)
	mux.HandleFunc("POST /v1/import", h.handleImport)
	mux.HandleFunc("GET /v1/names", h.handleNames)
	mux.HandleFunc("GET /v1/trending", h.handleTrending)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(requestID(mux))
}

type handler struct {
	names    kit.Endpoint
	trending kit.Endpoint
	imp      kit.Endpoint
	health   kit.Endpoint
}

// --- names ---

func (h *handler) handleNames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.names(r.Context(), &namesReq{
		Gender: q.Get("gender"),
		Years:  splitList(q.Get("years")),
	})
	respond(w, resp, err)
}

// --- trending ---

func (h *handler) handleTrending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &trendingReq{
		Gender: q.Get("gender"),
		Years:  splitList(q.Get("years")),
	}
	if v := q.Get("top"); v != "" {
		top, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "top must be an integer")
			return
		}
		req.Top = top
	}
	resp, err := h.trending(r.Context(), req)
	respond(w, resp, err)
}

// --- import ---

func (h *handler) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024) // 64 KiB max
	var req importReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	resp, err := h.imp(r.Context(), &req)
	respond(w, resp, err)
}

// --- health ---

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp, err := h.health(r.Context(), nil)
	respond(w, resp, err)
}

// --- helpers ---

// respond maps endpoint errors to status codes.
func respond(w http.ResponseWriter, resp any, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case isRequestError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// requestID carries an inbound X-Request-ID into the endpoint context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Request-ID"); id != "" {
			r = r.WithContext(kit.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
