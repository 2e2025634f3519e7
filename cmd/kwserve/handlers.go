package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/cors"

	"github.com/cognicore/keyphrase/pkg/keyphrase"
	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
	"github.com/cognicore/keyphrase/pkg/keyphrase/tagset"
)

// maxBody bounds request bodies.
const maxBody = 8 << 20

// ---- JSON response types ------------------------------------------------

type wordJSON struct {
	Kind     string           `json:"kind"`
	Text     string           `json:"text"`
	Analysis *tagset.Analysis `json:"analysis,omitempty"`
}

type disambiguateResponse struct {
	Words       []wordJSON `json:"words"`
	Tags        []string   `json:"tags,omitempty"`
	Probability float64    `json:"probability"`
	Fallback    bool       `json:"fallback"`
}

type transitionResponse struct {
	Tag         string  `json:"tag"`
	Context     string  `json:"context"`
	Found       bool    `json:"found"`
	Probability float64 `json:"probability,omitempty"`
	Message     string  `json:"message,omitempty"`
}

type grammarResponse struct {
	Prefix        string   `json:"prefix"`
	Keys          []string `json:"keys"`
	Continuations []string `json:"continuations,omitempty"`
	Terminal      bool     `json:"terminal"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---- helpers ------------------------------------------------------------

func toWordsJSON(words []tagset.Word) []wordJSON {
	out := make([]wordJSON, len(words))
	for i, w := range words {
		out[i] = wordJSON{Kind: w.Kind.String(), Text: w.Text}
		if !w.IsLiteral() {
			a := w.Analysis
			out[i].Analysis = &a
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps pipeline errors to HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, internalerr.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, internalerr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, internalerr.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func intParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// ---- handlers -----------------------------------------------------------

func handleDisambiguate(e *keyphrase.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Sentence tagset.Sentence `json:"sentence"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if err := body.Sentence.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		res := e.Disambiguate(body.Sentence)
		writeJSON(w, http.StatusOK, disambiguateResponse{
			Words:       toWordsJSON(res.Words),
			Tags:        res.Tags,
			Probability: res.Probability,
			Fallback:    res.Fallback,
		})
	}
}

func handleExtract(e *keyphrase.Engine, l *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc keyphrase.Document
		if !decodeBody(w, r, &doc) {
			return
		}

		rep, err := e.Process(r.Context(), doc)
		if err != nil {
			l.Warn("extract failed", "source", doc.Source, "err", err)
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func handleListReports(e *keyphrase.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := e.Store().ListReports(r.Context(), r.URL.Query().Get("source"), intParam(r, "limit", 0))
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, reports)
	}
}

func handleGetReport(e *keyphrase.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := e.Store().GetReport(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func handleTopPhrases(e *keyphrase.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phrases, err := e.Store().TopPhrases(r.Context(), intParam(r, "k", 0))
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, phrases)
	}
}

func handleTransition(e *keyphrase.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag := r.URL.Query().Get("tag")
		ctxKey := r.URL.Query().Get("context")
		if tag == "" || ctxKey == "" {
			writeError(w, http.StatusBadRequest, "missing 'tag' or 'context' query parameter")
			return
		}
		d, ok := e.Diagnose(tag, ctxKey)
		if !ok {
			writeError(w, http.StatusNotImplemented, "transition table offers no diagnostics")
			return
		}
		writeJSON(w, http.StatusOK, transitionResponse{
			Tag:         tag,
			Context:     ctxKey,
			Found:       d.Found,
			Probability: d.Probability,
			Message:     d.Message,
		})
	}
}

func handleGrammar(e *keyphrase.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		keys := e.Grammar().Prefixes(prefix)
		if keys == nil {
			keys = []string{}
		}
		resp := grammarResponse{Prefix: prefix, Keys: keys}
		if set, ok := e.Grammar().Continuations(prefix); ok {
			resp.Continuations = set.Items()
			resp.Terminal = set.Terminal()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---- routing ------------------------------------------------------------

func newHandler(e *keyphrase.Engine, l *log.Logger, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/disambiguate", handleDisambiguate(e))
	mux.HandleFunc("POST /api/extract", handleExtract(e, l))
	mux.HandleFunc("GET /api/reports", handleListReports(e))
	mux.HandleFunc("GET /api/reports/{id}", handleGetReport(e))
	mux.HandleFunc("GET /api/phrases", handleTopPhrases(e))
	mux.HandleFunc("GET /api/transition", handleTransition(e))
	mux.HandleFunc("GET /api/grammar", handleGrammar(e))
	mux.HandleFunc("GET /healthz", handleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(logRequests(mux, l))
}

func logRequests(next http.Handler, l *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		l.Debug("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}
