package web

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"schemalens/internal/app"
	"schemalens/internal/types"
)

const tsvContentType = "text/tab-separated-values; charset=utf-8"

type handler struct {
	service app.Service
}

// NewRouter wires every route onto a chi router.  A positive
// requestTimeout bounds each request's context.
func NewRouter(service app.Service, requestTimeout time.Duration) http.Handler {
	h := handler{service: service}

	r := chi.NewRouter()
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.RequestIDHandler("request_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.Get("/", h.index)
	r.Get("/healthz", h.health)
	r.Get("/schemas", h.cachedSchemas)

	r.Route("/typecodes", func(r chi.Router) {
		r.Get("/", h.typecodeTable)
		r.Get("/{class}", h.typecode)
	})
	r.Route("/slots/{slot}", func(r chi.Router) {
		r.Get("/", h.globalSlot)
		r.Get("/usage/{class}", h.slotUsage)
		r.Get("/drift/{class}", h.slotDrift)
	})
	r.Post("/classes/compare", h.compareClasses)
	r.Post("/terms/{direction}", h.termDiff)
	r.Post("/terms/{preset}/{direction}", h.termDiff)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no route for "+r.Method+" "+r.URL.Path))
	})
	return r
}

func (h handler) index(w http.ResponseWriter, _ *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"service":        "schemalens",
		"default_schema": h.service.Defaults.SchemaURL,
		"routes": []string{
			"GET /typecodes/{class}?schema=&slot=",
			"GET /typecodes?schema=&slot=&format=json|tsv",
			"GET /slots/{slot}?schema=",
			"GET /slots/{slot}/usage/{class}?schema=",
			"GET /slots/{slot}/drift/{class}?schema=",
			"POST /classes/compare",
			"POST /terms/{direction}",
			"POST /terms/{preset}/{direction}",
			"GET /schemas",
			"GET /healthz",
		},
	})
}

func (h handler) health(w http.ResponseWriter, _ *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h handler) cachedSchemas(w http.ResponseWriter, _ *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"schemas": h.service.CachedSchemas()})
}

func (h handler) typecode(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.service.ResolveTypecode(r.Context(), app.TypecodeRequest{
		SchemaURL: r.URL.Query().Get("schema"),
		ClassName: chi.URLParam(r, "class"),
		SlotName:  r.URL.Query().Get("slot"),
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, resolved)
}

func (h handler) typecodeTable(w http.ResponseWriter, r *http.Request) {
	req := app.TypecodeTableRequest{
		SchemaURL: r.URL.Query().Get("schema"),
		SlotName:  r.URL.Query().Get("slot"),
	}
	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "", "json":
		table, err := h.service.TypecodeTable(r.Context(), req)
		if err != nil {
			renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, table)
	case "tsv":
		// Buffer so a failed write can still produce an error status.
		var buf bytes.Buffer
		if _, err := h.service.ExportTypecodeTable(r.Context(), req, &buf); err != nil {
			renderError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", tsvContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="typecodes.tsv"`)
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	default:
		renderError(w, r, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"unsupported format: "+format, nil))
	}
}

func (h handler) globalSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := h.service.GlobalSlot(r.Context(), app.SlotRequest{
		SchemaURL: r.URL.Query().Get("schema"),
		SlotName:  chi.URLParam(r, "slot"),
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, slot)
}

func (h handler) slotUsage(w http.ResponseWriter, r *http.Request) {
	slot, err := h.service.SlotUsage(r.Context(), slotUsageRequest(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, slot)
}

func (h handler) slotDrift(w http.ResponseWriter, r *http.Request) {
	drift, err := h.service.SlotDrift(r.Context(), slotUsageRequest(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, drift)
}

func slotUsageRequest(r *http.Request) app.SlotUsageRequest {
	return app.SlotUsageRequest{
		SchemaURL: r.URL.Query().Get("schema"),
		SlotName:  chi.URLParam(r, "slot"),
		ClassName: chi.URLParam(r, "class"),
	}
}

func (h handler) compareClasses(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		renderError(w, r, err)
		return
	}
	comparison, err := h.service.CompareClassSlots(r.Context(), app.CompareClassesRequest{
		LeftSchemaURL:  r.FormValue("schema_1_url"),
		LeftClass:      r.FormValue("class_1_name"),
		RightSchemaURL: r.FormValue("schema_2_url"),
		RightClass:     r.FormValue("class_2_name"),
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, comparison)
}

func (h handler) termDiff(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		renderError(w, r, err)
		return
	}
	req := app.TermDiffRequest{
		Preset:           chi.URLParam(r, "preset"),
		Direction:        types.TermDirection(chi.URLParam(r, "direction")),
		DefinitionURL:    r.FormValue("def_file_url"),
		DefinitionColumn: r.FormValue("def_file_term_col"),
		AssignmentURL:    r.FormValue("assignment_file_url"),
		AssignmentColumn: r.FormValue("assignment_file_term_col"),
	}
	if raw := strings.TrimSpace(r.FormValue("skip")); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			renderError(w, r, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
				"skip must be a non-negative integer: "+raw, err))
			return
		}
		req.SkipRows = &skip
	}
	result, err := h.service.TermDiff(r.Context(), req)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

const maxFormMemory = 1 << 20

func parseForm(r *http.Request) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"malformed form body", err)
	}
	return nil
}
