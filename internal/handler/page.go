// Package handler contains HTTP request handlers for the debugger.
//
// In Go, an HTTP handler is anything that implements the http.Handler interface:
//
//	type Handler interface {
//	    ServeHTTP(ResponseWriter, *Request)
//	}
//
// Handlers parse the request, call the service layer and write the response.
// They do not contain business logic.
package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageHandler serves the single-page debugger UI.
// Templates are parsed once at startup and reused for every request.
type PageHandler struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewPageHandler parses the embedded templates.
func NewPageHandler(logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &PageHandler{
		templates: tmpl,
		logger:    logger,
	}, nil
}

// PageData is what index.html renders.
type PageData struct {
	Title       string
	AIAvailable bool
}

// HandleIndex serves the editor page.
func (h *PageHandler) HandleIndex(aiAvailable bool) http.HandlerFunc {
	data := PageData{
		Title:       "AI Python Debugger",
		AIAvailable: aiAvailable,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := h.templates.ExecuteTemplate(w, "index.html", data); err != nil {
			h.logger.Error("failed to render template", slog.String("error", err.Error()))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}
