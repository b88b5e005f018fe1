package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"finorg/internal/api"
	"finorg/internal/forms"
	"finorg/internal/log"
)

// fieldView is the render model for one form input.
type fieldView struct {
	Name        string
	Label       string
	Placeholder string
	InputType   string
	Step        string
	Required    bool
	Options     []string
	Min         string
	Max         string
	MaxLen      int
}

// formView is the render model for a resource create form.
type formView struct {
	Resource string
	Action   string
	Title    string
	Fields   []fieldView
	Draft    map[string]string
	Errors   map[string]string
	Error    string
}

// buildFormView assembles the render model for a schema with the given
// draft values. A nil draft means the initial defaults.
func buildFormView(schema forms.Schema, title string, draft map[string]string, fieldErrors map[string]string, generalError string) formView {
	if draft == nil {
		draft = schema.Defaults()
	}
	fv := formView{
		Resource: schema.Resource,
		Action:   "/" + schema.Resource,
		Title:    title,
		Draft:    draft,
		Errors:   fieldErrors,
		Error:    generalError,
	}
	for _, f := range schema.Fields {
		view := fieldView{
			Name:        f.Name,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			InputType:   f.InputType(),
			Step:        f.Step(),
			Required:    f.Required,
			Options:     f.Options,
			MaxLen:      f.MaxLen,
		}
		if f.Min != 0 || f.Max != 0 {
			view.Min = fmt.Sprintf("%g", f.Min)
			view.Max = fmt.Sprintf("%g", f.Max)
		} else if f.NonNegative {
			view.Min = "0"
		}
		fv.Fields = append(fv.Fields, view)
	}
	return fv
}

// draftFromForm captures the submitted values so a failed submission
// re-renders with the user's input preserved.
func draftFromForm(schema forms.Schema, values url.Values) map[string]string {
	draft := make(map[string]string, len(schema.Fields))
	for _, f := range schema.Fields {
		draft[f.Name] = sanitizeInput(values.Get(f.Name))
	}
	return draft
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// renderTemplate executes a template directly to the response,
// degrading to a plain error div when execution fails.
func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", log.FieldError, err, "template", name)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// renderToString executes a template into a buffer for use as an htmx
// response body.
func (s *Server) renderToString(r *http.Request, name string, data any) (string, error) {
	if s.templates == nil {
		return "", errors.New("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", log.FieldError, err, "template", name)
		return "", err
	}
	return buf.String(), nil
}

// upstreamErrorMessage maps an API client error to the inline message
// shown in the form.
func upstreamErrorMessage(err error) string {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status == http.StatusUnauthorized {
			return "Sessão expirada. Faça login novamente."
		}
		return "O servidor recusou a operação. Tente novamente."
	}
	return "Não foi possível contactar o servidor. Tente novamente."
}
