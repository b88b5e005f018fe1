package http

import (
	"errors"
	"log/slog"
	"net/http"

	"finorg/internal/forms"
	"finorg/internal/log"
)

// handleCreate runs the shared submission lifecycle for one resource:
// parse and validate the draft, run the create mutation, and answer
// with a re-rendered form. Validation failures never reach the backend;
// upstream failures keep the draft so the user can resubmit.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, schema forms.Schema, title, successMsg string) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Form parse failed", log.FieldError, err, log.FieldResource, schema.Resource)
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}

	payload, err := schema.Parse(r.Form)
	if err != nil {
		var verr *forms.ValidationError
		if !errors.As(err, &verr) {
			BadRequestError("Dados inválidos").Write(w)
			return
		}
		slog.WarnContext(r.Context(), "Validation failed", log.FieldResource, schema.Resource, log.FieldOperation, log.OpValidate, "fields", len(verr.Fields))
		fv := buildFormView(schema, title, draftFromForm(schema, r.Form), verr.Fields, "")
		body, rerr := s.renderToString(r, "resource_form.html", fv)
		if rerr != nil {
			InternalServerError("Erro de renderização").Write(w)
			return
		}
		NewHTMXResponse().Status(http.StatusUnprocessableEntity).BodyHTML(body).Write(w)
		return
	}

	if err := s.creates[schema.Resource].Run(r.Context(), payload); err != nil {
		msg := upstreamErrorMessage(err)
		fv := buildFormView(schema, title, draftFromForm(schema, r.Form), nil, msg)
		body, rerr := s.renderToString(r, "resource_form.html", fv)
		if rerr != nil {
			InternalServerError("Erro de renderização").Write(w)
			return
		}
		NewHTMXResponse().
			Status(http.StatusBadGateway).
			TriggerErrorNotification(msg).
			BodyHTML(body).
			Write(w)
		return
	}

	// Fresh form with defaults: the draft resets after a successful create.
	fv := buildFormView(schema, title, nil, nil, "")
	body, rerr := s.renderToString(r, "resource_form.html", fv)
	if rerr != nil {
		InternalServerError("Erro de renderização").Write(w)
		return
	}
	NewHTMXResponse().
		TriggerResourceCreated(schema.Resource).
		TriggerFormReset().
		TriggerSuccessNotification(successMsg).
		BodyHTML(body).
		Write(w)
}
