// Package registration contains the HTTP handlers for author registrations.
//
// Handlers are built by factory functions that capture their dependencies
// in a closure and return the func(http.ResponseWriter, *http.Request) the
// router expects:
//
//	r.Post("/api/registrations", registration.Create(store, v, m))
//
// The factory runs once at startup; the returned handler runs per request.
package registration

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/compuse/compuse-api/internal/cpf"
	"github.com/compuse/compuse-api/internal/metrics"
	"github.com/compuse/compuse-api/internal/storage"
	"github.com/compuse/compuse-api/internal/types"
	"github.com/compuse/compuse-api/internal/utils/response"
	"github.com/compuse/compuse-api/internal/validation"
)

// ─────────────────────────────────────────────────────────────────────────────
// Create handles POST /api/registrations
//
// Request body (JSON):
//
//	{ "work_title": "Samba do Cais", "author_name": "Maria Souza",
//	  "email": "maria@example.com", "cpf": "529.982.247-25" }
//
// The CPF checksum runs here on the server; a client-side check is never
// trusted on its own.
//
// Success response (201 Created): the stored registration.
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Create(store storage.Storage, v *validator.Validate, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r)
		log.Info("creating an author registration")

		var reg types.AuthorRegistration
		if err := decodeBody(r, &reg); err != nil {
			m.IncrementRegistrationRejected(metrics.ReasonMalformedBody)
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := v.Struct(reg); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
				return
			}
			m.IncrementRegistrationRejected(rejectionReason(verrs))
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verrs))
			return
		}

		created, err := store.CreateRegistration(r.Context(), reg)
		if err != nil {
			log.Error("error creating registration", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		m.IncrementRegistrationCreated()
		log.Info("author registration created", slog.String("id", created.ID))

		response.WriteJSON(w, http.StatusCreated, present(created))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/registrations/{id}
//
// Error responses:
//
//	404 Not Found    — no registration with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log := requestLogger(r).With(slog.String("id", id))
		log.Info("getting an author registration")

		reg, err := store.GetRegistrationByID(r.Context(), id)
		if err != nil {
			writeStorageError(w, log, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, present(reg))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// List handles GET /api/registrations
//
// Optional query parameters:
//
//	status — pending | approved | rejected
//	cpf    — formatted or digits only
//
// Returns [] (not null) when nothing matches.
// ─────────────────────────────────────────────────────────────────────────────
func List(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r)
		log.Info("listing author registrations")

		q := r.URL.Query()
		filter := types.RegistrationFilter{
			Status: types.RegistrationStatus(q.Get("status")),
			CPF:    q.Get("cpf"),
		}

		if filter.Status != "" && !filter.Status.Valid() {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid status: must be one of pending, approved, rejected")))
			return
		}

		regs, err := store.ListRegistrations(r.Context(), filter)
		if err != nil {
			log.Error("error listing registrations", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		out := make([]types.AuthorRegistration, 0, len(regs))
		for _, reg := range regs {
			out = append(out, present(reg))
		}

		response.WriteJSON(w, http.StatusOK, out)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateStatus handles PATCH /api/registrations/{id}/status
//
// Request body (JSON):
//
//	{ "status": "approved" }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or unknown status
//	404 Not Found    — no registration with that id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func UpdateStatus(store storage.Storage, v *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log := requestLogger(r).With(slog.String("id", id))
		log.Info("updating author registration status")

		var update types.StatusUpdate
		if err := decodeBody(r, &update); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := v.Struct(update); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verrs))
			return
		}

		updated, err := store.UpdateRegistrationStatus(r.Context(), id, update.Status)
		if err != nil {
			writeStorageError(w, log, err)
			return
		}

		log.Info("author registration status updated", slog.String("status", string(updated.Status)))
		response.WriteJSON(w, http.StatusOK, present(updated))
	}
}

// Delete handles DELETE /api/registrations/{id}.
// Responds 200 { "status": "deleted" } or 404.
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log := requestLogger(r).With(slog.String("id", id))
		log.Info("deleting an author registration")

		if err := store.DeleteRegistration(r.Context(), id); err != nil {
			writeStorageError(w, log, err)
			return
		}

		log.Info("author registration deleted")
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func requestLogger(r *http.Request) *slog.Logger {
	return slog.With(slog.String("request_id", middleware.GetReqID(r.Context())))
}

// decodeBody decodes the JSON body into dst; an empty body is an error.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return errors.New("request body is empty")
	}
	return err
}

func writeStorageError(w http.ResponseWriter, log *slog.Logger, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
		return
	}
	log.Error("storage error", slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}

func rejectionReason(verrs validator.ValidationErrors) string {
	for _, e := range verrs {
		if e.Tag() == validation.TagCPF {
			return metrics.ReasonInvalidCPF
		}
	}
	return metrics.ReasonValidation
}

// present renders a stored registration for clients.
func present(reg types.AuthorRegistration) types.AuthorRegistration {
	reg.CPF = cpf.Format(reg.CPF)
	return reg
}
