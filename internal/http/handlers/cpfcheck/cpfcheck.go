// Package cpfcheck serves the stateless CPF check used by registration
// forms before they submit.
package cpfcheck

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/compuse/compuse-api/internal/cpf"
	"github.com/compuse/compuse-api/internal/metrics"
	"github.com/compuse/compuse-api/internal/types"
	"github.com/compuse/compuse-api/internal/utils/response"
)

// ─────────────────────────────────────────────────────────────────────────────
// Validate handles POST /api/cpf/validate
//
// Request body (JSON):
//
//	{ "cpf": "529.982.247-25" }
//
// Success response (200 OK), for valid and invalid CPFs alike:
//
//	{ "valid": true, "digits": "52998224725", "formatted": "529.982.247-25" }
//
// Error responses:
//
//	400 Bad Request  — empty body or malformed JSON
//
// ─────────────────────────────────────────────────────────────────────────────
func Validate(m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := slog.With(slog.String("request_id", middleware.GetReqID(r.Context())))

		var req types.CPFCheckRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		valid := cpf.IsValid(req.CPF)
		m.ObserveCPF(valid)

		// The CPF itself is personal data; log only the outcome.
		log.Debug("cpf checked", slog.Bool("valid", valid))

		response.WriteJSON(w, http.StatusOK, types.CPFCheckResponse{
			Valid:     valid,
			Digits:    cpf.Strip(req.CPF),
			Formatted: cpf.Format(req.CPF),
		})
	}
}
