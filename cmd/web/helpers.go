package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Roderick111/auror/internal/engine"
	"github.com/Roderick111/auror/internal/errors"
	"github.com/Roderick111/auror/internal/models"
	"github.com/Roderick111/auror/internal/repositories"
)

// maxRequestBody caps API request bodies. The largest legitimate payload is a
// question to a witness, which fits a few kilobytes with room to spare.
const maxRequestBody = 16 * 1024

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type errorResponse struct {
	Error string `json:"error"`
}

// errorJSON reports a request-level failure with a JSON body so API clients
// can read the reason without scraping status text.
func (app *application) errorJSON(w http.ResponseWriter, r *http.Request, status int, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Debug(http.StatusText(status), "method", method, "uri", uri, errors.SlogError(err))
	app.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

// engineError translates the engine's sentinel errors into API statuses:
// unknown ids are 404s, rule violations are 409s, anything else is a 500.
func (app *application) engineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrEvidenceNotFound),
		errors.Is(err, engine.ErrWitnessNotFound),
		errors.Is(err, engine.ErrContradictionNotFound),
		errors.Is(err, engine.ErrHypothesisNotFound):
		app.errorJSON(w, r, http.StatusNotFound, err)
	case errors.Is(err, engine.ErrInsufficientPoints),
		errors.Is(err, engine.ErrContradictionNotDiscovered),
		errors.Is(err, engine.ErrHypothesisLocked),
		errors.Is(err, engine.ErrCaseClosed):
		app.errorJSON(w, r, http.StatusConflict, err)
	default:
		app.serverError(w, r, err)
	}
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

// readJSON decodes a request body into dst. On a malformed body it writes the
// 400 response itself and returns false.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, errors.Wrap(err, "malformed request body"))
		return false
	}
	return true
}

func (app *application) playerID(r *http.Request) string {
	return app.sessionManager.GetString(r.Context(), string(playerIDSessionKey))
}

// investigation loads the player's saved state for a case, or hands out a
// fresh unsaved one when the player has not started it. The second return
// says which it was; browsing a case does not start it.
func (app *application) investigation(
	ctx context.Context,
	eng *engine.Engine,
	playerID, caseID string,
) (*models.InvestigationState, bool, error) {
	state, err := app.investigations.Get(ctx, playerID, caseID)
	switch {
	case err == nil:
		return state, true, nil
	case errors.Is(err, repositories.ErrNotFound):
		return eng.NewState(), false, nil
	default:
		return nil, false, err
	}
}
