package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// requirePrincipal returns the authenticated caller. It writes a 401 and
// returns false when the auth middleware did not run.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (service.Principal, bool) {
	p, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Warn("principal not found in request context")
		HandleAPIError(w, r, service.ErrUnauthorized, "")
		return service.Principal{}, false
	}
	return p, true
}

// handlePrincipalAndPathUUID combines requirePrincipal and getPathUUID,
// writing the error response when either fails.
func handlePrincipalAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
) (service.Principal, uuid.UUID, bool) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return service.Principal{}, uuid.Nil, false
	}

	id, err := getPathUUID(r, paramName)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return service.Principal{}, uuid.Nil, false
	}
	return p, id, true
}

// decodeAndValidate reads a JSON body into req and runs its struct tags,
// writing a 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			HandleAPIError(w, r, err, "")
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgInvalidRequest, err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgValidation, err,
			shared.WithDetail(shared.SanitizeValidationError(err)))
		return false
	}
	return true
}

// queryPositiveInt reads an optional positive integer query parameter.
// A missing parameter yields def.
func queryPositiveInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.NewValidationError(name, "must be a positive integer", domain.ErrValidation)
	}
	return n, nil
}

// parseListTasksQuery reads the page, limit and filter parameters of
// GET /api/tasks. Callers who can only see their own tasks are scoped to
// themselves, so their assignedTo parameter is not read at all.
func parseListTasksQuery(r *http.Request, p service.Principal) (service.ListTasksQuery, error) {
	var q service.ListTasksQuery
	var err error

	if q.Page, err = queryPositiveInt(r, "page", 1); err != nil {
		return q, err
	}
	if q.Limit, err = queryPositiveInt(r, "limit", service.DefaultPageSize); err != nil {
		return q, err
	}

	values := r.URL.Query()
	if raw := values.Get("status"); raw != "" {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			return q, err
		}
		q.Status = &status
	}
	if raw := values.Get("priority"); raw != "" {
		priority, err := domain.ParseTaskPriority(raw)
		if err != nil {
			return q, err
		}
		q.Priority = &priority
	}
	if raw := values.Get("assignedTo"); raw != "" && p.Can(service.CapViewAllTasks) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return q, domain.NewValidationError("assignedTo", "has invalid format", domain.ErrInvalidID)
		}
		q.AssignedTo = &id
	}
	return q, nil
}
