package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/banksampah/waste-ledger/internal/api/middleware"
	"github.com/banksampah/waste-ledger/internal/api/problem"
	"github.com/banksampah/waste-ledger/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an RFC 7807 error response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	if problemType != "" && problemType != "about:blank" && !strings.HasPrefix(problemType, "http") {
		problemType = problem.Type(problemType)
	}
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

// requestActor reconstructs the ledger actor from the auth context.
func requestActor(r *http.Request) (models.Actor, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return models.Actor{}, errors.New("missing user in auth context")
	}
	actorID, err := uuid.Parse(userID)
	if err != nil {
		return models.Actor{}, errors.New("invalid user_id in auth context")
	}

	actor := models.Actor{
		ID:   actorID,
		Role: middleware.UserRoleFromContext(r.Context()),
	}
	if unit := middleware.UnitIDFromContext(r.Context()); unit != "" {
		unitID, err := uuid.Parse(unit)
		if err != nil {
			return models.Actor{}, errors.New("invalid unit_id in auth context")
		}
		actor.UnitID = unitID
	}
	return actor, nil
}

// mapLedgerError translates the ledger's typed failures to HTTP semantics.
// Anything outside the taxonomy is an unexpected persistence failure and maps
// to a 500 at the caller.
func mapLedgerError(err error) (status int, problemType, message string, ok bool) {
	var priceErr *models.PriceOutOfBoundsError
	var fundsErr *models.InsufficientFundsError
	switch {
	case errors.Is(err, models.ErrMemberNotFound):
		return http.StatusNotFound, "ledger/member-not-found", err.Error(), true
	case errors.Is(err, models.ErrItemNotFound):
		return http.StatusNotFound, "ledger/item-not-found", err.Error(), true
	case errors.Is(err, models.ErrUnitMismatch):
		return http.StatusForbidden, "ledger/unit-mismatch", err.Error(), true
	case errors.Is(err, models.ErrInvalidRole):
		return http.StatusUnprocessableEntity, "ledger/invalid-role", err.Error(), true
	case errors.Is(err, models.ErrMemberBlocked):
		return http.StatusUnprocessableEntity, "ledger/member-blocked", err.Error(), true
	case errors.Is(err, models.ErrEmptyBatch):
		return http.StatusBadRequest, "ledger/empty-batch", err.Error(), true
	case errors.Is(err, models.ErrInvalidAmount):
		return http.StatusBadRequest, "ledger/invalid-amount", err.Error(), true
	case errors.Is(err, models.ErrInvalidWeight):
		return http.StatusBadRequest, "ledger/invalid-weight", err.Error(), true
	case errors.Is(err, models.ErrInvalidPrice):
		return http.StatusBadRequest, "ledger/invalid-price", err.Error(), true
	case errors.As(err, &priceErr):
		return http.StatusUnprocessableEntity, "ledger/price-out-of-bounds", priceErr.Error(), true
	case errors.As(err, &fundsErr):
		return http.StatusUnprocessableEntity, "ledger/insufficient-funds", fundsErr.Error(), true
	}
	return 0, "", "", false
}

func mapDBError(err error) (status int, problemType, message string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return 0, "", "", false
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		return http.StatusConflict, "db/unique-violation", "resource already exists", true
	case "23503": // foreign_key_violation
		return http.StatusBadRequest, "db/foreign-key-violation", "invalid reference", true
	case "23514": // check_violation
		return http.StatusBadRequest, "db/check-violation", "request violates data constraints", true
	case "23502": // not_null_violation
		return http.StatusBadRequest, "db/not-null-violation", "missing required field", true
	default:
		return 0, "", "", false
	}
}
