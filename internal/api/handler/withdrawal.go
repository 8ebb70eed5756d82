package handler

import (
	"encoding/json"
	"net/http"

	"github.com/banksampah/waste-ledger/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WithdrawalHandler struct {
	svc *service.WithdrawalService
}

func NewWithdrawalHandler(svc *service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{svc: svc}
}

// Record handles POST /v1/withdrawals.
func (h *WithdrawalHandler) Record(w http.ResponseWriter, r *http.Request) {
	actor, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	var req struct {
		MemberID string `json:"member_id"`
		Amount   int64  `json:"amount"`
		Note     string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-member-id", "Invalid member_id")
		return
	}

	record, err := h.svc.RecordWithdrawal(r.Context(), actor, memberID, req.Amount, req.Note)
	if err != nil {
		if status, pType, msg, ok := mapLedgerError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		if status, pType, msg, ok := mapDBError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("record withdrawal failed", zap.Error(err), zap.String("member_id", memberID.String()))
		RespondError(w, r, http.StatusInternalServerError, "ledger/withdrawal-failed", "Failed to record withdrawal")
		return
	}

	RespondJSON(w, http.StatusCreated, record)
}
