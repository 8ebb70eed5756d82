package handler

import (
	"net/http"
	"strconv"

	"github.com/banksampah/waste-ledger/internal/models"
	"github.com/banksampah/waste-ledger/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MemberHandler struct {
	svc *service.MemberService
}

func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{svc: svc}
}

// memberForActor loads the member and applies the same unit scoping the
// ledger enforces on writes: cashiers only see members of their own unit.
func (h *MemberHandler) memberForActor(w http.ResponseWriter, r *http.Request) (*models.Member, bool) {
	actor, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return nil, false
	}

	memberID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-member-id", "Invalid member ID")
		return nil, false
	}

	member, err := h.svc.GetMember(r.Context(), memberID)
	if err != nil {
		if status, pType, msg, ok := mapLedgerError(err); ok {
			RespondError(w, r, status, pType, msg)
			return nil, false
		}
		zap.L().Error("member lookup failed", zap.Error(err), zap.String("member_id", memberID.String()))
		RespondError(w, r, http.StatusInternalServerError, "member/read-failed", "Failed to read member")
		return nil, false
	}
	if !actor.IsAdmin() && actor.UnitID != member.UnitID {
		RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
		return nil, false
	}
	return member, true
}

// GetBalance handles GET /v1/members/{id}/balance.
func (h *MemberHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	member, ok := h.memberForActor(w, r)
	if !ok {
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{
		"member_id": member.ID,
		"balance":   member.Balance,
	})
}

// GetStatement handles GET /v1/members/{id}/statement.
func (h *MemberHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	member, ok := h.memberForActor(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	entries, err := h.svc.GetStatement(r.Context(), member.ID, page, pageSize)
	if err != nil {
		zap.L().Error("get statement failed", zap.Error(err), zap.String("member_id", member.ID.String()))
		RespondError(w, r, http.StatusInternalServerError, "member/statement-read-failed", "Failed to get statement")
		return
	}

	RespondJSON(w, http.StatusOK, entries)
}
