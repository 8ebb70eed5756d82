package handler

import (
	"encoding/json"
	"net/http"

	"github.com/banksampah/waste-ledger/internal/domain"
	"github.com/banksampah/waste-ledger/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DepositHandler struct {
	svc *service.DepositService
}

func NewDepositHandler(svc *service.DepositService) *DepositHandler {
	return &DepositHandler{svc: svc}
}

type depositItemRequest struct {
	CatalogItemID string `json:"catalog_item_id"`
	Weight        string `json:"weight"`
	PricingMode   string `json:"pricing_mode"`
	ManualPrice   *int64 `json:"manual_price,omitempty"`
	WasteSource   string `json:"waste_source"`
}

type depositBatchRequest struct {
	MemberID    string               `json:"member_id"`
	Items       []depositItemRequest `json:"items"`
	PaymentMode string               `json:"payment_mode"`
	Note        string               `json:"note"`
}

// RecordBatch handles POST /v1/deposits.
func (h *DepositHandler) RecordBatch(w http.ResponseWriter, r *http.Request) {
	actor, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	var req depositBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-member-id", "Invalid member_id")
		return
	}
	paymentMode := domain.PaymentMode(req.PaymentMode)
	if !paymentMode.Valid() {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-payment-mode", "payment_mode must be CREDIT_TO_BALANCE or CASH_PAYOUT")
		return
	}

	items := make([]service.DepositItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		itemID, err := uuid.Parse(item.CatalogItemID)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-item-id", "Invalid catalog_item_id")
			return
		}
		weight, err := domain.ParseWeight(item.Weight)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-weight", "weight must be a decimal number of kilograms")
			return
		}
		pricingMode := domain.PricingMode(item.PricingMode)
		if !pricingMode.Valid() {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-pricing-mode", "pricing_mode must be SYSTEM, LOCAL or CUSTOM")
			return
		}
		wasteSource := domain.WasteSource(item.WasteSource)
		if !wasteSource.Valid() {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-waste-source", "waste_source must be COMMUNITY or OCEAN_DEBRIS")
			return
		}
		items = append(items, service.DepositItemInput{
			CatalogItemID: itemID,
			Weight:        weight,
			PricingMode:   pricingMode,
			ManualPrice:   item.ManualPrice,
			WasteSource:   wasteSource,
		})
	}

	batch, err := h.svc.RecordDepositBatch(r.Context(), actor, service.DepositBatchRequest{
		MemberID:    memberID,
		Items:       items,
		PaymentMode: paymentMode,
		Note:        req.Note,
	})
	if err != nil {
		if status, pType, msg, ok := mapLedgerError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		if status, pType, msg, ok := mapDBError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("record deposit batch failed", zap.Error(err), zap.String("member_id", memberID.String()))
		RespondError(w, r, http.StatusInternalServerError, "ledger/deposit-failed", "Failed to record deposit batch")
		return
	}

	RespondJSON(w, http.StatusCreated, batch)
}
