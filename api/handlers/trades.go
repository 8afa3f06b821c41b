package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openalpha/fundchain/api/types"
)

// TradeHandler handles purchase, redemption and claim requests
type TradeHandler struct {
	service types.TradeService
}

// NewTradeHandler creates a new trade handler
func NewTradeHandler(service types.TradeService) *TradeHandler {
	return &TradeHandler{service: service}
}

// HandlePurchase handles POST /v1/purchase
func (h *TradeHandler) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req types.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}
	if req.FundID == "" {
		writeError(w, http.StatusBadRequest, "missing_fund_id", "fund_id is required")
		return
	}
	if req.Amount == "" {
		writeError(w, http.StatusBadRequest, "missing_amount", "amount is required")
		return
	}
	if req.Investor == "" {
		req.Investor = r.Header.Get("X-Investor-Address")
	}
	if req.Investor == "" {
		writeError(w, http.StatusBadRequest, "missing_investor", "investor address is required")
		return
	}

	resp, err := h.service.Purchase(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "purchase_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleRedeem handles POST /v1/redeem
func (h *TradeHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req types.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}
	if req.FundID == "" {
		writeError(w, http.StatusBadRequest, "missing_fund_id", "fund_id is required")
		return
	}
	if req.Share == "" {
		writeError(w, http.StatusBadRequest, "missing_share", "share is required")
		return
	}
	if req.Investor == "" {
		req.Investor = r.Header.Get("X-Investor-Address")
	}
	if req.Investor == "" {
		writeError(w, http.StatusBadRequest, "missing_investor", "investor address is required")
		return
	}

	resp, err := h.service.Redeem(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "redeem_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleClaim handles POST /v1/claim
func (h *TradeHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req types.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}
	if req.FundID == "" {
		writeError(w, http.StatusBadRequest, "missing_fund_id", "fund_id is required")
		return
	}
	if req.Investor == "" {
		req.Investor = r.Header.Get("X-Investor-Address")
	}
	if req.Investor == "" {
		writeError(w, http.StatusBadRequest, "missing_investor", "investor address is required")
		return
	}

	resp, err := h.service.ClaimPending(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "claim_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
