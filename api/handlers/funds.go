package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/openalpha/fundchain/api/types"
)

// FundHandler handles fund-related HTTP requests
type FundHandler struct {
	service types.FundService
}

// NewFundHandler creates a new fund handler
func NewFundHandler(service types.FundService) *FundHandler {
	return &FundHandler{service: service}
}

// HandleFunds handles /v1/funds endpoint (GET for listing)
func (h *FundHandler) HandleFunds(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listFunds(w, r)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	}
}

// HandleFund handles /v1/funds/{id} and /v1/funds/{id}/{endpoint}
func (h *FundHandler) HandleFund(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	fundID, endpoint := splitPath(r.URL.Path, "/v1/funds/")
	if fundID == "" {
		writeError(w, http.StatusBadRequest, "missing_fund_id", "fund id is required")
		return
	}

	switch endpoint {
	case "":
		fund, err := h.service.GetFund(r.Context(), fundID)
		if err != nil {
			writeError(w, http.StatusNotFound, "fund_not_found", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, fund)

	case "assets":
		assets, err := h.service.GetAssets(r.Context(), fundID)
		if err != nil {
			writeError(w, http.StatusNotFound, "fund_not_found", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"fund_id": fundID,
			"assets":  assets,
		})

	case "history":
		req := &types.PriceHistoryRequest{FundID: fundID}
		if v := r.URL.Query().Get("from"); v != "" {
			req.From, _ = strconv.ParseInt(v, 10, 64)
		}
		if v := r.URL.Query().Get("to"); v != "" {
			req.To, _ = strconv.ParseInt(v, 10, 64)
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			req.Limit, _ = strconv.Atoi(v)
		}
		points, err := h.service.GetPriceHistory(r.Context(), req)
		if err != nil {
			writeError(w, http.StatusNotFound, "fund_not_found", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"fund_id": fundID,
			"points":  points,
		})

	default:
		writeError(w, http.StatusNotFound, "not_found", "Endpoint not found")
	}
}

func (h *FundHandler) listFunds(w http.ResponseWriter, r *http.Request) {
	req := &types.ListFundsRequest{
		State:  r.URL.Query().Get("state"),
		Cursor: r.URL.Query().Get("cursor"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}

	resp, err := h.service.ListFunds(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// splitPath splits "/prefix/{id}/{rest}" into id and rest
func splitPath(path, prefix string) (string, string) {
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i], rest[i+1:]
	}
	return rest, ""
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}
