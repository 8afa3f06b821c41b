package handlers

import (
	"net/http"

	"github.com/openalpha/fundchain/api/types"
)

// InvestorHandler handles investor-related HTTP requests
type InvestorHandler struct {
	service types.InvestorService
}

// NewInvestorHandler creates a new investor handler
func NewInvestorHandler(service types.InvestorService) *InvestorHandler {
	return &InvestorHandler{service: service}
}

// HandleInvestor handles /v1/investors/{address} and /v1/investors/{address}/{endpoint}
func (h *InvestorHandler) HandleInvestor(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	address, endpoint := splitPath(r.URL.Path, "/v1/investors/")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing_address", "investor address is required")
		return
	}

	switch endpoint {
	case "", "positions":
		positions, err := h.service.ListPositions(r.Context(), address)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"investor":  address,
			"positions": positions,
		})

	default:
		// /v1/investors/{address}/{fundID}/position or .../claims
		fundID, action := splitPathSegment(endpoint)
		switch action {
		case "position":
			position, err := h.service.GetPosition(r.Context(), fundID, address)
			if err != nil {
				writeError(w, http.StatusNotFound, "position_not_found", err.Error())
				return
			}
			writeJSON(w, http.StatusOK, position)

		case "claims":
			claims, err := h.service.GetClaims(r.Context(), fundID, address)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"fund_id":  fundID,
				"investor": address,
				"claims":   claims,
			})

		default:
			writeError(w, http.StatusNotFound, "not_found", "Endpoint not found")
		}
	}
}

func splitPathSegment(path string) (string, string) {
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			return path[:i], path[i+1:]
		}
	}
	return path, ""
}
