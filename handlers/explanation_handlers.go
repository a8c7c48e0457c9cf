package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

func (h *Handlers) ExplainBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}
	counterpartID, err := uuidParam(r, "userID", "User ID")
	if err != nil {
		handleError(w, err)
		return
	}

	zap.L().Info("Balance explanation requested", zap.String("user_id", userID), zap.String("counterpart_id", counterpartID))
	explanation, err := h.explanationService.ExplainPairwise(r.Context(), userID, counterpartID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, explanation)
}
