package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(r.Context(), userID)
	if err != nil {
		zap.L().Debug("Dashboard request failed", zap.String("user_id", userID), zap.Error(err))
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toDashboardResponse(dashboard))
}
