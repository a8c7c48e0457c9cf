package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "splitledger-backend/errors"
	"splitledger-backend/middleware"
	"splitledger-backend/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type Handlers struct {
	dashboardService   services.DashboardService
	balanceService     services.BalanceService
	expenseService     services.ExpenseService
	settlementService  services.SettlementService
	groupService       services.GroupService
	explanationService services.ExplanationService
}

func NewHandlers(
	dashboardService services.DashboardService,
	balanceService services.BalanceService,
	expenseService services.ExpenseService,
	settlementService services.SettlementService,
	groupService services.GroupService,
	explanationService services.ExplanationService,
) *Handlers {
	return &Handlers{
		dashboardService:   dashboardService,
		balanceService:     balanceService,
		expenseService:     expenseService,
		settlementService:  settlementService,
		groupService:       groupService,
		explanationService: explanationService,
	}
}

// RegisterRoutes mounts every authenticated route except the explanation
// endpoint, which the caller places behind the tighter AI rate limit.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/contacts", h.GetContacts)
	r.Get("/spending", h.GetSpending)
	r.Get("/balances/{userID}", h.GetPairwiseBalance)
	r.Post("/groups", h.CreateGroup)
	r.Get("/groups/{groupID}/balances", h.GetGroupBalances)

	r.Route("/expenses", func(r chi.Router) {
		r.Post("/", h.CreateExpense)
		r.Delete("/{expenseID}", h.DeleteExpense)
	})

	r.Post("/settlements", h.RecordSettlement)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("Failed to encode JSON response", zap.Error(err))
	}
}

func handleError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	if appErr, ok := apperrors.AsAppError(err); ok {
		status := apperrors.GetHTTPStatus(appErr.Type)

		if status >= 500 {
			zap.L().Error("App Error (Internal)",
				zap.String("code", string(appErr.Code)),
				zap.String("details", appErr.Details),
				zap.Error(appErr.Err))
		} else {
			zap.L().Debug("App Error (Client)",
				zap.String("code", string(appErr.Code)),
				zap.String("message", appErr.Message))
		}

		respondJSON(w, status, ErrorResponse{
			Error:   appErr.Message,
			Code:    string(appErr.Code),
			Details: appErr.Details,
		})
		return
	}

	zap.L().Error("Non-AppError returned (bug)",
		zap.Error(err),
		zap.String("error_type", fmt.Sprintf("%T", err)))

	internal := apperrors.InternalError(err)
	respondJSON(w, apperrors.GetHTTPStatus(internal.Type), ErrorResponse{
		Error: internal.Message,
		Code:  string(internal.Code),
	})
}

func getUserID(r *http.Request) (string, error) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return "", apperrors.Unauthorized("User ID not found in authentication context")
	}
	return userID, nil
}

// uuidParam reads a path parameter that must hold a UUID.
func uuidParam(r *http.Request, key, fieldName string) (string, error) {
	value := chi.URLParam(r, key)
	if value == "" {
		return "", apperrors.MissingRequiredField(fieldName)
	}
	if _, err := uuid.Parse(value); err != nil {
		return "", apperrors.InvalidUUID(fieldName)
	}
	return value, nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.InvalidRequest(fmt.Sprintf("Request body exceeds %d bytes.", maxErr.Limit))
		}
		return apperrors.InvalidRequest("Invalid request body. Please provide valid JSON.")
	}
	return nil
}
