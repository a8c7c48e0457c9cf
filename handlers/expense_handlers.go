package handlers

import (
	"net/http"

	apperrors "splitledger-backend/errors"
	"splitledger-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req models.CreateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	if err := validateExpenseIDs(&req); err != nil {
		handleError(w, err)
		return
	}

	expense, err := h.expenseService.Create(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	zap.L().Debug("Expense created via API", zap.String("expense_id", expense.ID), zap.String("user_id", userID))
	respondJSON(w, http.StatusCreated, expense)
}

func validateExpenseIDs(req *models.CreateExpenseRequest) error {
	if req.GroupID != nil {
		if _, err := uuid.Parse(*req.GroupID); err != nil {
			return apperrors.InvalidUUID("Group ID")
		}
	}
	if req.PaidByUserID != "" {
		if _, err := uuid.Parse(req.PaidByUserID); err != nil {
			return apperrors.InvalidUUID("Paid by user ID")
		}
	}
	for _, s := range req.Splits {
		if s.UserID == "" {
			continue
		}
		if _, err := uuid.Parse(s.UserID); err != nil {
			return apperrors.InvalidUUID("Split user ID")
		}
	}
	return nil
}

func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}
	expenseID, err := uuidParam(r, "expenseID", "Expense ID")
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.expenseService.Delete(r.Context(), expenseID, userID); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
