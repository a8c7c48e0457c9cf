package handlers

import (
	"net/http"

	apperrors "splitledger-backend/errors"
	"splitledger-backend/models"

	"github.com/google/uuid"
)

func (h *Handlers) RecordSettlement(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req models.CreateSettlementRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	for _, f := range []struct{ name, id string }{{"Payer ID", req.PayerID}, {"Receiver ID", req.ReceiverID}} {
		if f.id == "" {
			continue
		}
		if _, err := uuid.Parse(f.id); err != nil {
			handleError(w, apperrors.InvalidUUID(f.name))
			return
		}
	}
	if req.GroupID != nil {
		if _, err := uuid.Parse(*req.GroupID); err != nil {
			handleError(w, apperrors.InvalidUUID("Group ID"))
			return
		}
	}

	settlement, err := h.settlementService.Record(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, settlement)
}
