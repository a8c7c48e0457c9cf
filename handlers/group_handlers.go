package handlers

import (
	"net/http"

	apperrors "splitledger-backend/errors"
	"splitledger-backend/models"

	"github.com/google/uuid"
)

func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req models.CreateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	for _, id := range req.MemberIDs {
		if _, err := uuid.Parse(id); err != nil {
			handleError(w, apperrors.InvalidUUID("Member ID"))
			return
		}
	}

	group, err := h.groupService.Create(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toGroupResponse(group))
}
