package handlers

import (
	"net/http"
	"strconv"
	"time"

	apperrors "splitledger-backend/errors"
)

func (h *Handlers) GetPairwiseBalance(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.balanceService.GetPairwise(r.Context(), userID, counterpartID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toPairwiseResponse(res))
}

func (h *Handlers) GetGroupBalances(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}
	groupID, err := uuidParam(r, "groupID", "Group ID")
	if err != nil {
		handleError(w, err)
		return
	}

	net := false
	if raw := r.URL.Query().Get("net"); raw != "" {
		net, err = strconv.ParseBool(raw)
		if err != nil {
			handleError(w, apperrors.InvalidFieldFormat("net", "true or false"))
			return
		}
	}

	res, err := h.balanceService.GetGroupBalances(r.Context(), groupID, userID, net)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toGroupBalancesResponse(res))
}

func (h *Handlers) GetContacts(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	contacts, err := h.balanceService.GetContacts(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toContactsResponse(contacts))
}

func (h *Handlers) GetSpending(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil || year < 1970 || year > 9999 {
			handleError(w, apperrors.InvalidFieldFormat("year", "YYYY"))
			return
		}
	}

	res, err := h.balanceService.GetSpending(r.Context(), userID, year)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSpendingResponse(res))
}
