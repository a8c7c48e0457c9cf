// Package ledger folds expense and settlement records into signed balances.
//
// Every entry point is a pure function over an in-memory snapshot: nothing is
// read from ambient state, nothing is logged and inputs are never mutated.
// The subject whose balances are computed is always passed explicitly.
//
// Amounts are accumulated at full decimal precision. Rounding for display is
// left to the caller (see Display).
package ledger

import (
	"time"

	apperrors "splitledger-backend/errors"

	"github.com/shopspring/decimal"
)

// Split is one participant's share of an expense. Paid marks a share whose
// repayment has already been recorded elsewhere; it never contributes to a
// balance.
type Split struct {
	UserID string
	Amount decimal.Decimal
	Paid   bool
}

// Expense is a shared cost paid in full by PayerID. Splits lists every user
// with a stake in the expense, the payer's own share included. An empty
// GroupID marks a direct expense.
type Expense struct {
	ID      string
	GroupID string
	PayerID string
	Amount  decimal.Decimal
	Splits  []Split
	Date    time.Time
}

// Settlement is a direct payment from PayerID to ReceiverID. An empty GroupID
// marks a direct settlement.
type Settlement struct {
	ID         string
	GroupID    string
	PayerID    string
	ReceiverID string
	Amount     decimal.Decimal
	Date       time.Time
}

// ShareOf returns the amount userID owes on the expense and whether that share
// is already paid. ok is false when userID has no split.
func (e Expense) ShareOf(userID string) (amount decimal.Decimal, paid bool, ok bool) {
	for _, s := range e.Splits {
		if s.UserID == userID {
			return s.Amount, s.Paid, true
		}
	}
	return decimal.Zero, false, false
}

func (e Expense) IsPayer(userID string) bool {
	return e.PayerID == userID
}

// Involves reports whether userID paid for the expense or holds a split in it.
func (e Expense) Involves(userID string) bool {
	if e.IsPayer(userID) {
		return true
	}
	_, _, ok := e.ShareOf(userID)
	return ok
}

func (e Expense) SplitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.Splits {
		total = total.Add(s.Amount)
	}
	return total
}

// Validate checks the write-time invariants of an expense. The balance
// builders do not call it: records already stored are folded as they are.
func (e Expense) Validate() error {
	if e.PayerID == "" {
		return apperrors.MissingRequiredField("Payer")
	}
	if !e.Amount.IsPositive() {
		return apperrors.InvalidAmount("Amount must be greater than zero.")
	}
	if len(e.Splits) == 0 {
		return apperrors.MissingRequiredField("Splits")
	}

	seen := make(map[string]struct{}, len(e.Splits))
	for _, s := range e.Splits {
		if s.UserID == "" {
			return apperrors.MissingRequiredField("Split user")
		}
		if s.Amount.IsNegative() {
			return apperrors.InvalidAmount("Split amounts cannot be negative.")
		}
		if _, dup := seen[s.UserID]; dup {
			return apperrors.DuplicateSplit(s.UserID)
		}
		seen[s.UserID] = struct{}{}
	}

	splitTotal := e.SplitTotal()
	if splitTotal.Sub(e.Amount).Abs().GreaterThan(SplitTolerance) {
		return apperrors.AmountMismatch(splitTotal.StringFixed(displayPlaces), e.Amount.StringFixed(displayPlaces))
	}
	return nil
}

func (s Settlement) Validate() error {
	if s.PayerID == "" {
		return apperrors.MissingRequiredField("Payer")
	}
	if s.ReceiverID == "" {
		return apperrors.MissingRequiredField("Receiver")
	}
	if s.PayerID == s.ReceiverID {
		return apperrors.CannotSettleToSelf()
	}
	if !s.Amount.IsPositive() {
		return apperrors.InvalidAmount("Amount must be greater than zero.")
	}
	return nil
}
