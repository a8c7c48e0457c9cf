package services

import (
	"context"
	"testing"

	apperrors "splitledger-backend/errors"
	"splitledger-backend/models"
)

func TestRecordSettlement(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		req    models.CreateSettlementRequest
		payer  string
		code   apperrors.ErrorCode
	}{
		{
			name:   "payer defaults to caller",
			userID: "bob",
			req:    models.CreateSettlementRequest{ReceiverID: "alice", Amount: amt("30")},
			payer:  "bob",
		},
		{
			name:   "receiver records on behalf of payer",
			userID: "alice",
			req:    models.CreateSettlementRequest{PayerID: "bob", ReceiverID: "alice", Amount: amt("5")},
			payer:  "bob",
		},
		{
			name:   "group settlement",
			userID: "alice",
			req:    models.CreateSettlementRequest{GroupID: strPtr("trip"), ReceiverID: "carol", Amount: amt("30")},
			payer:  "alice",
		},
		{
			name:   "to self",
			userID: "alice",
			req:    models.CreateSettlementRequest{ReceiverID: "alice", Amount: amt("30")},
			code:   apperrors.CodeInvalidSettlement,
		},
		{
			name:   "zero amount",
			userID: "alice",
			req:    models.CreateSettlementRequest{ReceiverID: "bob", Amount: amt("0")},
			code:   apperrors.CodeInvalidAmount,
		},
		{
			name:   "missing receiver",
			userID: "alice",
			req:    models.CreateSettlementRequest{Amount: amt("10")},
			code:   apperrors.CodeMissingRequiredField,
		},
		{
			name:   "third party",
			userID: "carol",
			req:    models.CreateSettlementRequest{PayerID: "bob", ReceiverID: "alice", Amount: amt("10")},
			code:   apperrors.CodeInsufficientPermissions,
		},
		{
			name:   "receiver outside group",
			userID: "alice",
			req:    models.CreateSettlementRequest{GroupID: strPtr("flat"), ReceiverID: "carol", Amount: amt("10")},
			code:   apperrors.CodeInvalidRequest,
		},
		{
			name:   "caller outside group",
			userID: "carol",
			req:    models.CreateSettlementRequest{GroupID: strPtr("flat"), ReceiverID: "alice", Amount: amt("10")},
			code:   apperrors.CodeNotGroupMember,
		},
		{
			name:   "unknown receiver",
			userID: "alice",
			req:    models.CreateSettlementRequest{ReceiverID: "ghost", Amount: amt("10")},
			code:   apperrors.CodeUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, groups, _, settlements := dashboardFixture()
			c := newMockCache()
			tx := &fakeTx{}
			s := NewSettlementService(settlements, groups, users, c, tx)

			got, err := s.Record(context.Background(), tt.userID, &tt.req)
			if tt.code != "" {
				if !apperrors.HasCode(err, tt.code) {
					t.Fatalf("expected %s, got %v", tt.code, err)
				}
				if len(settlements.created) != 0 {
					t.Errorf("rejected settlement was persisted")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.PayerID != tt.payer {
				t.Errorf("PayerID = %s, want %s", got.PayerID, tt.payer)
			}
			if tx.commits != 1 || len(settlements.created) != 1 {
				t.Errorf("expected one committed insert, commits=%d created=%d", tx.commits, len(settlements.created))
			}
			if !contains(c.invalidated, got.PayerID) || !contains(c.invalidated, got.ReceiverID) {
				t.Errorf("invalidated = %v, want both parties", c.invalidated)
			}
		})
	}
}
