package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "splitledger-backend/errors"
	"splitledger-backend/models"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type ExplanationService interface {
	ExplainPairwise(ctx context.Context, userID, counterpartID string) (*models.DebtExplanation, error)
	Close() error
}

type textGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.GenerativeModel(g.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		if part, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
			return string(part), nil
		}
	}
	return "", nil
}

func (g *geminiGenerator) Close() error {
	return g.client.Close()
}

type explanationService struct {
	balances  BalanceService
	generator textGenerator
}

var errExplanationsDisabled = errors.New("no GEMINI_API_KEY configured")

// NewExplanationService returns a service whose calls fail with an AI
// service error when apiKey is empty.
func NewExplanationService(ctx context.Context, apiKey string, balances BalanceService) (ExplanationService, error) {
	s := &explanationService{balances: balances}
	if apiKey == "" {
		zap.L().Warn("GEMINI_API_KEY not set, balance explanations are disabled")
		return s, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	s.generator = &geminiGenerator{client: client, model: explanationModel}
	return s, nil
}

func (s *explanationService) ExplainPairwise(ctx context.Context, userID, counterpartID string) (*models.DebtExplanation, error) {
	if s.generator == nil {
		return nil, apperrors.AIServiceError(errExplanationsDisabled)
	}

	result, err := s.balances.GetPairwise(ctx, userID, counterpartID)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.Generate(ctx, buildPairwisePrompt(result))
	if err != nil {
		zap.L().Error("Failed to generate explanation", zap.String("user_id", userID), zap.String("counterpart_id", counterpartID), zap.Error(err))
		return nil, apperrors.AIServiceError(err)
	}

	return &models.DebtExplanation{
		CounterpartID: counterpartID,
		Explanation:   strings.TrimSpace(text),
	}, nil
}

func (s *explanationService) Close() error {
	if s.generator == nil {
		return nil
	}
	return s.generator.Close()
}

func buildPairwisePrompt(r *PairwiseResult) string {
	you, them := r.User.Name, r.Counterpart.Name
	names := map[string]string{r.User.ID: you, r.Counterpart.ID: them}

	var expenses strings.Builder
	for _, e := range r.Expenses {
		fmt.Fprintf(&expenses, "- %s on %s: %s paid %s\n", e.Description, e.Date.Format("2006-01-02"), nameOr(names, e.PaidByUserID), e.TotalAmount.StringFixed(2))
		for _, sp := range e.Splits {
			status := "unpaid"
			if sp.Paid {
				status = "paid"
			}
			fmt.Fprintf(&expenses, "    %s's share: %s (%s)\n", nameOr(names, sp.UserID), sp.Amount.StringFixed(2), status)
		}
	}
	if expenses.Len() == 0 {
		expenses.WriteString("No shared expenses.\n")
	}

	var settlements strings.Builder
	for _, st := range r.Settlements {
		fmt.Fprintf(&settlements, "- %s paid %s %s on %s\n", nameOr(names, st.PayerID), nameOr(names, st.ReceiverID), st.Amount.StringFixed(2), st.Date.Format("2006-01-02"))
	}
	if settlements.Len() == 0 {
		settlements.WriteString("No settlements.\n")
	}

	b := r.Balance
	return fmt.Sprintf(`You are a financial assistant for a shared-expense app.
Explain to %[1]s why their balance with %[2]s is what it is.

Only unpaid shares count as debt. A settlement reduces what the payer owes.

SHARED EXPENSES:
%[3]s
SETTLEMENTS:
%[4]s
RESULT:
- %[2]s owes %[1]s: %[5]s
- %[1]s owes %[2]s: %[6]s
- Net for %[1]s: %[7]s (positive means %[2]s owes %[1]s)

Keep it under 3-4 sentences. Use names clearly. Be conversational but accurate. Get straight to the explanation.`,
		you, them, expenses.String(), settlements.String(),
		b.TotalOwed.StringFixed(2), b.TotalOwing.StringFixed(2), b.NetAmount.StringFixed(2))
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return "someone else"
}
