package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portsrepo "github.com/silvioiatech/umbra-accountant/internal/core/ports/repositories"
	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
	"github.com/silvioiatech/umbra-accountant/internal/platform/rules"
)

// expenseService implements the ExpenseSvcFacade interface
type expenseService struct {
	BaseService
	expenseRepo portsrepo.ExpenseRepositoryFacade
	merchantSvc portssvc.MerchantResolverSvc
	categorySvc portssvc.CategorySvcFacade
}

// NewExpenseService creates a new expense service.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade, merchantSvc portssvc.MerchantResolverSvc, categorySvc portssvc.CategorySvcFacade) portssvc.ExpenseSvcFacade {
	return &expenseService{
		expenseRepo: expenseRepo,
		merchantSvc: merchantSvc,
		categorySvc: categorySvc,
	}
}

// Ensure expenseService implements the ExpenseSvcFacade interface
var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// CreateExpense persists a new expense. The merchant is resolved to its
// canonical identity; when the request carries no category the categorizer
// assigns one.
func (s *expenseService) CreateExpense(ctx context.Context, userID string, req dto.CreateExpenseRequest) (*domain.Expense, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", apperrors.ErrValidation, req.Date)
	}
	if req.AmountCHF.IsZero() {
		return nil, fmt.Errorf("%w: amount must be non-zero", apperrors.ErrValidation)
	}

	merchant, _, err := s.merchantSvc.ResolveMerchant(ctx, userID, req.MerchantText)
	if err != nil {
		return nil, err
	}

	categoryCode := req.CategoryCode
	confidence := 1.0
	if categoryCode == "" {
		categoryCode, confidence, err = s.categorySvc.Categorize(ctx, userID, req.MerchantText)
		if err != nil {
			return nil, err
		}
	} else if !rules.ValidDeductionCategory(categoryCode) {
		return nil, fmt.Errorf("%w: unknown deduction category %q", apperrors.ErrValidation, categoryCode)
	}

	businessPct := 100
	if req.BusinessPercentage != nil {
		businessPct = *req.BusinessPercentage
	}

	now := time.Now()
	expense := domain.Expense{
		ExpenseID:           uuid.NewString(),
		UserID:              userID,
		MerchantText:        req.MerchantText,
		CanonicalMerchantID: merchant.MerchantID,
		AmountCHF:           req.AmountCHF,
		Date:                date,
		CategoryCode:        categoryCode,
		CategoryConfidence:  confidence,
		BusinessPercentage:  businessPct,
		Reference:           req.Reference,
		Notes:               req.Notes,
		MatchStatus:         domain.MatchStatusUnmatched,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Expense created",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("category", categoryCode),
		slog.Float64("confidence", confidence))
	return &expense, nil
}

// OverrideExpenseCategory replaces the category on an expense with a
// user-chosen one. The override always wins over automatic categorization.
func (s *expenseService) OverrideExpenseCategory(ctx context.Context, userID string, expenseID string, req dto.UpdateCategoryRequest) (*domain.Expense, error) {
	if !rules.ValidDeductionCategory(req.CategoryCode) {
		return nil, fmt.Errorf("%w: unknown deduction category %q", apperrors.ErrValidation, req.CategoryCode)
	}

	expense, err := s.GetExpenseByID(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}

	expense.CategoryCode = req.CategoryCode
	expense.CategoryConfidence = 1.0
	if req.BusinessPercentage != nil {
		expense.BusinessPercentage = *req.BusinessPercentage
	}
	expense.LastUpdatedAt = time.Now()
	expense.LastUpdatedBy = userID

	if err := s.expenseRepo.UpdateExpenseCategory(ctx, *expense); err != nil {
		return nil, err
	}

	if req.ApplyToMerchant {
		_, err := s.categorySvc.AddCustomMapping(ctx, userID, dto.CreateCategoryMappingRequest{
			MerchantCategory:  expense.MerchantText,
			DeductionCategory: req.CategoryCode,
		})
		if err != nil {
			// The expense itself is already updated; losing the mapping only
			// costs future auto-categorization.
			s.LogWarn(ctx, "Failed to persist category override mapping",
				slog.String("expense_id", expenseID),
				slog.String("error", err.Error()))
		}
	}
	return expense, nil
}

// GetExpenseByID retrieves an expense, scoped to its owner.
func (s *expenseService) GetExpenseByID(ctx context.Context, userID string, expenseID string) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return expense, nil
}

// ListExpenses retrieves a paginated list of the user's expenses.
func (s *expenseService) ListExpenses(ctx context.Context, userID string, limit int, offset int) ([]domain.Expense, error) {
	return s.expenseRepo.ListExpenses(ctx, userID, limit, offset)
}
