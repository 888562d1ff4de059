package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/core/services"
)

type TaxServiceTestSuite struct {
	suite.Suite
	mockExpenseRepo *MockExpenseRepository
	service         portssvc.TaxSvcFacade
	userID          string
}

func (suite *TaxServiceTestSuite) SetupTest() {
	suite.mockExpenseRepo = new(MockExpenseRepository)
	suite.service = services.NewTaxService(suite.mockExpenseRepo)
	suite.userID = "user-1"
}

func (suite *TaxServiceTestSuite) expectExpenses(expenses []domain.Expense) {
	suite.mockExpenseRepo.On("ListExpensesInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return(expenses, nil).Once()
}

func taxExpense(amount string, category string, businessPct int) domain.Expense {
	return domain.Expense{
		ExpenseID:          "expense-" + amount,
		UserID:             "user-1",
		AmountCHF:          decimal.RequireFromString(amount),
		Date:               time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		CategoryCode:       category,
		BusinessPercentage: businessPct,
	}
}

func (suite *TaxServiceTestSuite) TestCalculateDeductions_ClampsPillar3aToFederalLimit() {
	suite.expectExpenses([]domain.Expense{
		taxExpense("4000.00", domain.CategoryPillar3a, 100),
		taxExpense("4000.05", domain.CategoryPillar3a, 100),
	})

	summary, err := suite.service.CalculateDeductions(context.Background(), suite.userID, 2024, "ZH")

	suite.Require().NoError(err)
	d := summary.DeductionsByCategory[domain.CategoryPillar3a]
	suite.True(d.Claimed.Equal(decimal.RequireFromString("8000.05")))
	suite.True(d.DeductibleAmount.Equal(decimal.NewFromInt(7056)))
	suite.True(d.LimitApplied)
	suite.Equal(2, d.ExpenseCount)
	suite.Require().Len(summary.Warnings, 1)
	suite.Contains(summary.Warnings[0], domain.CategoryPillar3a)
}

func (suite *TaxServiceTestSuite) TestCalculateDeductions_CantonSupplementRaisesLimit() {
	// Home office: federal 1000 plus the Geneva supplement of 500.
	suite.expectExpenses([]domain.Expense{
		taxExpense("1600.00", domain.CategoryHomeOffice, 100),
	})

	summary, err := suite.service.CalculateDeductions(context.Background(), suite.userID, 2024, "GE")

	suite.Require().NoError(err)
	d := summary.DeductionsByCategory[domain.CategoryHomeOffice]
	suite.True(d.DeductibleAmount.Equal(decimal.NewFromInt(1500)))
	suite.True(d.LimitApplied)
}

func (suite *TaxServiceTestSuite) TestCalculateDeductions_BusinessPercentageAppliedBeforeLimit() {
	suite.expectExpenses([]domain.Expense{
		taxExpense("1000.00", domain.CategoryHomeOffice, 60),
	})

	summary, err := suite.service.CalculateDeductions(context.Background(), suite.userID, 2024, "ZH")

	suite.Require().NoError(err)
	d := summary.DeductionsByCategory[domain.CategoryHomeOffice]
	suite.True(d.GrossAmount.Equal(decimal.NewFromInt(1000)))
	suite.True(d.Claimed.Equal(decimal.NewFromInt(600)))
	suite.True(d.DeductibleAmount.Equal(decimal.NewFromInt(600)))
	suite.False(d.LimitApplied)
	suite.Empty(summary.Warnings)
}

func (suite *TaxServiceTestSuite) TestCalculateDeductions_SkipsNonDeductible() {
	suite.expectExpenses([]domain.Expense{
		taxExpense("500.00", domain.CategoryNonDeductible, 100),
		taxExpense("300.00", "", 100),
		taxExpense("200.00", domain.CategoryDonations, 100),
	})

	summary, err := suite.service.CalculateDeductions(context.Background(), suite.userID, 2024, "ZH")

	suite.Require().NoError(err)
	suite.Len(summary.DeductionsByCategory, 1)
	suite.True(summary.TotalExpenses.Equal(decimal.NewFromInt(1000)))
	suite.True(summary.TotalDeductible.Equal(decimal.NewFromInt(200)))
}

func (suite *TaxServiceTestSuite) TestCalculateDeductions_UnlimitedCategoryNeverClamped() {
	suite.expectExpenses([]domain.Expense{
		taxExpense("50000.00", domain.CategoryMedicalExpenses, 100),
	})

	summary, err := suite.service.CalculateDeductions(context.Background(), suite.userID, 2024, "ZH")

	suite.Require().NoError(err)
	d := summary.DeductionsByCategory[domain.CategoryMedicalExpenses]
	suite.True(d.DeductibleAmount.Equal(decimal.NewFromInt(50000)))
	suite.False(d.LimitApplied)
	suite.Empty(summary.Warnings)
}

func (suite *TaxServiceTestSuite) TestCalculateDeductions_EstimatedSavings() {
	suite.expectExpenses([]domain.Expense{
		taxExpense("2000.00", domain.CategoryEducation, 100),
	})

	summary, err := suite.service.CalculateDeductions(context.Background(), suite.userID, 2024, "ZH")

	suite.Require().NoError(err)
	suite.True(summary.EstimatedTaxSavings.Equal(decimal.NewFromInt(500)),
		"expected 2000 * 0.25, got %s", summary.EstimatedTaxSavings)
}

func (suite *TaxServiceTestSuite) TestCalculateDeductions_LaterYearFallsBackToLatestRules() {
	suite.expectExpenses([]domain.Expense{
		{
			ExpenseID:          "expense-1",
			UserID:             suite.userID,
			AmountCHF:          decimal.NewFromInt(9000),
			Date:               time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			CategoryCode:       domain.CategoryPillar3a,
			BusinessPercentage: 100,
		},
	})

	summary, err := suite.service.CalculateDeductions(context.Background(), suite.userID, 2026, "ZH")

	suite.Require().NoError(err)
	d := summary.DeductionsByCategory[domain.CategoryPillar3a]
	suite.True(d.LimitApplied)
	suite.True(d.DeductibleAmount.Equal(decimal.NewFromInt(7056)))
}

func (suite *TaxServiceTestSuite) TestCalculateDeductions_BusinessOnlyExcludesPrivateUse() {
	// Home office is business-only: the purely private expense claims nothing
	// and does not even appear in the category's gross figures.
	suite.expectExpenses([]domain.Expense{
		taxExpense("800.00", domain.CategoryHomeOffice, 0),
		taxExpense("400.00", domain.CategoryHomeOffice, 100),
	})

	summary, err := suite.service.CalculateDeductions(context.Background(), suite.userID, 2024, "ZH")

	suite.Require().NoError(err)
	d := summary.DeductionsByCategory[domain.CategoryHomeOffice]
	suite.True(d.GrossAmount.Equal(decimal.NewFromInt(400)))
	suite.True(d.DeductibleAmount.Equal(decimal.NewFromInt(400)))
	suite.Equal(1, d.ExpenseCount)
	suite.True(summary.TotalExpenses.Equal(decimal.NewFromInt(1200)))
	suite.Require().Len(summary.Warnings, 1)
	suite.Contains(summary.Warnings[0], domain.CategoryHomeOffice)
	suite.Contains(summary.Warnings[0], "business-only")
}

func (suite *TaxServiceTestSuite) TestCalculateDeductions_UnknownCantonFails() {
	_, err := suite.service.CalculateDeductions(context.Background(), suite.userID, 2024, "XX")
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "ListExpensesInPeriod", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaxServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaxServiceTestSuite))
}
