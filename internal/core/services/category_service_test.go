package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/core/services"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
)

// MockCategoryMappingRepository is a mock type for the CategoryMappingRepositoryFacade interface
type MockCategoryMappingRepository struct {
	mock.Mock
}

func (m *MockCategoryMappingRepository) FindMappingForMerchantCategory(ctx context.Context, userID string, merchantCategory string) (*domain.CategoryMapping, error) {
	args := m.Called(ctx, userID, merchantCategory)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategoryMapping), args.Error(1)
}

func (m *MockCategoryMappingRepository) ListMappings(ctx context.Context, userID string) ([]domain.CategoryMapping, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryMapping), args.Error(1)
}

func (m *MockCategoryMappingRepository) UpsertMapping(ctx context.Context, mapping domain.CategoryMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

// --- Test Suite Setup ---

type CategoryServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCategoryMappingRepository
	service  portssvc.CategorySvcFacade
	userID   string
}

func (suite *CategoryServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCategoryMappingRepository)
	suite.service = services.NewCategoryService(suite.mockRepo)
	suite.userID = "user-1"
}

// --- Test Cases ---

func (suite *CategoryServiceTestSuite) TestCategorize_StoredMappingWins() {
	ctx := context.Background()
	// SBB text would classify as public transport, but the user's stored
	// mapping takes precedence.
	stored := &domain.CategoryMapping{
		MerchantCategory:  "sbb cff ffs",
		DeductionCategory: domain.CategoryOtherDeductions,
		Confidence:        1.0,
		UserOverride:      true,
	}
	suite.mockRepo.On("FindMappingForMerchantCategory", ctx, suite.userID, "sbb cff ffs").Return(stored, nil).Once()

	category, confidence, err := suite.service.Categorize(ctx, suite.userID, "SBB CFF FFS")

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryOtherDeductions, category)
	suite.Equal(1.0, confidence)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CategoryServiceTestSuite) TestCategorize_KeywordFallback() {
	ctx := context.Background()
	suite.mockRepo.On("FindMappingForMerchantCategory", ctx, suite.userID, mock.Anything).Return(nil, apperrors.ErrNotFound).Once()

	category, confidence, err := suite.service.Categorize(ctx, suite.userID, "SBB CFF FFS Billettautomat")

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryCommutePublic, category)
	suite.Greater(confidence, 0.0)
}

func (suite *CategoryServiceTestSuite) TestCategorize_UnknownTextIsNonDeductible() {
	ctx := context.Background()
	suite.mockRepo.On("FindMappingForMerchantCategory", ctx, suite.userID, mock.Anything).Return(nil, apperrors.ErrNotFound).Once()

	category, confidence, err := suite.service.Categorize(ctx, suite.userID, "Blumenladen am Eck")

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryNonDeductible, category)
	suite.Equal(0.0, confidence)
}

func (suite *CategoryServiceTestSuite) TestCategorize_EmptyTextSkipsLookup() {
	category, confidence, err := suite.service.Categorize(context.Background(), suite.userID, "  ")

	suite.Require().NoError(err)
	suite.Equal(domain.CategoryNonDeductible, category)
	suite.Equal(0.0, confidence)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindMappingForMerchantCategory", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CategoryServiceTestSuite) TestAddCustomMapping_Success() {
	ctx := context.Background()

	var saved domain.CategoryMapping
	suite.mockRepo.On("UpsertMapping", ctx, mock.AnythingOfType("domain.CategoryMapping")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.CategoryMapping) }).
		Return(nil).Once()

	mapping, err := suite.service.AddCustomMapping(ctx, suite.userID, dto.CreateCategoryMappingRequest{
		MerchantCategory:  "Fitnesspark Irchel",
		DeductionCategory: domain.CategoryMedicalExpenses,
	})

	suite.Require().NoError(err)
	suite.Equal("fitnesspark irchel", saved.MerchantCategory)
	suite.Equal(domain.CategoryMedicalExpenses, saved.DeductionCategory)
	suite.True(saved.UserOverride)
	suite.Equal(1.0, saved.Confidence)
	suite.Equal(mapping.MappingID, saved.MappingID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CategoryServiceTestSuite) TestAddCustomMapping_RejectsUnknownCategory() {
	_, err := suite.service.AddCustomMapping(context.Background(), suite.userID, dto.CreateCategoryMappingRequest{
		MerchantCategory:  "anything",
		DeductionCategory: "not_a_category",
	})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpsertMapping", mock.Anything, mock.Anything)
}

func TestCategoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}
