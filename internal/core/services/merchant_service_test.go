package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/core/services"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
)

// MockMerchantRepository is a mock type for the MerchantRepositoryFacade interface
type MockMerchantRepository struct {
	mock.Mock
}

func (m *MockMerchantRepository) FindMerchantByID(ctx context.Context, merchantID string) (*domain.CanonicalMerchant, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CanonicalMerchant), args.Error(1)
}

func (m *MockMerchantRepository) FindMerchantByVAT(ctx context.Context, vatNumber string) (*domain.CanonicalMerchant, error) {
	args := m.Called(ctx, vatNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CanonicalMerchant), args.Error(1)
}

func (m *MockMerchantRepository) FindMerchantByAlias(ctx context.Context, normalizedAlias string) (*domain.CanonicalMerchant, error) {
	args := m.Called(ctx, normalizedAlias)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CanonicalMerchant), args.Error(1)
}

func (m *MockMerchantRepository) ListMerchants(ctx context.Context, limit int, offset int) ([]domain.CanonicalMerchant, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CanonicalMerchant), args.Error(1)
}

func (m *MockMerchantRepository) SaveMerchant(ctx context.Context, merchant domain.CanonicalMerchant) error {
	args := m.Called(ctx, merchant)
	return args.Error(0)
}

func (m *MockMerchantRepository) AddMerchantAlias(ctx context.Context, merchantID string, alias string, userID string, now time.Time) error {
	args := m.Called(ctx, merchantID, alias, userID, now)
	return args.Error(0)
}

// --- Test Suite Setup ---

type MerchantServiceTestSuite struct {
	suite.Suite
	mockRepo *MockMerchantRepository
	service  portssvc.MerchantSvcFacade
	userID   string
}

func (suite *MerchantServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockMerchantRepository)
	suite.service = services.NewMerchantService(suite.mockRepo)
	suite.userID = "user-1"
}

// --- Test Cases ---

func (suite *MerchantServiceTestSuite) TestResolveMerchant_EmbeddedVATNumberWins() {
	ctx := context.Background()
	known := &domain.CanonicalMerchant{MerchantID: "merchant-1", DisplayName: "Digitec Galaxus", VATNumber: "CHE-123.456.789"}

	suite.mockRepo.On("FindMerchantByVAT", ctx, "CHE-123.456.789").Return(known, nil).Once()

	merchant, confidence, err := suite.service.ResolveMerchant(ctx, suite.userID, "DIGITEC GALAXUS CHE-123.456.789 ZUERICH")

	suite.Require().NoError(err)
	suite.Equal("merchant-1", merchant.MerchantID)
	suite.Equal(1.0, confidence)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindMerchantByAlias", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *MerchantServiceTestSuite) TestResolveMerchant_ExactAliasHit() {
	ctx := context.Background()
	known := &domain.CanonicalMerchant{MerchantID: "merchant-1", DisplayName: "Migros"}

	suite.mockRepo.On("FindMerchantByAlias", ctx, "migros zürich hb").Return(known, nil).Once()

	merchant, confidence, err := suite.service.ResolveMerchant(ctx, suite.userID, "MIGROS ZÜRICH HB")

	suite.Require().NoError(err)
	suite.Equal("merchant-1", merchant.MerchantID)
	suite.Equal(1.0, confidence)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListMerchants", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MerchantServiceTestSuite) TestResolveMerchant_FuzzyHitLearnsAlias() {
	ctx := context.Background()
	// One missing character: edit similarity well above the learn threshold.
	known := domain.CanonicalMerchant{MerchantID: "merchant-1", DisplayName: "Migros Zürich Hauptbahnhof"}

	suite.mockRepo.On("FindMerchantByAlias", ctx, "migros zürich hauptbahnho").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("ListMerchants", ctx, 500, 0).Return([]domain.CanonicalMerchant{known}, nil).Once()
	suite.mockRepo.On("AddMerchantAlias", ctx, "merchant-1", "Migros Zürich Hauptbahnho", suite.userID, mock.Anything).Return(nil).Once()

	merchant, confidence, err := suite.service.ResolveMerchant(ctx, suite.userID, "Migros Zürich Hauptbahnho")

	suite.Require().NoError(err)
	suite.Equal("merchant-1", merchant.MerchantID)
	suite.GreaterOrEqual(confidence, 0.90)
	suite.Contains(merchant.Aliases, "Migros Zürich Hauptbahnho")
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *MerchantServiceTestSuite) TestResolveMerchant_FuzzyHitBelowLearnThreshold() {
	ctx := context.Background()
	// Four of five tokens shared: similarity 0.8, enough to resolve but not
	// to learn a new alias.
	known := domain.CanonicalMerchant{MerchantID: "merchant-1", DisplayName: "sbb cff ffs billett zuerich"}

	suite.mockRepo.On("FindMerchantByAlias", ctx, "sbb cff ffs billett").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("ListMerchants", ctx, 500, 0).Return([]domain.CanonicalMerchant{known}, nil).Once()

	merchant, confidence, err := suite.service.ResolveMerchant(ctx, suite.userID, "SBB CFF FFS BILLETT")

	suite.Require().NoError(err)
	suite.Equal("merchant-1", merchant.MerchantID)
	suite.InDelta(0.8, confidence, 0.001)
	suite.mockRepo.AssertNotCalled(suite.T(), "AddMerchantAlias", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MerchantServiceTestSuite) TestResolveMerchant_CreatesNewWhenNothingClears() {
	ctx := context.Background()

	suite.mockRepo.On("FindMerchantByAlias", ctx, "kiosk seefeldstrasse").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("ListMerchants", ctx, 500, 0).Return([]domain.CanonicalMerchant{}, nil).Once()

	var saved domain.CanonicalMerchant
	suite.mockRepo.On("SaveMerchant", ctx, mock.AnythingOfType("domain.CanonicalMerchant")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.CanonicalMerchant) }).
		Return(nil).Once()

	merchant, confidence, err := suite.service.ResolveMerchant(ctx, suite.userID, "Kiosk Seefeldstrasse")

	suite.Require().NoError(err)
	suite.Equal(1.0, confidence)
	suite.NotEmpty(merchant.MerchantID)
	suite.Equal("Kiosk Seefeldstrasse", saved.DisplayName)
	suite.Equal([]string{"Kiosk Seefeldstrasse"}, saved.Aliases)
	suite.Equal(suite.userID, saved.CreatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *MerchantServiceTestSuite) TestResolveMerchant_ConcurrentCreateFallsBackToAlias() {
	ctx := context.Background()
	existing := &domain.CanonicalMerchant{MerchantID: "merchant-1", DisplayName: "Kiosk Seefeldstrasse"}

	suite.mockRepo.On("FindMerchantByAlias", ctx, "kiosk seefeldstrasse").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("ListMerchants", ctx, 500, 0).Return([]domain.CanonicalMerchant{}, nil).Once()
	suite.mockRepo.On("SaveMerchant", ctx, mock.AnythingOfType("domain.CanonicalMerchant")).Return(apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("FindMerchantByAlias", ctx, "kiosk seefeldstrasse").Return(existing, nil).Once()

	merchant, _, err := suite.service.ResolveMerchant(ctx, suite.userID, "Kiosk Seefeldstrasse")

	suite.Require().NoError(err)
	suite.Equal("merchant-1", merchant.MerchantID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *MerchantServiceTestSuite) TestResolveMerchant_AliasCollisionResolvesToOwner() {
	ctx := context.Background()
	owner := &domain.CanonicalMerchant{MerchantID: "merchant-1", DisplayName: "Kiosk Zürich"}

	// The repository rejects the insert because the normalized text already
	// belongs to another merchant's alias; resolution lands on that owner.
	collision := fmt.Errorf("%w: alias %q", apperrors.ErrDuplicate, "Kiosk Seefeldstrasse")
	suite.mockRepo.On("FindMerchantByAlias", ctx, "kiosk seefeldstrasse").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("ListMerchants", ctx, 500, 0).Return([]domain.CanonicalMerchant{}, nil).Once()
	suite.mockRepo.On("SaveMerchant", ctx, mock.AnythingOfType("domain.CanonicalMerchant")).Return(collision).Once()
	suite.mockRepo.On("FindMerchantByAlias", ctx, "kiosk seefeldstrasse").Return(owner, nil).Once()

	merchant, _, err := suite.service.ResolveMerchant(ctx, suite.userID, "Kiosk Seefeldstrasse")

	suite.Require().NoError(err)
	suite.Equal("merchant-1", merchant.MerchantID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *MerchantServiceTestSuite) TestResolveMerchant_EmptyTextFails() {
	_, _, err := suite.service.ResolveMerchant(context.Background(), suite.userID, "   ")
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *MerchantServiceTestSuite) TestCreateMerchant_RejectsMalformedVAT() {
	_, err := suite.service.CreateMerchant(context.Background(), suite.userID, dto.CreateMerchantRequest{
		DisplayName: "Broken",
		VATNumber:   "CHE-12.3456.789",
	})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveMerchant", mock.Anything, mock.Anything)
}

func (suite *MerchantServiceTestSuite) TestCreateMerchant_DefaultsAliasToDisplayName() {
	ctx := context.Background()

	var saved domain.CanonicalMerchant
	suite.mockRepo.On("SaveMerchant", ctx, mock.AnythingOfType("domain.CanonicalMerchant")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.CanonicalMerchant) }).
		Return(nil).Once()

	merchant, err := suite.service.CreateMerchant(ctx, suite.userID, dto.CreateMerchantRequest{
		DisplayName: "Helsana Versicherungen",
		VATNumber:   "CHE-100.200.300",
	})

	suite.Require().NoError(err)
	suite.Equal("Helsana Versicherungen", merchant.DisplayName)
	suite.Equal([]string{"Helsana Versicherungen"}, saved.Aliases)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestMerchantServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MerchantServiceTestSuite))
}
