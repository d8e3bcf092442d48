package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/aviatio/flightdeck/internal/email"
	"github.com/aviatio/flightdeck/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type stubTransactor struct{}

func (stubTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockLoyaltyRepository struct {
	mock.Mock
}

func (m *MockLoyaltyRepository) CreateMember(ctx context.Context, member *domain.LoyaltyMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockLoyaltyRepository) GetMemberByNumber(ctx context.Context, memberNumber string) (*domain.LoyaltyMember, error) {
	args := m.Called(ctx, memberNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoyaltyMember), args.Error(1)
}

func (m *MockLoyaltyRepository) GetMemberByUserID(ctx context.Context, userID string) (*domain.LoyaltyMember, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoyaltyMember), args.Error(1)
}

func (m *MockLoyaltyRepository) AdjustBalance(ctx context.Context, memberNumber string, delta int) error {
	args := m.Called(ctx, memberNumber, delta)
	return args.Error(0)
}

func (m *MockLoyaltyRepository) CreateTransaction(ctx context.Context, txn *domain.LoyaltyTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockLoyaltyRepository) ListUnwelcomedMembers(ctx context.Context) ([]domain.LoyaltyMember, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.LoyaltyMember), args.Error(1)
}

func (m *MockLoyaltyRepository) MarkWelcomeEmailSent(ctx context.Context, memberNumber string) error {
	args := m.Called(ctx, memberNumber)
	return args.Error(0)
}

func (m *MockLoyaltyRepository) ListUnreconciled(ctx context.Context, flightDate time.Time) ([]repository.ReconcileItem, error) {
	args := m.Called(ctx, flightDate)
	return args.Get(0).([]repository.ReconcileItem), args.Error(1)
}

func (m *MockLoyaltyRepository) MarkTransactionEmailSent(ctx context.Context, memberNumber string, flightID int64) error {
	args := m.Called(ctx, memberNumber, flightID)
	return args.Error(0)
}

func newTestReconciler(t *testing.T) (*Reconciler, *MockLoyaltyRepository) {
	t.Helper()
	mockRepo := &MockLoyaltyRepository{}
	logger := zap.NewNop()
	return NewReconciler(stubTransactor{}, mockRepo, email.NewSender(logger), logger), mockRepo
}

func TestReconciler_ProcessCompletedFlights(t *testing.T) {
	reconciler, mockRepo := newTestReconciler(t)
	ctx := context.Background()

	items := []repository.ReconcileItem{
		{MemberNumber: "MS1", FlightID: 7, Price: 120.99, Email: "a@example.com", FirstName: "Anna", Balance: 10},
	}
	mockRepo.On("ListUnreconciled", ctx, mock.AnythingOfType("time.Time")).Return(items, nil)
	mockRepo.On("AdjustBalance", ctx, "MS1", 120).Return(nil)
	mockRepo.On("CreateTransaction", ctx, mock.MatchedBy(func(txn *domain.LoyaltyTransaction) bool {
		return txn.MemberNumber == "MS1" &&
			*txn.FlightID == int64(7) &&
			txn.Points == 120 &&
			txn.Type == domain.TransactionFlightCompleted
	})).Return(nil)
	mockRepo.On("MarkTransactionEmailSent", ctx, "MS1", int64(7)).Return(nil)

	err := reconciler.ProcessCompletedFlights(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestReconciler_ProcessCompletedFlights_ContinuesPastFailures(t *testing.T) {
	reconciler, mockRepo := newTestReconciler(t)
	ctx := context.Background()

	items := []repository.ReconcileItem{
		{MemberNumber: "MS1", FlightID: 7, Price: 100},
		{MemberNumber: "MS2", FlightID: 7, Price: 200},
	}
	mockRepo.On("ListUnreconciled", ctx, mock.AnythingOfType("time.Time")).Return(items, nil)
	mockRepo.On("AdjustBalance", ctx, "MS1", 100).Return(errors.New("boom"))
	mockRepo.On("AdjustBalance", ctx, "MS2", 200).Return(nil)
	mockRepo.On("CreateTransaction", ctx, mock.MatchedBy(func(txn *domain.LoyaltyTransaction) bool {
		return txn.MemberNumber == "MS2"
	})).Return(nil)
	mockRepo.On("MarkTransactionEmailSent", ctx, "MS2", int64(7)).Return(nil)

	err := reconciler.ProcessCompletedFlights(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestReconciler_ProcessCompletedFlights_NothingToDo(t *testing.T) {
	reconciler, mockRepo := newTestReconciler(t)
	ctx := context.Background()

	mockRepo.On("ListUnreconciled", ctx, mock.AnythingOfType("time.Time")).
		Return([]repository.ReconcileItem{}, nil)

	err := reconciler.ProcessCompletedFlights(ctx)

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_SendPendingWelcomeEmails(t *testing.T) {
	reconciler, mockRepo := newTestReconciler(t)
	ctx := context.Background()

	members := []domain.LoyaltyMember{
		{MemberNumber: "MS1", Email: "a@example.com", FirstName: "Anna"},
		{MemberNumber: "MS2", Email: "b@example.com", FirstName: "Boris"},
	}
	mockRepo.On("ListUnwelcomedMembers", ctx).Return(members, nil)
	mockRepo.On("MarkWelcomeEmailSent", ctx, "MS1").Return(nil)
	mockRepo.On("MarkWelcomeEmailSent", ctx, "MS2").Return(nil)

	err := reconciler.SendPendingWelcomeEmails(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
