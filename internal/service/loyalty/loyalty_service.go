package loyalty

import (
	"context"
	"time"

	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/aviatio/flightdeck/internal/repository"
	"go.uber.org/zap"
)

type CreditInput struct {
	MemberNumber string
	Points       int
	FlightID     *int64
	Date         *time.Time
}

type LoyaltyUseCase interface {
	Credit(ctx context.Context, input CreditInput) (*domain.LoyaltyTransaction, error)
	GetMemberByNumber(ctx context.Context, memberNumber string) (*domain.LoyaltyMember, error)
	GetMemberByUserID(ctx context.Context, userID string) (*domain.LoyaltyMember, error)
}

type LoyaltyService struct {
	tx     repository.Transactor
	repo   repository.LoyaltyRepository
	logger *zap.Logger
}

func NewLoyaltyService(tx repository.Transactor, repo repository.LoyaltyRepository, logger *zap.Logger) *LoyaltyService {
	return &LoyaltyService{tx: tx, repo: repo, logger: logger}
}

// Credit adds points to a member and writes the matching ledger row in a
// single transaction. Credits from a completed in-house flight carry its
// flight id; credits without one are posted as partner activity.
func (s *LoyaltyService) Credit(ctx context.Context, input CreditInput) (*domain.LoyaltyTransaction, error) {
	if input.MemberNumber == "" {
		return nil, domain.NewValidationError("memberNumber is required")
	}
	if input.Points <= 0 {
		return nil, domain.NewValidationError("points must be a positive number")
	}

	txType := domain.TransactionExternalAirline
	if input.FlightID != nil {
		txType = domain.TransactionFlightCompleted
	}
	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	transaction := &domain.LoyaltyTransaction{
		MemberNumber: input.MemberNumber,
		FlightID:     input.FlightID,
		Type:         txType,
		Points:       input.Points,
		Date:         date,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.AdjustBalance(ctx, input.MemberNumber, input.Points); err != nil {
			return err
		}
		return s.repo.CreateTransaction(ctx, transaction)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("points credited",
		zap.String("member_number", input.MemberNumber),
		zap.Int("points", input.Points),
		zap.String("type", string(txType)))
	return transaction, nil
}

func (s *LoyaltyService) GetMemberByNumber(ctx context.Context, memberNumber string) (*domain.LoyaltyMember, error) {
	if memberNumber == "" {
		return nil, domain.NewValidationError("memberNumber is required")
	}
	return s.repo.GetMemberByNumber(ctx, memberNumber)
}

func (s *LoyaltyService) GetMemberByUserID(ctx context.Context, userID string) (*domain.LoyaltyMember, error) {
	if userID == "" {
		return nil, domain.NewValidationError("userId is required")
	}
	return s.repo.GetMemberByUserID(ctx, userID)
}

var _ LoyaltyUseCase = (*LoyaltyService)(nil)
