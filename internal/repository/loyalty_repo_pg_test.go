package repository

import (
	"context"
	"testing"

	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

// fakeTx stubs the two queries AdjustBalance runs. It rides into the
// repository through the transaction context, like a real pgx.Tx would.
type fakeTx struct {
	pgx.Tx
	execTag pgconn.CommandTag
	balance int
	scanErr error
}

func (f *fakeTx) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return f.execTag, nil
}

func (f *fakeTx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return fakeRow{balance: f.balance, err: f.scanErr}
}

type fakeRow struct {
	balance int
	err     error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int)) = r.balance
	return nil
}

func txContext(tx pgx.Tx) context.Context {
	return context.WithValue(context.Background(), txKey{}, tx)
}

func TestPGLoyaltyRepository_AdjustBalance_Success(t *testing.T) {
	repo := NewLoyaltyRepository(nil)
	ctx := txContext(&fakeTx{execTag: pgconn.NewCommandTag("UPDATE 1")})

	assert.NoError(t, repo.AdjustBalance(ctx, "MS1", -50))
}

func TestPGLoyaltyRepository_AdjustBalance_BlockedDebitIsInsufficientPoints(t *testing.T) {
	repo := NewLoyaltyRepository(nil)
	ctx := txContext(&fakeTx{execTag: pgconn.NewCommandTag("UPDATE 0"), balance: 30})

	err := repo.AdjustBalance(ctx, "MS1", -50)

	var pointsErr *domain.InsufficientPointsError
	assert.ErrorAs(t, err, &pointsErr)
	assert.Equal(t, 30, pointsErr.Balance)
	assert.Equal(t, 50, pointsErr.Required)
}

func TestPGLoyaltyRepository_AdjustBalance_DebitMissingMember(t *testing.T) {
	repo := NewLoyaltyRepository(nil)
	ctx := txContext(&fakeTx{execTag: pgconn.NewCommandTag("UPDATE 0"), scanErr: pgx.ErrNoRows})

	err := repo.AdjustBalance(ctx, "MS404", -50)

	var notFoundErr *domain.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestPGLoyaltyRepository_AdjustBalance_CreditMissingMember(t *testing.T) {
	repo := NewLoyaltyRepository(nil)
	// The guard cannot block a credit, so zero updated rows means no member.
	ctx := txContext(&fakeTx{execTag: pgconn.NewCommandTag("UPDATE 0")})

	err := repo.AdjustBalance(ctx, "MS404", 100)

	var notFoundErr *domain.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}
