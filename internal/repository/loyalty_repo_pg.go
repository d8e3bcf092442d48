package repository

import (
	"context"
	"errors"
	"time"

	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReconcileItem is a committed booking on a completed flight that has not
// been credited yet, joined with the member data needed for the email.
type ReconcileItem struct {
	MemberNumber string
	FlightID     int64
	Price        float64
	Email        string
	FirstName    string
	LastName     string
	Balance      int
}

type LoyaltyRepository interface {
	CreateMember(ctx context.Context, member *domain.LoyaltyMember) error
	GetMemberByNumber(ctx context.Context, memberNumber string) (*domain.LoyaltyMember, error)
	GetMemberByUserID(ctx context.Context, userID string) (*domain.LoyaltyMember, error)
	// AdjustBalance adds delta to the member's balance. Negative deltas are
	// guarded so the balance can never go below zero.
	AdjustBalance(ctx context.Context, memberNumber string, delta int) error
	CreateTransaction(ctx context.Context, txn *domain.LoyaltyTransaction) error
	ListUnwelcomedMembers(ctx context.Context) ([]domain.LoyaltyMember, error)
	MarkWelcomeEmailSent(ctx context.Context, memberNumber string) error
	ListUnreconciled(ctx context.Context, flightDate time.Time) ([]ReconcileItem, error)
	MarkTransactionEmailSent(ctx context.Context, memberNumber string, flightID int64) error
}

type PGLoyaltyRepository struct {
	db *pgxpool.Pool
}

func NewLoyaltyRepository(db *pgxpool.Pool) LoyaltyRepository {
	return &PGLoyaltyRepository{db: db}
}

const memberColumns = `id, member_number, user_id, email, first_name, last_name, date_of_birth, points_balance, welcome_email_sent, created_at`

func scanMember(row pgx.Row, m *domain.LoyaltyMember) error {
	return row.Scan(&m.ID, &m.MemberNumber, &m.UserID, &m.Email, &m.FirstName, &m.LastName,
		&m.DateOfBirth, &m.PointsBalance, &m.WelcomeEmailSent, &m.CreatedAt)
}

func (r *PGLoyaltyRepository) CreateMember(ctx context.Context, member *domain.LoyaltyMember) error {
	row := querier(ctx, r.db).QueryRow(ctx, `INSERT INTO loyalty_members
		(member_number, user_id, email, first_name, last_name, date_of_birth)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, points_balance, welcome_email_sent, created_at`,
		member.MemberNumber, member.UserID, member.Email, member.FirstName, member.LastName, member.DateOfBirth)
	if err := row.Scan(&member.ID, &member.PointsBalance, &member.WelcomeEmailSent, &member.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Msg: "loyalty member already exists"}
		}
		return storeErr("create member", err)
	}
	return nil
}

func (r *PGLoyaltyRepository) GetMemberByNumber(ctx context.Context, memberNumber string) (*domain.LoyaltyMember, error) {
	return r.getMember(ctx, `member_number`, memberNumber)
}

func (r *PGLoyaltyRepository) GetMemberByUserID(ctx context.Context, userID string) (*domain.LoyaltyMember, error) {
	return r.getMember(ctx, `user_id`, userID)
}

func (r *PGLoyaltyRepository) getMember(ctx context.Context, column, value string) (*domain.LoyaltyMember, error) {
	row := querier(ctx, r.db).QueryRow(ctx,
		`SELECT `+memberColumns+` FROM loyalty_members WHERE `+column+`=$1`, value)
	var m domain.LoyaltyMember
	if err := scanMember(row, &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "loyalty member"}
		}
		return nil, storeErr("get member", err)
	}
	return &m, nil
}

func (r *PGLoyaltyRepository) AdjustBalance(ctx context.Context, memberNumber string, delta int) error {
	db := querier(ctx, r.db)
	res, err := db.Exec(ctx, `UPDATE loyalty_members
		SET points_balance = points_balance + $1
		WHERE member_number = $2 AND points_balance + $1 >= 0`, delta, memberNumber)
	if err != nil {
		return storeErr("adjust balance", err)
	}
	if res.RowsAffected() > 0 {
		return nil
	}
	if delta >= 0 {
		return &domain.NotFoundError{Resource: "loyalty member"}
	}
	// A blocked debit and a missing member both update zero rows; the balance
	// lookup tells them apart.
	var balance int
	err = db.QueryRow(ctx,
		`SELECT points_balance FROM loyalty_members WHERE member_number=$1`, memberNumber).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.NotFoundError{Resource: "loyalty member"}
	}
	if err != nil {
		return storeErr("adjust balance", err)
	}
	return &domain.InsufficientPointsError{Balance: balance, Required: -delta}
}

func (r *PGLoyaltyRepository) CreateTransaction(ctx context.Context, txn *domain.LoyaltyTransaction) error {
	row := querier(ctx, r.db).QueryRow(ctx, `INSERT INTO loyalty_transactions
		(member_number, flight_id, points, transaction_date, transaction_type, email_sent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		txn.MemberNumber, txn.FlightID, txn.Points, txn.Date, txn.Type, txn.EmailSent)
	if err := row.Scan(&txn.ID); err != nil {
		return storeErr("create loyalty transaction", err)
	}
	return nil
}

func (r *PGLoyaltyRepository) ListUnwelcomedMembers(ctx context.Context) ([]domain.LoyaltyMember, error) {
	rows, err := querier(ctx, r.db).Query(ctx,
		`SELECT `+memberColumns+` FROM loyalty_members WHERE welcome_email_sent = FALSE`)
	if err != nil {
		return nil, storeErr("list unwelcomed members", err)
	}
	defer rows.Close()

	members := make([]domain.LoyaltyMember, 0)
	for rows.Next() {
		var m domain.LoyaltyMember
		if err := scanMember(rows, &m); err != nil {
			return nil, storeErr("scan member", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *PGLoyaltyRepository) MarkWelcomeEmailSent(ctx context.Context, memberNumber string) error {
	_, err := querier(ctx, r.db).Exec(ctx,
		`UPDATE loyalty_members SET welcome_email_sent = TRUE WHERE member_number = $1`, memberNumber)
	if err != nil {
		return storeErr("mark welcome email sent", err)
	}
	return nil
}

// ListUnreconciled finds bookings on flights dated flightDate that were not
// paid with points and have no ledger row for that flight yet.
func (r *PGLoyaltyRepository) ListUnreconciled(ctx context.Context, flightDate time.Time) ([]ReconcileItem, error) {
	rows, err := querier(ctx, r.db).Query(ctx, `SELECT
			b.member_number, b.flight_id, f.price, m.email, m.first_name, m.last_name, m.points_balance
		FROM bookings b
		INNER JOIN flights f ON b.flight_id = f.id
		INNER JOIN loyalty_members m ON b.member_number = m.member_number
		WHERE f.flight_date = $1
		AND b.paid_with_points = FALSE
		AND NOT EXISTS (
			SELECT 1 FROM loyalty_transactions lt
			WHERE lt.flight_id = b.flight_id AND lt.member_number = b.member_number
		)`, flightDate)
	if err != nil {
		return nil, storeErr("list unreconciled bookings", err)
	}
	defer rows.Close()

	items := make([]ReconcileItem, 0)
	for rows.Next() {
		var it ReconcileItem
		if err := rows.Scan(&it.MemberNumber, &it.FlightID, &it.Price, &it.Email, &it.FirstName, &it.LastName, &it.Balance); err != nil {
			return nil, storeErr("scan reconcile item", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGLoyaltyRepository) MarkTransactionEmailSent(ctx context.Context, memberNumber string, flightID int64) error {
	_, err := querier(ctx, r.db).Exec(ctx,
		`UPDATE loyalty_transactions SET email_sent = TRUE WHERE member_number = $1 AND flight_id = $2`,
		memberNumber, flightID)
	if err != nil {
		return storeErr("mark transaction email sent", err)
	}
	return nil
}

var _ LoyaltyRepository = (*PGLoyaltyRepository)(nil)
