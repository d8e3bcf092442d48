package repository

import (
	"context"

	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserBooking is a booking joined with its flight, as returned by the
// booking-history listing.
type UserBooking struct {
	Booking domain.Booking `json:"booking"`
	Flight  domain.Flight  `json:"flight"`
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]UserBooking, int, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	row := querier(ctx, r.db).QueryRow(ctx, `INSERT INTO bookings
		(flight_id, user_id, member_number, passenger_name, passenger_surname, passenger_dob, paid_with_points, points_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, booking_date`,
		booking.FlightID, booking.UserID, booking.LoyaltyMemberNumber,
		booking.PassengerName, booking.PassengerSurname, booking.PassengerDOB,
		booking.PaidWithPoints, booking.PointsUsed)
	if err := row.Scan(&booking.ID, &booking.BookedAt); err != nil {
		return storeErr("create booking", err)
	}
	return nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]UserBooking, int, error) {
	db := querier(ctx, r.db)

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, storeErr("count bookings", err)
	}

	rows, err := db.Query(ctx, `SELECT
			b.id, b.flight_id, b.user_id, b.member_number, b.passenger_name, b.passenger_surname,
			b.passenger_dob, b.paid_with_points, b.points_used, b.booking_date,
			f.id, f.flight_code, f.from_city, f.to_city, f.flight_date, f.duration, f.price, f.capacity, f.booked_seats, f.created_at
		FROM bookings b
		INNER JOIN flights f ON b.flight_id = f.id
		WHERE b.user_id = $1
		ORDER BY b.booking_date DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, storeErr("list bookings", err)
	}
	defer rows.Close()

	out := make([]UserBooking, 0)
	for rows.Next() {
		var ub UserBooking
		b, f := &ub.Booking, &ub.Flight
		if err := rows.Scan(
			&b.ID, &b.FlightID, &b.UserID, &b.LoyaltyMemberNumber, &b.PassengerName, &b.PassengerSurname,
			&b.PassengerDOB, &b.PaidWithPoints, &b.PointsUsed, &b.BookedAt,
			&f.ID, &f.Code, &f.Origin, &f.Destination, &f.Date, &f.Duration, &f.Price, &f.Capacity, &f.BookedSeats, &f.CreatedAt,
		); err != nil {
			return nil, 0, storeErr("scan booking", err)
		}
		out = append(out, ub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeErr("list bookings", err)
	}
	return out, total, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
