package repository

import (
	"context"
	"errors"
	"time"

	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchQuery is the storage-level search: city match is case-insensitive,
// the date window is inclusive and availability means enough unsold seats for
// the whole party.
type SearchQuery struct {
	Origin      string
	Destination string
	DateFrom    time.Time
	DateTo      time.Time
	Passengers  int
	Limit       int
	Offset      int
}

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	// GetByIDForUpdate loads the flight under a row-level write lock;
	// concurrent bookings against the same flight serialize here.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, q SearchQuery) ([]domain.Flight, int, error)
	IncrementBookedSeats(ctx context.Context, id int64, passengers int) error
	ListCities(ctx context.Context) ([]string, error)
	ListAirlineCodes(ctx context.Context) ([]string, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_code, from_city, to_city, flight_date, duration, price, capacity, booked_seats, created_at`

func scanFlight(row pgx.Row, f *domain.Flight) error {
	return row.Scan(&f.ID, &f.Code, &f.Origin, &f.Destination, &f.Date, &f.Duration, &f.Price, &f.Capacity, &f.BookedSeats, &f.CreatedAt)
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	row := querier(ctx, r.db).QueryRow(ctx, `INSERT INTO flights (flight_code, from_city, to_city, flight_date, duration, price, capacity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, booked_seats, created_at`,
		flight.Code, flight.Origin, flight.Destination, flight.Date, flight.Duration, flight.Price, flight.Capacity)
	if err := row.Scan(&flight.ID, &flight.BookedSeats, &flight.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Msg: "flight code already exists"}
		}
		return storeErr("create flight", err)
	}
	return nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.getByID(ctx, id, "")
}

func (r *PGFlightRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.getByID(ctx, id, " FOR UPDATE")
}

func (r *PGFlightRepository) getByID(ctx context.Context, id int64, suffix string) (*domain.Flight, error) {
	row := querier(ctx, r.db).QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`+suffix, id)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "flight"}
		}
		return nil, storeErr("get flight", err)
	}
	return &f, nil
}

func (r *PGFlightRepository) Search(ctx context.Context, q SearchQuery) ([]domain.Flight, int, error) {
	db := querier(ctx, r.db)

	const where = `WHERE UPPER(from_city) = UPPER($1) AND UPPER(to_city) = UPPER($2)
		AND flight_date >= $3 AND flight_date <= $4
		AND (capacity - booked_seats) >= $5`

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM flights `+where,
		q.Origin, q.Destination, q.DateFrom, q.DateTo, q.Passengers).Scan(&total); err != nil {
		return nil, 0, storeErr("count flights", err)
	}

	rows, err := db.Query(ctx, `SELECT `+flightColumns+` FROM flights `+where+`
		ORDER BY flight_date, price
		LIMIT $6 OFFSET $7`,
		q.Origin, q.Destination, q.DateFrom, q.DateTo, q.Passengers, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, storeErr("search flights", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, 0, storeErr("scan flight", err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeErr("search flights", err)
	}
	return flights, total, nil
}

func (r *PGFlightRepository) IncrementBookedSeats(ctx context.Context, id int64, passengers int) error {
	res, err := querier(ctx, r.db).Exec(ctx,
		`UPDATE flights SET booked_seats = booked_seats + $1 WHERE id=$2`, passengers, id)
	if err != nil {
		return storeErr("increment booked seats", err)
	}
	if res.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "flight"}
	}
	return nil
}

func (r *PGFlightRepository) ListCities(ctx context.Context) ([]string, error) {
	rows, err := querier(ctx, r.db).Query(ctx,
		`SELECT DISTINCT from_city AS city FROM flights UNION SELECT DISTINCT to_city FROM flights ORDER BY 1`)
	if err != nil {
		return nil, storeErr("list cities", err)
	}
	defer rows.Close()
	return collectStrings(rows)
}

func (r *PGFlightRepository) ListAirlineCodes(ctx context.Context) ([]string, error) {
	rows, err := querier(ctx, r.db).Query(ctx,
		`SELECT DISTINCT substring(flight_code FROM '^[A-Za-z]+') FROM flights ORDER BY 1`)
	if err != nil {
		return nil, storeErr("list airline codes", err)
	}
	defer rows.Close()
	return collectStrings(rows)
}

func collectStrings(rows pgx.Rows) ([]string, error) {
	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, storeErr("scan row", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
