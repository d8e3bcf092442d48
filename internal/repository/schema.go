package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creation is idempotent so repeated startups are harmless.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS flights (
		id BIGSERIAL PRIMARY KEY,
		flight_code VARCHAR(50) UNIQUE NOT NULL,
		from_city VARCHAR(100) NOT NULL,
		to_city VARCHAR(100) NOT NULL,
		flight_date DATE NOT NULL,
		duration VARCHAR(20) NOT NULL,
		price NUMERIC(10, 2) NOT NULL,
		capacity INT NOT NULL,
		booked_seats INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS loyalty_members (
		id BIGSERIAL PRIMARY KEY,
		member_number VARCHAR(50) UNIQUE NOT NULL,
		user_id VARCHAR(255) UNIQUE NOT NULL,
		email VARCHAR(255) NOT NULL,
		first_name VARCHAR(255) NOT NULL,
		last_name VARCHAR(255) NOT NULL,
		date_of_birth DATE,
		points_balance INT NOT NULL DEFAULT 0,
		welcome_email_sent BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGSERIAL PRIMARY KEY,
		flight_id BIGINT REFERENCES flights(id),
		user_id VARCHAR(255) NOT NULL,
		member_number VARCHAR(50),
		passenger_name VARCHAR(255) NOT NULL,
		passenger_surname VARCHAR(255) NOT NULL,
		passenger_dob DATE,
		paid_with_points BOOLEAN NOT NULL DEFAULT FALSE,
		points_used INT NOT NULL DEFAULT 0,
		booking_date TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS loyalty_transactions (
		id BIGSERIAL PRIMARY KEY,
		member_number VARCHAR(50) REFERENCES loyalty_members(member_number),
		flight_id BIGINT REFERENCES flights(id),
		points INT NOT NULL,
		transaction_date DATE NOT NULL,
		transaction_type VARCHAR(50) NOT NULL,
		email_sent BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
