package domain

import "time"

type Booking struct {
	ID                  int64      `json:"id"`
	FlightID            int64      `json:"flight_id"`
	UserID              string     `json:"user_id"`
	LoyaltyMemberNumber *string    `json:"member_number,omitempty"`
	PassengerName       string     `json:"passenger_name"`
	PassengerSurname    string     `json:"passenger_surname"`
	PassengerDOB        *time.Time `json:"passenger_dob,omitempty"`
	PaidWithPoints      bool       `json:"paid_with_points"`
	PointsUsed          int        `json:"points_used"`
	BookedAt            time.Time  `json:"booking_date"`
}
