package domain

import (
	"fmt"
	"math/rand"
	"time"
)

type LoyaltyMember struct {
	ID               int64      `json:"id"`
	MemberNumber     string     `json:"member_number"`
	UserID           string     `json:"user_id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	PointsBalance    int        `json:"points_balance"`
	WelcomeEmailSent bool       `json:"welcome_email_sent"`
	CreatedAt        time.Time  `json:"created_at"`
}

type TransactionType string

const (
	TransactionFlightCompleted TransactionType = "FLIGHT_COMPLETED"
	TransactionExternalAirline TransactionType = "EXTERNAL_AIRLINE"
)

type LoyaltyTransaction struct {
	ID           int64           `json:"id"`
	MemberNumber string          `json:"member_number"`
	FlightID     *int64          `json:"flight_id,omitempty"`
	Points       int             `json:"points"`
	Date         time.Time       `json:"transaction_date"`
	Type         TransactionType `json:"transaction_type"`
	EmailSent    bool            `json:"email_sent"`
}

// NewMemberNumber generates a member number from the current time plus a
// random suffix so concurrent enrollments don't collide.
func NewMemberNumber() string {
	return fmt.Sprintf("MS%d%03d", time.Now().UnixMilli(), rand.Intn(1000))
}
