package booking

import (
	"context"
	"math"
	"time"

	"github.com/aviatio/flightdeck/internal/cache"
	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/aviatio/flightdeck/internal/kafka"
	"github.com/aviatio/flightdeck/internal/repository"
	"github.com/aviatio/flightdeck/internal/service/flights"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	bookingsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_committed_total",
		Help: "The total number of bookings committed",
	})
	bookingsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_rejected_total",
		Help: "The total number of booking attempts rejected",
	})
)

type BookFlightInput struct {
	FlightID         int64
	UserID           string
	Passengers       int
	PassengerName    string
	PassengerSurname string
	PassengerDOB     *time.Time
	Email            string
	MemberNumber     string
	BecomeMember     bool
	UsePoints        bool
}

type BookingResult struct {
	Booking      *domain.Booking `json:"booking"`
	Flight       *domain.Flight  `json:"flight"`
	MemberNumber *string         `json:"member_number"`
	IsNewMember  bool            `json:"is_new_member"`
}

type UserBookingsPage struct {
	Data       []repository.UserBooking `json:"data"`
	Pagination flights.Pagination       `json:"pagination"`
}

type BookingUseCase interface {
	BookFlight(ctx context.Context, input BookFlightInput) (*BookingResult, error)
	ListUserBookings(ctx context.Context, userID string, page, limit int) (*UserBookingsPage, error)
}

// Producer is the notification channel: best-effort, never load-bearing for
// the booking itself.
type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	tx           repository.Transactor
	flightRepo   repository.FlightRepository
	bookingRepo  repository.BookingRepository
	loyaltyRepo  repository.LoyaltyRepository
	cache        cache.Cache
	producer     Producer
	welcomeTopic string
	logger       *zap.Logger
}

func NewBookingService(
	tx repository.Transactor,
	flightRepo repository.FlightRepository,
	bookingRepo repository.BookingRepository,
	loyaltyRepo repository.LoyaltyRepository,
	c cache.Cache,
	producer Producer,
	welcomeTopic string,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:           tx,
		flightRepo:   flightRepo,
		bookingRepo:  bookingRepo,
		loyaltyRepo:  loyaltyRepo,
		cache:        c,
		producer:     producer,
		welcomeTopic: welcomeTopic,
		logger:       logger,
	}
}

// BookFlight runs the whole booking as one transaction: lock the flight row,
// check capacity, resolve the loyalty member, insert the booking, bump the
// seat count. Any stage failing rolls the whole thing back.
func (s *BookingService) BookFlight(ctx context.Context, input BookFlightInput) (*BookingResult, error) {
	if input.UserID == "" {
		return nil, domain.NewValidationError("userId is required")
	}
	if input.PassengerName == "" || input.PassengerSurname == "" {
		return nil, domain.NewValidationError("passenger name and surname are required")
	}
	if input.Passengers < 1 {
		input.Passengers = 1
	}

	var (
		result  *BookingResult
		welcome *kafka.WelcomeEvent
	)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		flight, err := s.flightRepo.GetByIDForUpdate(ctx, input.FlightID)
		if err != nil {
			return err
		}

		if flight.BookedSeats+input.Passengers > flight.Capacity {
			return &domain.CapacityError{Requested: input.Passengers, Available: flight.AvailableSeats()}
		}

		var memberNumber *string
		isNewMember := false
		pointsUsed := 0

		if input.BecomeMember || input.MemberNumber != "" || input.UsePoints {
			if input.MemberNumber == "" && input.BecomeMember {
				number := domain.NewMemberNumber()
				email := input.Email
				if email == "" {
					email = input.UserID + "@example.com"
				}
				member := &domain.LoyaltyMember{
					MemberNumber: number,
					UserID:       input.UserID,
					Email:        email,
					FirstName:    input.PassengerName,
					LastName:     input.PassengerSurname,
					DateOfBirth:  input.PassengerDOB,
				}
				if err := s.loyaltyRepo.CreateMember(ctx, member); err != nil {
					return err
				}
				memberNumber = &number
				isNewMember = true
				welcome = &kafka.WelcomeEvent{
					MemberNumber: number,
					Email:        email,
					Name:         input.PassengerName + " " + input.PassengerSurname,
				}
			} else {
				member, err := s.loyaltyRepo.GetMemberByNumber(ctx, input.MemberNumber)
				if err != nil {
					return err
				}
				if input.UsePoints {
					if float64(member.PointsBalance) < flight.Price {
						return &domain.InsufficientPointsError{
							Balance:  member.PointsBalance,
							Required: int(math.Floor(flight.Price)),
						}
					}
					pointsUsed = int(math.Floor(flight.Price))
					// The debit mutates the balance directly; no ledger row
					// is written for spends.
					if err := s.loyaltyRepo.AdjustBalance(ctx, member.MemberNumber, -pointsUsed); err != nil {
						return err
					}
				}
				memberNumber = &member.MemberNumber
			}
		}

		booking := &domain.Booking{
			FlightID:            flight.ID,
			UserID:              input.UserID,
			LoyaltyMemberNumber: memberNumber,
			PassengerName:       input.PassengerName,
			PassengerSurname:    input.PassengerSurname,
			PassengerDOB:        input.PassengerDOB,
			PaidWithPoints:      input.UsePoints,
			PointsUsed:          pointsUsed,
		}
		if err := s.bookingRepo.Create(ctx, booking); err != nil {
			return err
		}
		if err := s.flightRepo.IncrementBookedSeats(ctx, flight.ID, input.Passengers); err != nil {
			return err
		}

		updated := *flight
		updated.BookedSeats += input.Passengers
		result = &BookingResult{
			Booking:      booking,
			Flight:       &updated,
			MemberNumber: memberNumber,
			IsNewMember:  isNewMember,
		}
		return nil
	})
	if err != nil {
		bookingsRejected.Inc()
		return nil, err
	}
	bookingsCommitted.Inc()

	// Seat availability changed; every cached search page is suspect.
	if err := s.cache.Delete(ctx, flights.FlightKey(input.FlightID)); err != nil {
		s.logger.Warn("invalidate flight cache", zap.Error(err))
	}
	if err := s.cache.DeletePattern(ctx, "search:*"); err != nil {
		s.logger.Warn("invalidate search cache", zap.Error(err))
	}

	if welcome != nil && s.producer != nil && s.welcomeTopic != "" {
		// The booking is committed; a dead notification channel only costs
		// the email.
		if err := s.producer.Publish(ctx, s.welcomeTopic, welcome.MemberNumber, welcome); err != nil {
			s.logger.Warn("enqueue welcome email",
				zap.String("member_number", welcome.MemberNumber),
				zap.Error(err))
		}
	}

	return result, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID string, page, limit int) (*UserBookingsPage, error) {
	if userID == "" {
		return nil, domain.NewValidationError("userId is required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	bookings, total, err := s.bookingRepo.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &UserBookingsPage{
		Data: bookings,
		Pagination: flights.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	}, nil
}

var _ BookingUseCase = (*BookingService)(nil)
