package worker

import (
	"context"
	"math"
	"time"

	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/aviatio/flightdeck/internal/email"
	"github.com/aviatio/flightdeck/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var reconciledCredits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "loyalty_credits_reconciled_total",
	Help: "The total number of flight-completion credits posted by the reconciler",
})

// Reconciler posts loyalty credits for flights that have flown and sends the
// follow-up emails.
type Reconciler struct {
	tx      repository.Transactor
	loyalty repository.LoyaltyRepository
	mailer  *email.Sender
	logger  *zap.Logger
}

func NewReconciler(tx repository.Transactor, loyalty repository.LoyaltyRepository, mailer *email.Sender, logger *zap.Logger) *Reconciler {
	return &Reconciler{tx: tx, loyalty: loyalty, mailer: mailer, logger: logger}
}

// ProcessCompletedFlights credits members for yesterday's flights that were
// not paid with points and have no ledger row yet. Each booking is credited
// in its own transaction so one failure doesn't block the rest.
func (r *Reconciler) ProcessCompletedFlights(ctx context.Context) error {
	yesterday := time.Now().AddDate(0, 0, -1).Truncate(24 * time.Hour)

	items, err := r.loyalty.ListUnreconciled(ctx, yesterday)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	r.logger.Info("reconciling completed flights",
		zap.String("flight_date", yesterday.Format(time.DateOnly)),
		zap.Int("bookings", len(items)))

	for _, item := range items {
		if err := r.creditBooking(ctx, item); err != nil {
			r.logger.Error("credit completed flight",
				zap.String("member_number", item.MemberNumber),
				zap.Int64("flight_id", item.FlightID),
				zap.Error(err))
			continue
		}
		reconciledCredits.Inc()
	}
	return nil
}

func (r *Reconciler) creditBooking(ctx context.Context, item repository.ReconcileItem) error {
	points := int(math.Floor(item.Price))
	flightID := item.FlightID

	err := r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.loyalty.AdjustBalance(ctx, item.MemberNumber, points); err != nil {
			return err
		}
		return r.loyalty.CreateTransaction(ctx, &domain.LoyaltyTransaction{
			MemberNumber: item.MemberNumber,
			FlightID:     &flightID,
			Points:       points,
			Date:         time.Now(),
			Type:         domain.TransactionFlightCompleted,
		})
	})
	if err != nil {
		return err
	}

	if err := r.mailer.SendMilesCredited(ctx, item.Email, item.FirstName, points, item.Balance+points); err != nil {
		r.logger.Warn("send miles credited email",
			zap.String("member_number", item.MemberNumber),
			zap.Error(err))
		return nil
	}
	return r.loyalty.MarkTransactionEmailSent(ctx, item.MemberNumber, item.FlightID)
}

// SendPendingWelcomeEmails is the safety net behind the event stream: any
// member still flagged unwelcomed gets their email here.
func (r *Reconciler) SendPendingWelcomeEmails(ctx context.Context) error {
	members, err := r.loyalty.ListUnwelcomedMembers(ctx)
	if err != nil {
		return err
	}
	for _, m := range members {
		if err := r.mailer.SendWelcome(ctx, m.Email, m.FirstName); err != nil {
			r.logger.Warn("send welcome email",
				zap.String("member_number", m.MemberNumber),
				zap.Error(err))
			continue
		}
		if err := r.loyalty.MarkWelcomeEmailSent(ctx, m.MemberNumber); err != nil {
			r.logger.Error("mark welcome email sent",
				zap.String("member_number", m.MemberNumber),
				zap.Error(err))
		}
	}
	return nil
}
