package domain

import (
	"regexp"
	"strconv"
	"time"
)

type Flight struct {
	ID          int64     `json:"id"`
	Code        string    `json:"flight_code"`
	Origin      string    `json:"from_city"`
	Destination string    `json:"to_city"`
	Date        time.Time `json:"flight_date"`
	Duration    string    `json:"duration"`
	Price       float64   `json:"price"`
	Capacity    int       `json:"capacity"`
	BookedSeats int       `json:"booked_seats"`
	CreatedAt   time.Time `json:"created_at"`
}

func (f Flight) AvailableSeats() int {
	return f.Capacity - f.BookedSeats
}

// directFlightMaxHours is the duration threshold under which a flight is
// assumed to be direct. There is no stops column; duration is the only signal.
const directFlightMaxHours = 6.0

var (
	durationHoursRe   = regexp.MustCompile(`(\d+)h`)
	durationMinutesRe = regexp.MustCompile(`(\d+)m`)
)

// DurationHours parses duration strings like "2h 30m" or "5h" into hours.
// Unparseable input yields 0.
func DurationHours(duration string) float64 {
	var hours, minutes int
	if m := durationHoursRe.FindStringSubmatch(duration); m != nil {
		hours, _ = strconv.Atoi(m[1])
	}
	if m := durationMinutesRe.FindStringSubmatch(duration); m != nil {
		minutes, _ = strconv.Atoi(m[1])
	}
	return float64(hours) + float64(minutes)/60
}

// IsDirect reports whether the flight is likely direct. Flights without
// duration info are assumed direct.
func (f Flight) IsDirect() bool {
	if f.Duration == "" {
		return true
	}
	return DurationHours(f.Duration) < directFlightMaxHours
}
