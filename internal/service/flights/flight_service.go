package flights

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aviatio/flightdeck/internal/cache"
	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/aviatio/flightdeck/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// flexibleDateWindowDays widens the search window on both sides when the
// caller asks for flexible dates.
const flexibleDateWindowDays = 3

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var (
	searchCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flight_search_cache_hits_total",
		Help: "The total number of flight searches served from cache",
	})
	searchCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flight_search_cache_misses_total",
		Help: "The total number of flight searches that hit the database",
	})
)

type SearchParams struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	ReturnDate    *time.Time
	Passengers    int
	FlexibleDates bool
	DirectOnly    bool
	Page          int
	PageSize      int
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type PagedResult struct {
	Data       []domain.Flight `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// SearchResult is a one-way page, or an outbound/return pair when a return
// date was supplied. The one-way form marshals flat, matching the wire shape
// cached and served verbatim on hits.
type SearchResult struct {
	Outbound *PagedResult
	Return   *PagedResult
}

func (r SearchResult) MarshalJSON() ([]byte, error) {
	if r.Return == nil {
		return json.Marshal(r.Outbound)
	}
	return json.Marshal(struct {
		Outbound *PagedResult `json:"outbound"`
		Return   *PagedResult `json:"return"`
	}{r.Outbound, r.Return})
}

func (r *SearchResult) UnmarshalJSON(data []byte) error {
	var pair struct {
		Outbound *PagedResult `json:"outbound"`
		Return   *PagedResult `json:"return"`
	}
	if err := json.Unmarshal(data, &pair); err == nil && pair.Outbound != nil {
		r.Outbound, r.Return = pair.Outbound, pair.Return
		return nil
	}
	var single PagedResult
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	r.Outbound, r.Return = &single, nil
	return nil
}

type CreateFlightInput struct {
	Code        string
	Origin      string
	Destination string
	Date        time.Time
	Duration    string
	Price       float64
	Capacity    int
}

type FlightUseCase interface {
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	ListAirports(ctx context.Context) ([]string, error)
	ListAirlines(ctx context.Context) ([]string, error)
}

// Predictor estimates a price for a new flight when the administrator does
// not supply one.
type Predictor interface {
	PredictPrice(ctx context.Context, duration, origin, destination string, date time.Time) (float64, error)
}

type TTLs struct {
	Search    time.Duration
	Flight    time.Duration
	Reference time.Duration
}

type FlightService struct {
	repo      repository.FlightRepository
	cache     cache.Cache
	predictor Predictor
	ttls      TTLs
	logger    *zap.Logger
}

func NewFlightService(repo repository.FlightRepository, c cache.Cache, predictor Predictor, ttls TTLs, logger *zap.Logger) *FlightService {
	return &FlightService{repo: repo, cache: c, predictor: predictor, ttls: ttls, logger: logger}
}

func (s *FlightService) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Origin == "" || params.Destination == "" || params.DepartureDate.IsZero() {
		return nil, domain.NewValidationError("missing required search parameters")
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}
	if params.Passengers < 1 {
		params.Passengers = 1
	}

	key := searchKey(params)
	if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
		var cached SearchResult
		if err := json.Unmarshal(data, &cached); err == nil {
			searchCacheHits.Inc()
			return &cached, nil
		}
	}
	searchCacheMisses.Inc()

	outbound, err := s.searchLeg(ctx, params.Origin, params.Destination, params.DepartureDate, params)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{Outbound: outbound}
	if params.ReturnDate != nil {
		ret, err := s.searchLeg(ctx, params.Destination, params.Origin, *params.ReturnDate, params)
		if err != nil {
			return nil, err
		}
		result.Return = ret
	}

	if data, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttls.Search); err != nil {
			s.logger.Warn("cache search results", zap.Error(err))
		}
	}
	return result, nil
}

func (s *FlightService) searchLeg(ctx context.Context, origin, destination string, date time.Time, params SearchParams) (*PagedResult, error) {
	from, to := date, date
	if params.FlexibleDates {
		from = date.AddDate(0, 0, -flexibleDateWindowDays)
		to = date.AddDate(0, 0, flexibleDateWindowDays)
	}

	flights, total, err := s.repo.Search(ctx, repository.SearchQuery{
		Origin:      origin,
		Destination: destination,
		DateFrom:    from,
		DateTo:      to,
		Passengers:  params.Passengers,
		Limit:       params.PageSize,
		Offset:      (params.Page - 1) * params.PageSize,
	})
	if err != nil {
		return nil, err
	}

	if params.DirectOnly {
		direct := make([]domain.Flight, 0, len(flights))
		for _, f := range flights {
			if f.IsDirect() {
				direct = append(direct, f)
			}
		}
		flights = direct
		// The direct filter runs after the page was fetched, so the reported
		// total reflects the filtered page, not the full match count.
		total = len(direct)
	}

	return &PagedResult{
		Data: flights,
		Pagination: Pagination{
			Page:       params.Page,
			Limit:      params.PageSize,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(params.PageSize))),
		},
	}, nil
}

// searchKey canonicalizes the parameter tuple; city matching is
// case-insensitive, so the key has to be too.
func searchKey(p SearchParams) string {
	ret := "none"
	if p.ReturnDate != nil {
		ret = p.ReturnDate.Format(time.DateOnly)
	}
	return fmt.Sprintf("search:%s:%s:%s:%s:%d:%t:%t:%d:%d",
		strings.ToUpper(p.Origin), strings.ToUpper(p.Destination),
		p.DepartureDate.Format(time.DateOnly), ret,
		p.Passengers, p.FlexibleDates, p.DirectOnly, p.Page, p.PageSize)
}

func FlightKey(id int64) string {
	return fmt.Sprintf("flight:%d", id)
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	key := FlightKey(id)
	if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
		var f domain.Flight
		if err := json.Unmarshal(data, &f); err == nil {
			return &f, nil
		}
	}

	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(flight); err == nil {
		_ = s.cache.Set(ctx, key, data, s.ttls.Flight)
	}
	return flight, nil
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	switch {
	case input.Code == "", input.Origin == "", input.Destination == "", input.Duration == "":
		return nil, domain.NewValidationError("missing required fields")
	case input.Date.IsZero():
		return nil, domain.NewValidationError("flight date is required")
	case input.Capacity <= 0:
		return nil, domain.NewValidationError("capacity must be positive")
	case input.Price < 0:
		return nil, domain.NewValidationError("price must not be negative")
	}

	if input.Price == 0 {
		if s.predictor == nil {
			return nil, domain.NewValidationError("price is required")
		}
		price, err := s.predictor.PredictPrice(ctx, input.Duration, input.Origin, input.Destination, input.Date)
		if err != nil {
			return nil, err
		}
		input.Price = price
	}

	flight := &domain.Flight{
		Code:        input.Code,
		Origin:      input.Origin,
		Destination: input.Destination,
		Date:        input.Date,
		Duration:    input.Duration,
		Price:       input.Price,
		Capacity:    input.Capacity,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}

	// New inventory invalidates every cached search page.
	if err := s.cache.DeletePattern(ctx, "search:*"); err != nil {
		s.logger.Warn("invalidate search cache", zap.Error(err))
	}
	return flight, nil
}

func (s *FlightService) ListAirports(ctx context.Context) ([]string, error) {
	return s.cachedList(ctx, "airports:list", s.repo.ListCities)
}

func (s *FlightService) ListAirlines(ctx context.Context) ([]string, error) {
	return s.cachedList(ctx, "airlines:list", s.repo.ListAirlineCodes)
}

func (s *FlightService) cachedList(ctx context.Context, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
		var list []string
		if err := json.Unmarshal(data, &list); err == nil {
			return list, nil
		}
	}

	list, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(list); err == nil {
		_ = s.cache.Set(ctx, key, data, s.ttls.Reference)
	}
	return list, nil
}

var _ FlightUseCase = (*FlightService)(nil)
