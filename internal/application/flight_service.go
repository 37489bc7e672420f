package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/flight"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/loyalty"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-airline-reservation/internal/infrastructure/kafka"
	rediscache "github.com/sanosuguru/go-airline-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-airline-reservation/internal/pkg/logger"
)

// FlightService はフライト・機材管理のユースケースを提供する
type FlightService struct {
	txManager   transaction.Manager
	flightRepo  flight.Repository
	seatRepo    seat.Repository
	bookingRepo booking.Repository
	loyaltyRepo loyalty.Repository

	cache    *rediscache.AvailabilityCache
	producer *kafka.Producer
}

type FlightServiceOption func(*FlightService)

func WithFlightCache(cache *rediscache.AvailabilityCache) FlightServiceOption {
	return func(s *FlightService) { s.cache = cache }
}

func WithFlightEventProducer(producer *kafka.Producer) FlightServiceOption {
	return func(s *FlightService) { s.producer = producer }
}

func NewFlightService(
	tm transaction.Manager,
	fr flight.Repository,
	sr seat.Repository,
	br booking.Repository,
	lr loyalty.Repository,
	opts ...FlightServiceOption,
) *FlightService {
	s := &FlightService{
		txManager:   tm,
		flightRepo:  fr,
		seatRepo:    sr,
		bookingRepo: br,
		loyaltyRepo: lr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateAircraftInput struct {
	Model           string
	Manufacturer    string
	EconomySeats    int
	BusinessSeats   int
	FirstClassSeats int
}

func (s *FlightService) CreateAircraft(ctx context.Context, input CreateAircraftInput) (*flight.Aircraft, error) {
	a := flight.NewAircraft(input.Model, input.Manufacturer, input.EconomySeats, input.BusinessSeats, input.FirstClassSeats)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.flightRepo.CreateAircraft(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *FlightService) GetAircraft(ctx context.Context, id int64) (*flight.Aircraft, error) {
	return s.flightRepo.GetAircraft(ctx, id)
}

func (s *FlightService) ListAircraft(ctx context.Context) ([]*flight.Aircraft, error) {
	return s.flightRepo.ListAircraft(ctx)
}

type CreateFlightInput struct {
	FlightNumber  string
	AircraftID    int64
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	PriceEconomy  float64
	PriceBusiness float64
	PriceFirst    float64
}

// CreateFlight はフライトを作成し機材の座席配置から座席行を生成する
// フライト行と座席行の挿入は同一トランザクションで行う
func (s *FlightService) CreateFlight(ctx context.Context, input CreateFlightInput) (*flight.Flight, error) {
	aircraft, err := s.flightRepo.GetAircraft(ctx, input.AircraftID)
	if err != nil {
		return nil, err
	}

	f := flight.NewFlight(input.FlightNumber, aircraft, input.Origin, input.Destination,
		input.DepartureTime, input.ArrivalTime, input.PriceEconomy, input.PriceBusiness, input.PriceFirst)
	if err := f.Validate(); err != nil {
		return nil, err
	}

	err = transaction.Run(ctx, s.txManager, transaction.LevelDefault, func(tx transaction.Tx) error {
		if err := s.flightRepo.Create(ctx, tx, f); err != nil {
			return err
		}
		seats := seat.GenerateLayout(f.ID, aircraft.EconomySeats, aircraft.BusinessSeats, aircraft.FirstClassSeats)
		return s.seatRepo.CreateBulk(ctx, tx, seats)
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FlightService) GetFlight(ctx context.Context, id int64) (*flight.Flight, error) {
	return s.flightRepo.GetByID(ctx, id)
}

func (s *FlightService) GetFlightSeats(ctx context.Context, flightID int64) ([]*seat.Seat, error) {
	if _, err := s.flightRepo.GetByID(ctx, flightID); err != nil {
		return nil, err
	}
	return s.seatRepo.GetByFlightID(ctx, flightID)
}

func (s *FlightService) SearchFlights(ctx context.Context, criteria flight.SearchCriteria) ([]*flight.Flight, error) {
	if criteria.Limit <= 0 {
		criteria.Limit = 20
	}
	return s.flightRepo.Search(ctx, criteria)
}

func (s *FlightService) ListFlights(ctx context.Context, limit, offset int) ([]*flight.Flight, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.flightRepo.List(ctx, limit, offset)
}

// GetAvailability はクラス別の空席数を返す
// キャッシュがあればキャッシュを優先し、ミス時にDBから数えて埋め直す
func (s *FlightService) GetAvailability(ctx context.Context, flightID int64, class seat.Class) (int, error) {
	if !class.Valid() {
		return 0, seat.ErrInvalidSeatClass
	}
	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx, flightID, class)
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, rediscache.ErrCacheMiss) {
			logger.Warn("空席キャッシュの取得に失敗",
				zap.Int64("flight_id", flightID),
				zap.Error(err),
			)
		}
	}

	if _, err := s.flightRepo.GetByID(ctx, flightID); err != nil {
		return 0, err
	}
	count, err := s.seatRepo.CountAvailable(ctx, flightID, class)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.SetAvailableCount(ctx, flightID, class, count); err != nil {
			logger.Warn("空席キャッシュの保存に失敗",
				zap.Int64("flight_id", flightID),
				zap.Error(err),
			)
		}
	}
	return count, nil
}

// CancelFlight はフライトを欠航にし、有効な予約をすべて補償付きでキャンセルする
// フライト状態の更新と全予約の補償は単一のSERIALIZABLEトランザクションで行う
func (s *FlightService) CancelFlight(ctx context.Context, flightID int64) (*flight.Flight, error) {
	var (
		f         *flight.Flight
		cancelled []*booking.Booking
	)
	err := transaction.Run(ctx, s.txManager, transaction.LevelSerializable, func(tx transaction.Tx) error {
		var err error
		f, err = s.flightRepo.GetByIDTx(ctx, tx, flightID)
		if err != nil {
			return err
		}
		if f.Status != flight.StatusScheduled {
			return flight.ErrFlightNotBookable
		}
		if err := s.flightRepo.UpdateStatus(ctx, tx, flightID, flight.StatusCancelled); err != nil {
			return err
		}
		f.Status = flight.StatusCancelled

		bookings, err := s.bookingRepo.ListActiveByFlightTx(ctx, tx, flightID)
		if err != nil {
			return err
		}
		for _, b := range bookings {
			wasConfirmed := b.Status == booking.StatusConfirmed
			if err := s.bookingRepo.UpdateStatus(ctx, tx, b.ID, booking.StatusCancelled); err != nil {
				return err
			}
			b.Status = booking.StatusCancelled
			if err := compensateSeat(ctx, tx, s.seatRepo, s.flightRepo, b); err != nil {
				return err
			}
			if wasConfirmed {
				if err := s.deductEarnedPoints(ctx, tx, b); err != nil {
					return err
				}
			}
			cancelled = append(cancelled, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateFlight(ctx, flightID)
	for _, b := range cancelled {
		publishBookingEvent(ctx, s.producer, kafka.EventBookingCancelled, b)
	}
	return f, nil
}

func (s *FlightService) deductEarnedPoints(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	account, err := s.loyaltyRepo.GetByPassengerTx(ctx, tx, b.PassengerID)
	if err != nil {
		if errors.Is(err, loyalty.ErrAccountNotFound) {
			return nil
		}
		return err
	}
	account.DeductPoints(loyalty.PointsEarned(b.Price, b.SeatClass, account.Tier))
	return s.loyaltyRepo.UpdateTx(ctx, tx, account)
}

func (s *FlightService) invalidateFlight(ctx context.Context, flightID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlight(ctx, flightID); err != nil {
		logger.Warn("空席キャッシュの無効化に失敗",
			zap.Int64("flight_id", flightID),
			zap.Error(err),
		)
	}
}

