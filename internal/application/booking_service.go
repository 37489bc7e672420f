package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/flight"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/loyalty"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/passenger"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-airline-reservation/internal/infrastructure/kafka"
	rediscache "github.com/sanosuguru/go-airline-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-airline-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-airline-reservation/internal/pkg/metrics"
)

// maxReferenceAttempts は予約番号の再採番の上限
const maxReferenceAttempts = 5

// BookingService は座席予約のユースケースを提供する
type BookingService struct {
	txManager     transaction.Manager
	bookingRepo   booking.Repository
	flightRepo    flight.Repository
	seatRepo      seat.Repository
	passengerRepo passenger.Repository
	loyaltyRepo   loyalty.Repository

	// オプショナルな協調コンポーネント（nilでも動作する）
	cache    *rediscache.AvailabilityCache
	producer *kafka.Producer
	metrics  *metrics.Metrics
}

type BookingServiceOption func(*BookingService)

func WithAvailabilityCache(cache *rediscache.AvailabilityCache) BookingServiceOption {
	return func(s *BookingService) { s.cache = cache }
}

func WithEventProducer(producer *kafka.Producer) BookingServiceOption {
	return func(s *BookingService) { s.producer = producer }
}

func WithBookingMetrics(m *metrics.Metrics) BookingServiceOption {
	return func(s *BookingService) { s.metrics = m }
}

func NewBookingService(
	tm transaction.Manager,
	br booking.Repository,
	fr flight.Repository,
	sr seat.Repository,
	pr passenger.Repository,
	lr loyalty.Repository,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		txManager:     tm,
		bookingRepo:   br,
		flightRepo:    fr,
		seatRepo:      sr,
		passengerRepo: pr,
		loyaltyRepo:   lr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ReserveSeatInput struct {
	PassengerID int64
	FlightID    int64
	Class       seat.Class
	// SeatNumber が空の場合は同クラスの最も若い番号の空席を自動割当する
	SeatNumber string
}

// ReserveSeat は座席を確保しpending状態の予約を作成する
// 座席の確保・空席カウンタの減算・予約行の挿入は単一のSERIALIZABLEトランザクションで行い、
// 直列化異常が起きた場合は何も書き込まずに ErrSerializationConflict を返す（リトライは呼び出し側の責務）
func (s *BookingService) ReserveSeat(ctx context.Context, input ReserveSeatInput) (*booking.Booking, error) {
	if !input.Class.Valid() {
		return nil, booking.ErrInvalidSeatClass
	}

	start := time.Now()
	var b *booking.Booking
	err := transaction.Run(ctx, s.txManager, transaction.LevelSerializable, func(tx transaction.Tx) error {
		exists, err := s.passengerRepo.ExistsTx(ctx, tx, input.PassengerID)
		if err != nil {
			return err
		}
		if !exists {
			return passenger.ErrPassengerNotFound
		}

		fl, err := s.flightRepo.GetByIDTx(ctx, tx, input.FlightID)
		if err != nil {
			return err
		}
		if !fl.IsBookable() {
			return flight.ErrFlightNotBookable
		}
		if fl.AvailableFor(input.Class) <= 0 {
			return flight.ErrNoAvailability
		}

		st, err := s.reserveSeatRow(ctx, tx, input)
		if err != nil {
			return err
		}

		if err := s.flightRepo.DecrementAvailability(ctx, tx, input.FlightID, input.Class); err != nil {
			return err
		}

		ref, err := s.uniqueReference(ctx, tx)
		if err != nil {
			return err
		}

		b = booking.NewBooking(input.PassengerID, input.FlightID, st.ID, input.Class, fl.BasePriceFor(input.Class))
		b.Reference = ref
		if err := b.Validate(); err != nil {
			return err
		}
		return s.bookingRepo.Create(ctx, tx, b)
	})
	s.observeTx("reserve", start)
	if err != nil {
		s.countBooking(bookingOutcome(err))
		s.countConflict("reserve", err)
		return nil, err
	}

	s.countBooking("created")
	s.invalidateAvailability(ctx, input.FlightID, input.Class)
	publishBookingEvent(ctx, s.producer, kafka.EventBookingCreated, b)
	return b, nil
}

// reserveSeatRow は座席行にテストアンドセットを適用する
func (s *BookingService) reserveSeatRow(ctx context.Context, tx transaction.Tx, input ReserveSeatInput) (*seat.Seat, error) {
	if input.SeatNumber == "" {
		return s.seatRepo.ReserveNextAvailable(ctx, tx, input.FlightID, input.Class)
	}
	st, err := s.seatRepo.GetByNumberTx(ctx, tx, input.FlightID, input.SeatNumber)
	if err != nil {
		return nil, err
	}
	if st.Class != input.Class {
		return nil, seat.ErrSeatClassMismatch
	}
	if err := s.seatRepo.Reserve(ctx, tx, st.ID); err != nil {
		return nil, err
	}
	return st, nil
}

// uniqueReference は未使用の予約番号を採番する
// INSERTの一意制約違反はトランザクション全体を中断させるため、事前に存在確認を行う
func (s *BookingService) uniqueReference(ctx context.Context, tx transaction.Tx) (string, error) {
	for i := 0; i < maxReferenceAttempts; i++ {
		ref := booking.NewReference()
		exists, err := s.bookingRepo.ReferenceExistsTx(ctx, tx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", booking.ErrReferenceConflict
}

// CancelBooking は予約をキャンセルし座席と空席カウンタを戻す
// confirmed済みの予約は獲得ポイントも減算する（ティアは維持）
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64) (*booking.Booking, error) {
	start := time.Now()
	var b *booking.Booking
	err := transaction.Run(ctx, s.txManager, transaction.LevelSerializable, func(tx transaction.Tx) error {
		var err error
		b, err = s.bookingRepo.GetByIDTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		wasConfirmed := b.Status == booking.StatusConfirmed
		if err := b.Cancel(); err != nil {
			return err
		}
		if err := compensateSeat(ctx, tx, s.seatRepo, s.flightRepo, b); err != nil {
			return err
		}
		if err := s.bookingRepo.UpdateStatus(ctx, tx, b.ID, booking.StatusCancelled); err != nil {
			return err
		}
		if wasConfirmed {
			if err := s.deductEarnedPoints(ctx, tx, b); err != nil {
				return err
			}
		}
		return nil
	})
	s.observeTx("cancel", start)
	if err != nil {
		s.countConflict("cancel", err)
		return nil, err
	}

	s.invalidateAvailability(ctx, b.FlightID, b.SeatClass)
	publishBookingEvent(ctx, s.producer, kafka.EventBookingCancelled, b)
	return b, nil
}

// compensateSeat は座席の解放と空席カウンタの加算を行う
// 予約キャンセル・決済失敗・期限切れ掃き出しで共通の補償処理
func compensateSeat(ctx context.Context, tx transaction.Tx, seatRepo seat.Repository, flightRepo flight.Repository, b *booking.Booking) error {
	if b.SeatID != nil {
		if err := seatRepo.Release(ctx, tx, *b.SeatID); err != nil {
			return err
		}
	}
	return flightRepo.IncrementAvailability(ctx, tx, b.FlightID, b.SeatClass)
}

// deductEarnedPoints は予約で獲得したポイントを減算する
func (s *BookingService) deductEarnedPoints(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
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

// ExpireStalePendingBookings はpendingのまま放置された予約を掃き出す
// 1件ごとに独立したSERIALIZABLEトランザクションで処理し、途中の失敗は残りに影響しない
func (s *BookingService) ExpireStalePendingBookings(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	ids, err := s.bookingRepo.ListStalePending(ctx, olderThan, limit)
	if err != nil {
		return 0, fmt.Errorf("期限切れ予約の取得に失敗: %w", err)
	}

	expired := 0
	for _, id := range ids {
		var b *booking.Booking
		err := transaction.Run(ctx, s.txManager, transaction.LevelSerializable, func(tx transaction.Tx) error {
			found, err := s.bookingRepo.GetByIDTx(ctx, tx, id)
			if err != nil {
				return err
			}
			// 一覧取得後に支払い・キャンセルされた予約はスキップ
			if found.Status != booking.StatusPending {
				return nil
			}
			if err := compensateSeat(ctx, tx, s.seatRepo, s.flightRepo, found); err != nil {
				return err
			}
			if err := s.bookingRepo.UpdateStatus(ctx, tx, found.ID, booking.StatusCancelled); err != nil {
				return err
			}
			found.Status = booking.StatusCancelled
			b = found
			return nil
		})
		if err != nil {
			logger.Warn("期限切れ予約の処理に失敗",
				zap.Int64("booking_id", id),
				zap.Error(err),
			)
			continue
		}
		if b == nil {
			continue
		}
		expired++
		s.invalidateAvailability(ctx, b.FlightID, b.SeatClass)
		publishBookingEvent(ctx, s.producer, kafka.EventBookingExpired, b)
	}
	return expired, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*booking.Booking, error) {
	return s.bookingRepo.GetByReference(ctx, reference)
}

func (s *BookingService) GetPassengerBookings(ctx context.Context, passengerID int64, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.bookingRepo.ListByPassenger(ctx, passengerID, limit, offset)
}

func (s *BookingService) invalidateAvailability(ctx context.Context, flightID int64, class seat.Class) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, flightID, class); err != nil {
		logger.Warn("空席キャッシュの無効化に失敗",
			zap.Int64("flight_id", flightID),
			zap.Error(err),
		)
	}
}


func (s *BookingService) countBooking(status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.BookingsTotal.WithLabelValues(status).Inc()
}

func (s *BookingService) countConflict(operation string, err error) {
	if s.metrics == nil || !errors.Is(err, transaction.ErrSerializationConflict) {
		return
	}
	s.metrics.SerializationConflictsTotal.WithLabelValues(operation).Inc()
}

func (s *BookingService) observeTx(operation string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.BookingTxDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// bookingOutcome はエラーをメトリクスのstatusラベルへ変換する
func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, transaction.ErrSerializationConflict):
		return "serialization_conflict"
	case errors.Is(err, flight.ErrNoAvailability):
		return "no_availability"
	case errors.Is(err, seat.ErrSeatUnavailable):
		return "seat_unavailable"
	default:
		return "error"
	}
}
