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
	"github.com/sanosuguru/go-airline-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-airline-reservation/internal/infrastructure/kafka"
	rediscache "github.com/sanosuguru/go-airline-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-airline-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-airline-reservation/internal/pkg/metrics"
)

// maxMembershipAttempts は会員番号の再採番の上限
const maxMembershipAttempts = 5

// PaymentService は予約決済のユースケースを提供する
// 成功時は予約確定とポイント加算、失敗時は座席補償を同一トランザクションで確定する
type PaymentService struct {
	txManager   transaction.Manager
	paymentRepo payment.Repository
	bookingRepo booking.Repository
	flightRepo  flight.Repository
	seatRepo    seat.Repository
	loyaltyRepo loyalty.Repository
	gateway     payment.Gateway

	cache    *rediscache.AvailabilityCache
	producer *kafka.Producer
	metrics  *metrics.Metrics
}

type PaymentServiceOption func(*PaymentService)

func WithPaymentCache(cache *rediscache.AvailabilityCache) PaymentServiceOption {
	return func(s *PaymentService) { s.cache = cache }
}

func WithPaymentEventProducer(producer *kafka.Producer) PaymentServiceOption {
	return func(s *PaymentService) { s.producer = producer }
}

func WithPaymentMetrics(m *metrics.Metrics) PaymentServiceOption {
	return func(s *PaymentService) { s.metrics = m }
}

func NewPaymentService(
	tm transaction.Manager,
	pr payment.Repository,
	br booking.Repository,
	fr flight.Repository,
	sr seat.Repository,
	lr loyalty.Repository,
	gw payment.Gateway,
	opts ...PaymentServiceOption,
) *PaymentService {
	s := &PaymentService{
		txManager:   tm,
		paymentRepo: pr,
		bookingRepo: br,
		flightRepo:  fr,
		seatRepo:    sr,
		loyaltyRepo: lr,
		gateway:     gw,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessBookingPayment はpending予約の決済を実行する
// ゲートウェイが承認した場合は予約をconfirmedにしポイントを加算、
// 拒否した場合は失敗した支払い行を監査用に残した上で予約をキャンセルし座席を戻す
// どちらの結果もコミットされ、拒否の場合はコミット後に ErrPaymentFailed を返す
func (s *PaymentService) ProcessBookingPayment(ctx context.Context, bookingID int64, method string) (*payment.Payment, error) {
	if method == "" {
		return nil, payment.ErrMethodRequired
	}

	start := time.Now()
	var (
		p        *payment.Payment
		b        *booking.Booking
		declined *payment.ChargeResult
	)
	err := transaction.Run(ctx, s.txManager, transaction.LevelSerializable, func(tx transaction.Tx) error {
		var err error
		b, err = s.bookingRepo.GetByIDTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !b.IsPending() {
			return booking.ErrInvalidBookingState
		}

		// 二重決済ガード
		exists, err := s.paymentRepo.ExistsForBookingTx(ctx, tx, b.ID)
		if err != nil {
			return err
		}
		if exists {
			return booking.ErrInvalidBookingState
		}

		result, err := s.gateway.Charge(ctx, b.Price, method, b.Reference)
		if err != nil {
			return fmt.Errorf("決済ゲートウェイ呼び出しに失敗: %w", err)
		}

		if !result.Approved {
			declined = result
			p = payment.NewPayment(b.ID, result.TransactionID, b.Price, method, payment.StatusFailed)
			if err := s.paymentRepo.Create(ctx, tx, p); err != nil {
				return err
			}
			if err := s.bookingRepo.UpdateStatus(ctx, tx, b.ID, booking.StatusCancelled); err != nil {
				return err
			}
			b.Status = booking.StatusCancelled
			return compensateSeat(ctx, tx, s.seatRepo, s.flightRepo, b)
		}

		p = payment.NewPayment(b.ID, result.TransactionID, b.Price, method, payment.StatusSuccess)
		if err := s.paymentRepo.Create(ctx, tx, p); err != nil {
			return err
		}
		if err := s.bookingRepo.UpdateStatus(ctx, tx, b.ID, booking.StatusConfirmed); err != nil {
			return err
		}
		b.Status = booking.StatusConfirmed
		return s.awardPoints(ctx, tx, b)
	})
	s.observeTx("payment", start)
	if err != nil {
		s.countPayment("error")
		s.countConflict("payment", err)
		return nil, err
	}

	if declined != nil {
		s.countPayment("declined")
		s.invalidateAvailability(ctx, b.FlightID, b.SeatClass)
		publishBookingEvent(ctx, s.producer, kafka.EventBookingCancelled, b)
		return p, fmt.Errorf("%w: %s", payment.ErrPaymentFailed, declined.ErrorCode)
	}

	s.countPayment("success")
	publishBookingEvent(ctx, s.producer, kafka.EventBookingConfirmed, b)
	return p, nil
}

// awardPoints は確定した予約のポイントを加算する
// マイレージ口座がなければポイント0・ブロンズで作成してから加算する
func (s *PaymentService) awardPoints(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	account, err := s.loyaltyRepo.GetByPassengerTx(ctx, tx, b.PassengerID)
	if err != nil {
		if !errors.Is(err, loyalty.ErrAccountNotFound) {
			return err
		}
		account, err = s.createAccount(ctx, tx, b.PassengerID)
		if err != nil {
			return err
		}
	}
	account.AddPoints(loyalty.PointsEarned(b.Price, b.SeatClass, account.Tier))
	account.RecordFlight(time.Now())
	return s.loyaltyRepo.UpdateTx(ctx, tx, account)
}

func (s *PaymentService) createAccount(ctx context.Context, tx transaction.Tx, passengerID int64) (*loyalty.Account, error) {
	account := loyalty.NewAccount(passengerID)
	number, err := uniqueMembershipNumber(ctx, tx, s.loyaltyRepo)
	if err != nil {
		return nil, err
	}
	account.MembershipNumber = number
	if err := s.loyaltyRepo.Create(ctx, tx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// uniqueMembershipNumber は未使用の会員番号を採番する
// INSERTの一意制約違反はトランザクション全体を中断させるため、事前に存在確認を行う
func uniqueMembershipNumber(ctx context.Context, tx transaction.Tx, repo loyalty.Repository) (string, error) {
	for i := 0; i < maxMembershipAttempts; i++ {
		number := loyalty.NewMembershipNumber()
		exists, err := repo.MembershipExistsTx(ctx, tx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", loyalty.ErrMembershipConflict
}

// RefundPayment は成功済みの支払いを返金する
// 予約がまだconfirmedの場合は同一トランザクションでキャンセルし座席とポイントを補償する
func (s *PaymentService) RefundPayment(ctx context.Context, paymentID int64) (*payment.Payment, error) {
	start := time.Now()
	var (
		p *payment.Payment
		b *booking.Booking
	)
	err := transaction.Run(ctx, s.txManager, transaction.LevelSerializable, func(tx transaction.Tx) error {
		var err error
		p, err = s.paymentRepo.GetByIDTx(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if err := p.Refund(); err != nil {
			return err
		}

		result, err := s.gateway.Refund(ctx, p.TransactionID, p.Amount)
		if err != nil {
			return fmt.Errorf("返金ゲートウェイ呼び出しに失敗: %w", err)
		}
		if !result.Approved {
			return payment.ErrRefundFailed
		}

		if err := s.paymentRepo.UpdateStatus(ctx, tx, p.ID, payment.StatusRefunded); err != nil {
			return err
		}

		b, err = s.bookingRepo.GetByIDTx(ctx, tx, p.BookingID)
		if err != nil {
			return err
		}
		if b.Status != booking.StatusConfirmed {
			b = nil
			return nil
		}
		if err := s.bookingRepo.UpdateStatus(ctx, tx, b.ID, booking.StatusCancelled); err != nil {
			return err
		}
		b.Status = booking.StatusCancelled
		if err := compensateSeat(ctx, tx, s.seatRepo, s.flightRepo, b); err != nil {
			return err
		}
		return s.deductRefundedPoints(ctx, tx, b)
	})
	s.observeTx("refund", start)
	if err != nil {
		s.countConflict("refund", err)
		return nil, err
	}

	if b != nil {
		s.invalidateAvailability(ctx, b.FlightID, b.SeatClass)
		publishBookingEvent(ctx, s.producer, kafka.EventPaymentRefunded, b)
	}
	return p, nil
}

func (s *PaymentService) deductRefundedPoints(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
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

func (s *PaymentService) GetPayment(ctx context.Context, id int64) (*payment.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *PaymentService) GetBookingPayment(ctx context.Context, bookingID int64) (*payment.Payment, error) {
	return s.paymentRepo.GetByBookingID(ctx, bookingID)
}

func (s *PaymentService) invalidateAvailability(ctx context.Context, flightID int64, class seat.Class) {
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


func (s *PaymentService) countPayment(status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.PaymentsTotal.WithLabelValues(status).Inc()
}

func (s *PaymentService) countConflict(operation string, err error) {
	if s.metrics == nil || !errors.Is(err, transaction.ErrSerializationConflict) {
		return
	}
	s.metrics.SerializationConflictsTotal.WithLabelValues(operation).Inc()
}

func (s *PaymentService) observeTx(operation string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.BookingTxDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
