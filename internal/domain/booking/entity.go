package booking

import (
	"math/rand"
	"time"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
)

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// referenceLength は予約番号の桁数（英大文字と数字）
const referenceLength = 6

const referenceChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Booking は予約エンティティを表す
// pending への遷移は予約エンジンのみ、pending からの遷移は決済エンジンと
// キャンセル経路のみが行う
type Booking struct {
	ID          int64
	Reference   string
	PassengerID int64
	FlightID    int64
	SeatID      *int64
	SeatClass   seat.Class
	Price       float64
	Status      Status
	BookingDate time.Time
	UpdatedAt   time.Time
}

// NewBooking は pending 状態の新しい予約を作成する
// 価格はフライトのクラス別基本価格を予約時点でスナップショットする
func NewBooking(passengerID, flightID, seatID int64, class seat.Class, price float64) *Booking {
	now := time.Now()
	return &Booking{
		Reference:   NewReference(),
		PassengerID: passengerID,
		FlightID:    flightID,
		SeatID:      &seatID,
		SeatClass:   class,
		Price:       price,
		Status:      StatusPending,
		BookingDate: now,
		UpdatedAt:   now,
	}
}

// NewReference は予約番号を生成する（英数6桁、一意性はストレージ層で保証）
func NewReference() string {
	b := make([]byte, referenceLength)
	for i := range b {
		b[i] = referenceChars[rand.Intn(len(referenceChars))]
	}
	return string(b)
}

// IsPending は予約が保留中かを返す
func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

// Confirm は予約を確定する
func (b *Booking) Confirm() error {
	if b.Status != StatusPending {
		return ErrInvalidBookingState
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = time.Now()
	return nil
}

// Cancel は予約をキャンセルする
// pending と confirmed のみキャンセル可能
func (b *Booking) Cancel() error {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return ErrInvalidBookingState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = time.Now()
	return nil
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.PassengerID == 0 {
		return ErrPassengerIDRequired
	}
	if b.FlightID == 0 {
		return ErrFlightIDRequired
	}
	if !b.SeatClass.Valid() {
		return ErrInvalidSeatClass
	}
	if b.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}
