package payment

import "time"

// Status は決済の状態を表す
type Status string

const (
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// Payment は決済エンティティを表す
// 予約と1対1で対応し、終端状態に達した後は返金フローを除いて不変
type Payment struct {
	ID            int64
	BookingID     int64
	TransactionID string
	Amount        float64
	Method        string
	Status        Status
	PaymentDate   time.Time
	UpdatedAt     time.Time
}

// NewPayment は新しい決済レコードを作成する
func NewPayment(bookingID int64, transactionID string, amount float64, method string, status Status) *Payment {
	now := time.Now()
	return &Payment{
		BookingID:     bookingID,
		TransactionID: transactionID,
		Amount:        amount,
		Method:        method,
		Status:        status,
		PaymentDate:   now,
		UpdatedAt:     now,
	}
}

// Validate は決済の検証を行う
func (p *Payment) Validate() error {
	if p.BookingID == 0 {
		return ErrBookingIDRequired
	}
	if p.TransactionID == "" {
		return ErrTransactionIDRequired
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Method == "" {
		return ErrMethodRequired
	}
	return nil
}

// Refund は決済を返金済みにする
// 成功した決済のみ返金できる
func (p *Payment) Refund() error {
	if p.Status != StatusSuccess {
		return ErrInvalidPaymentState
	}
	p.Status = StatusRefunded
	p.UpdatedAt = time.Now()
	return nil
}
