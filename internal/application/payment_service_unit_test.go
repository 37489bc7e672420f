package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/loyalty"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

type paymentTestDeps struct {
	txManager   *MockTxManager
	tx          *MockTx
	paymentRepo *MockPaymentRepository
	bookingRepo *MockBookingRepository
	flightRepo  *MockFlightRepository
	seatRepo    *MockSeatRepository
	loyaltyRepo *MockLoyaltyRepository
	gateway     *MockGateway
	service     *PaymentService
}

func newPaymentTestDeps() *paymentTestDeps {
	txm := new(MockTxManager)
	tx := new(MockTx)
	paymentRepo := new(MockPaymentRepository)
	bookingRepo := new(MockBookingRepository)
	flightRepo := new(MockFlightRepository)
	seatRepo := new(MockSeatRepository)
	loyaltyRepo := new(MockLoyaltyRepository)
	gateway := new(MockGateway)

	service := NewPaymentService(txm, paymentRepo, bookingRepo, flightRepo, seatRepo, loyaltyRepo, gateway)

	return &paymentTestDeps{
		txManager:   txm,
		tx:          tx,
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		flightRepo:  flightRepo,
		seatRepo:    seatRepo,
		loyaltyRepo: loyaltyRepo,
		gateway:     gateway,
		service:     service,
	}
}

func bronzeAccount() *loyalty.Account {
	return &loyalty.Account{
		ID:               3,
		PassengerID:      5,
		MembershipNumber: "FF00001234",
		Points:           1000,
		Tier:             loyalty.TierBronze,
		JoinDate:         time.Now().AddDate(-1, 0, 0),
	}
}

func TestPaymentService_ProcessBookingPayment_Success(t *testing.T) {
	deps := newPaymentTestDeps()
	ctx := context.Background()

	b := pendingBooking(1)
	account := bronzeAccount()

	deps.txManager.On("Begin", ctx, transaction.LevelSerializable).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)

	deps.bookingRepo.On("GetByIDTx", ctx, deps.tx, int64(1)).Return(b, nil)
	deps.paymentRepo.On("ExistsForBookingTx", ctx, deps.tx, int64(1)).Return(false, nil)
	deps.gateway.On("Charge", ctx, 85000.0, "credit_card", "AB12CD").
		Return(&payment.ChargeResult{TransactionID: "TXNAAAA00000001", Approved: true}, nil)
	deps.paymentRepo.On("Create", ctx, deps.tx, mock.AnythingOfType("*payment.Payment")).Return(nil)
	deps.bookingRepo.On("UpdateStatus", ctx, deps.tx, int64(1), booking.StatusConfirmed).Return(nil)
	deps.loyaltyRepo.On("GetByPassengerTx", ctx, deps.tx, int64(5)).Return(account, nil)
	deps.loyaltyRepo.On("UpdateTx", ctx, deps.tx, account).Return(nil)

	p, err := deps.service.ProcessBookingPayment(ctx, 1, "credit_card")

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, payment.StatusSuccess, p.Status)
	assert.Equal(t, "TXNAAAA00000001", p.TransactionID)
	assert.Equal(t, 85000.0, p.Amount)
	// 85000 × 1.0（エコノミー） × 1.0（ブロンズ） = 85000 → 累計86000でゴールド昇格
	assert.Equal(t, 86000, account.Points)
	assert.Equal(t, loyalty.TierGold, account.Tier)
	require.NotNil(t, account.LastFlightAt)

	deps.gateway.AssertExpectations(t)
	deps.paymentRepo.AssertExpectations(t)
	deps.loyaltyRepo.AssertExpectations(t)
	deps.tx.AssertCalled(t, "Commit")
}

func TestPaymentService_ProcessBookingPayment_CreatesAccount(t *testing.T) {
	deps := newPaymentTestDeps()
	ctx := context.Background()

	b := pendingBooking(1)

	deps.txManager.On("Begin", ctx, transaction.LevelSerializable).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)

	deps.bookingRepo.On("GetByIDTx", ctx, deps.tx, int64(1)).Return(b, nil)
	deps.paymentRepo.On("ExistsForBookingTx", ctx, deps.tx, int64(1)).Return(false, nil)
	deps.gateway.On("Charge", ctx, 85000.0, "credit_card", "AB12CD").
		Return(&payment.ChargeResult{TransactionID: "TXNAAAA00000002", Approved: true}, nil)
	deps.paymentRepo.On("Create", ctx, deps.tx, mock.AnythingOfType("*payment.Payment")).Return(nil)
	deps.bookingRepo.On("UpdateStatus", ctx, deps.tx, int64(1), booking.StatusConfirmed).Return(nil)

	// 口座がない搭乗者はポイント0・ブロンズで作成してから加算する
	deps.loyaltyRepo.On("GetByPassengerTx", ctx, deps.tx, int64(5)).Return(nil, loyalty.ErrAccountNotFound)
	deps.loyaltyRepo.On("MembershipExistsTx", ctx, deps.tx, mock.AnythingOfType("string")).Return(false, nil)
	deps.loyaltyRepo.On("Create", ctx, deps.tx, mock.AnythingOfType("*loyalty.Account")).Return(nil)
	deps.loyaltyRepo.On("UpdateTx", ctx, deps.tx, mock.MatchedBy(func(a *loyalty.Account) bool {
		return a.PassengerID == 5 && a.Points == 85000 && a.Tier == loyalty.TierGold
	})).Return(nil)

	p, err := deps.service.ProcessBookingPayment(ctx, 1, "credit_card")

	require.NoError(t, err)
	assert.Equal(t, payment.StatusSuccess, p.Status)
	deps.loyaltyRepo.AssertExpectations(t)
}

func TestPaymentService_ProcessBookingPayment_Declined(t *testing.T) {
	deps := newPaymentTestDeps()
	ctx := context.Background()

	b := pendingBooking(1)

	deps.txManager.On("Begin", ctx, transaction.LevelSerializable).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)

	deps.bookingRepo.On("GetByIDTx", ctx, deps.tx, int64(1)).Return(b, nil)
	deps.paymentRepo.On("ExistsForBookingTx", ctx, deps.tx, int64(1)).Return(false, nil)
	deps.gateway.On("Charge", ctx, 85000.0, "credit_card", "AB12CD").
		Return(&payment.ChargeResult{
			TransactionID: "TXNAAAA00000003",
			Approved:      false,
			ErrorCode:     "insufficient_funds",
		}, nil)

	// 拒否時も失敗した支払い行を残し、予約キャンセルと座席補償をコミットする
	deps.paymentRepo.On("Create", ctx, deps.tx, mock.MatchedBy(func(p *payment.Payment) bool {
		return p.Status == payment.StatusFailed && p.BookingID == 1
	})).Return(nil)
	deps.bookingRepo.On("UpdateStatus", ctx, deps.tx, int64(1), booking.StatusCancelled).Return(nil)
	deps.seatRepo.On("Release", ctx, deps.tx, int64(77)).Return(nil)
	deps.flightRepo.On("IncrementAvailability", ctx, deps.tx, int64(10), seat.ClassEconomy).Return(nil)

	p, err := deps.service.ProcessBookingPayment(ctx, 1, "credit_card")

	require.ErrorIs(t, err, payment.ErrPaymentFailed)
	assert.Contains(t, err.Error(), "insufficient_funds")
	require.NotNil(t, p)
	assert.Equal(t, payment.StatusFailed, p.Status)

	deps.tx.AssertCalled(t, "Commit")
	deps.loyaltyRepo.AssertNotCalled(t, "UpdateTx", mock.Anything, mock.Anything, mock.Anything)
	deps.seatRepo.AssertExpectations(t)
	deps.flightRepo.AssertExpectations(t)
}

func TestPaymentService_ProcessBookingPayment_MethodRequired(t *testing.T) {
	deps := newPaymentTestDeps()

	p, err := deps.service.ProcessBookingPayment(context.Background(), 1, "")

	assert.ErrorIs(t, err, payment.ErrMethodRequired)
	assert.Nil(t, p)
	deps.txManager.AssertNotCalled(t, "Begin", mock.Anything, mock.Anything)
}

func TestPaymentService_ProcessBookingPayment_NotPending(t *testing.T) {
	deps := newPaymentTestDeps()
	ctx := context.Background()

	b := pendingBooking(1)
	b.Status = booking.StatusConfirmed

	deps.txManager.On("Begin", ctx, transaction.LevelSerializable).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.bookingRepo.On("GetByIDTx", ctx, deps.tx, int64(1)).Return(b, nil)

	_, err := deps.service.ProcessBookingPayment(ctx, 1, "credit_card")

	assert.ErrorIs(t, err, booking.ErrInvalidBookingState)
	deps.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	deps.tx.AssertNotCalled(t, "Commit")
}

func TestPaymentService_ProcessBookingPayment_DoubleProcessingGuard(t *testing.T) {
	deps := newPaymentTestDeps()
	ctx := context.Background()

	b := pendingBooking(1)

	deps.txManager.On("Begin", ctx, transaction.LevelSerializable).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.bookingRepo.On("GetByIDTx", ctx, deps.tx, int64(1)).Return(b, nil)
	deps.paymentRepo.On("ExistsForBookingTx", ctx, deps.tx, int64(1)).Return(true, nil)

	_, err := deps.service.ProcessBookingPayment(ctx, 1, "credit_card")

	assert.ErrorIs(t, err, booking.ErrInvalidBookingState)
	deps.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_ProcessBookingPayment_SerializationConflict(t *testing.T) {
	deps := newPaymentTestDeps()
	ctx := context.Background()

	b := pendingBooking(1)
	account := bronzeAccount()

	deps.txManager.On("Begin", ctx, transaction.LevelSerializable).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(transaction.ErrSerializationConflict)

	deps.bookingRepo.On("GetByIDTx", ctx, deps.tx, int64(1)).Return(b, nil)
	deps.paymentRepo.On("ExistsForBookingTx", ctx, deps.tx, int64(1)).Return(false, nil)
	deps.gateway.On("Charge", ctx, 85000.0, "credit_card", "AB12CD").
		Return(&payment.ChargeResult{TransactionID: "TXNAAAA00000004", Approved: true}, nil)
	deps.paymentRepo.On("Create", ctx, deps.tx, mock.AnythingOfType("*payment.Payment")).Return(nil)
	deps.bookingRepo.On("UpdateStatus", ctx, deps.tx, int64(1), booking.StatusConfirmed).Return(nil)
	deps.loyaltyRepo.On("GetByPassengerTx", ctx, deps.tx, int64(5)).Return(account, nil)
	deps.loyaltyRepo.On("UpdateTx", ctx, deps.tx, account).Return(nil)

	p, err := deps.service.ProcessBookingPayment(ctx, 1, "credit_card")

	assert.ErrorIs(t, err, transaction.ErrSerializationConflict)
	assert.Nil(t, p)
}

func TestPaymentService_RefundPayment_ConfirmedBooking(t *testing.T) {
	deps := newPaymentTestDeps()
	ctx := context.Background()

	p := &payment.Payment{
		ID:            7,
		BookingID:     1,
		TransactionID: "TXNAAAA00000005",
		Amount:        85000,
		Method:        "credit_card",
		Status:        payment.StatusSuccess,
	}
	b := pendingBooking(1)
	b.Status = booking.StatusConfirmed
	account := bronzeAccount()
	account.Points = 90000

	deps.txManager.On("Begin", ctx, transaction.LevelSerializable).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)

	deps.paymentRepo.On("GetByIDTx", ctx, deps.tx, int64(7)).Return(p, nil)
	deps.gateway.On("Refund", ctx, "TXNAAAA00000005", 85000.0).
		Return(&payment.RefundResult{RefundTransactionID: "TXNBBBB00000001", Approved: true}, nil)
	deps.paymentRepo.On("UpdateStatus", ctx, deps.tx, int64(7), payment.StatusRefunded).Return(nil)
	deps.bookingRepo.On("GetByIDTx", ctx, deps.tx, int64(1)).Return(b, nil)
	deps.bookingRepo.On("UpdateStatus", ctx, deps.tx, int64(1), booking.StatusCancelled).Return(nil)
	deps.seatRepo.On("Release", ctx, deps.tx, int64(77)).Return(nil)
	deps.flightRepo.On("IncrementAvailability", ctx, deps.tx, int64(10), seat.ClassEconomy).Return(nil)
	deps.loyaltyRepo.On("GetByPassengerTx", ctx, deps.tx, int64(5)).Return(account, nil)
	deps.loyaltyRepo.On("UpdateTx", ctx, deps.tx, account).Return(nil)

	result, err := deps.service.RefundPayment(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, payment.StatusRefunded, result.Status)
	// 90000 − 85000 = 5000（ブロンズのまま）
	assert.Equal(t, 5000, account.Points)
	deps.seatRepo.AssertExpectations(t)
	deps.loyaltyRepo.AssertExpectations(t)
}

func TestPaymentService_RefundPayment_BookingAlreadyCancelled(t *testing.T) {
	deps := newPaymentTestDeps()
	ctx := context.Background()

	p := &payment.Payment{
		ID:            8,
		BookingID:     1,
		TransactionID: "TXNAAAA00000006",
		Amount:        85000,
		Method:        "credit_card",
		Status:        payment.StatusSuccess,
	}
	b := pendingBooking(1)
	b.Status = booking.StatusCancelled

	deps.txManager.On("Begin", ctx, transaction.LevelSerializable).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)

	deps.paymentRepo.On("GetByIDTx", ctx, deps.tx, int64(8)).Return(p, nil)
	deps.gateway.On("Refund", ctx, "TXNAAAA00000006", 85000.0).
		Return(&payment.RefundResult{RefundTransactionID: "TXNBBBB00000002", Approved: true}, nil)
	deps.paymentRepo.On("UpdateStatus", ctx, deps.tx, int64(8), payment.StatusRefunded).Return(nil)
	deps.bookingRepo.On("GetByIDTx", ctx, deps.tx, int64(1)).Return(b, nil)

	result, err := deps.service.RefundPayment(ctx, 8)

	require.NoError(t, err)
	assert.Equal(t, payment.StatusRefunded, result.Status)
	// 予約は既にキャンセル済みなので座席補償は行わない
	deps.seatRepo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	deps.bookingRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_RefundPayment_NotSuccessful(t *testing.T) {
	deps := newPaymentTestDeps()
	ctx := context.Background()

	p := &payment.Payment{
		ID:            9,
		BookingID:     1,
		TransactionID: "TXNAAAA00000007",
		Amount:        85000,
		Method:        "credit_card",
		Status:        payment.StatusFailed,
	}

	deps.txManager.On("Begin", ctx, transaction.LevelSerializable).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.paymentRepo.On("GetByIDTx", ctx, deps.tx, int64(9)).Return(p, nil)

	_, err := deps.service.RefundPayment(ctx, 9)

	assert.ErrorIs(t, err, payment.ErrInvalidPaymentState)
	deps.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_RefundPayment_GatewayRejected(t *testing.T) {
	deps := newPaymentTestDeps()
	ctx := context.Background()

	p := &payment.Payment{
		ID:            10,
		BookingID:     1,
		TransactionID: "TXNAAAA00000008",
		Amount:        85000,
		Method:        "credit_card",
		Status:        payment.StatusSuccess,
	}

	deps.txManager.On("Begin", ctx, transaction.LevelSerializable).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.paymentRepo.On("GetByIDTx", ctx, deps.tx, int64(10)).Return(p, nil)
	deps.gateway.On("Refund", ctx, "TXNAAAA00000008", 85000.0).
		Return(&payment.RefundResult{Approved: false}, nil)

	_, err := deps.service.RefundPayment(ctx, 10)

	assert.ErrorIs(t, err, payment.ErrRefundFailed)
	deps.paymentRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	deps.tx.AssertNotCalled(t, "Commit")
}

func TestPaymentService_GetPayment(t *testing.T) {
	deps := newPaymentTestDeps()
	ctx := context.Background()

	p := &payment.Payment{ID: 11, BookingID: 2, Status: payment.StatusSuccess}
	deps.paymentRepo.On("GetByID", ctx, int64(11)).Return(p, nil)

	result, err := deps.service.GetPayment(ctx, 11)

	require.NoError(t, err)
	assert.Equal(t, p, result)
}
