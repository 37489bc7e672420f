package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/flight"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/loyalty"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/passenger"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context, level transaction.Level) (transaction.Tx, error) {
	args := m.Called(ctx, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockBookingRepository implements booking.Repository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	args := m.Called(ctx, tx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByIDTx(ctx context.Context, tx transaction.Tx, id int64) (*booking.Booking, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByReference(ctx context.Context, reference string) (*booking.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) ReferenceExistsTx(ctx context.Context, tx transaction.Tx, reference string) (bool, error) {
	args := m.Called(ctx, tx, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) ListByPassenger(ctx context.Context, passengerID int64, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, passengerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListActiveByFlightTx(ctx context.Context, tx transaction.Tx, flightID int64) ([]*booking.Booking, error) {
	args := m.Called(ctx, tx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]int64, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, id int64, status booking.Status) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

// MockFlightRepository implements flight.Repository
type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) CreateAircraft(ctx context.Context, a *flight.Aircraft) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockFlightRepository) GetAircraft(ctx context.Context, id int64) (*flight.Aircraft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Aircraft), args.Error(1)
}

func (m *MockFlightRepository) ListAircraft(ctx context.Context) ([]*flight.Aircraft, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*flight.Aircraft), args.Error(1)
}

func (m *MockFlightRepository) Create(ctx context.Context, tx transaction.Tx, f *flight.Flight) error {
	args := m.Called(ctx, tx, f)
	return args.Error(0)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*flight.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByIDTx(ctx context.Context, tx transaction.Tx, id int64) (*flight.Flight, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByNumber(ctx context.Context, flightNumber string) (*flight.Flight, error) {
	args := m.Called(ctx, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flight.Flight), args.Error(1)
}

func (m *MockFlightRepository) Search(ctx context.Context, criteria flight.SearchCriteria) ([]*flight.Flight, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*flight.Flight), args.Error(1)
}

func (m *MockFlightRepository) List(ctx context.Context, limit, offset int) ([]*flight.Flight, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*flight.Flight), args.Error(1)
}

func (m *MockFlightRepository) DecrementAvailability(ctx context.Context, tx transaction.Tx, flightID int64, class seat.Class) error {
	args := m.Called(ctx, tx, flightID, class)
	return args.Error(0)
}

func (m *MockFlightRepository) IncrementAvailability(ctx context.Context, tx transaction.Tx, flightID int64, class seat.Class) error {
	args := m.Called(ctx, tx, flightID, class)
	return args.Error(0)
}

func (m *MockFlightRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, flightID int64, status flight.Status) error {
	args := m.Called(ctx, tx, flightID, status)
	return args.Error(0)
}

// MockSeatRepository implements seat.Repository
type MockSeatRepository struct {
	mock.Mock
}

func (m *MockSeatRepository) CreateBulk(ctx context.Context, tx transaction.Tx, seats []*seat.Seat) error {
	args := m.Called(ctx, tx, seats)
	return args.Error(0)
}

func (m *MockSeatRepository) GetByID(ctx context.Context, id int64) (*seat.Seat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) GetByFlightID(ctx context.Context, flightID int64) ([]*seat.Seat, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) GetByNumberTx(ctx context.Context, tx transaction.Tx, flightID int64, seatNumber string) (*seat.Seat, error) {
	args := m.Called(ctx, tx, flightID, seatNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) Reserve(ctx context.Context, tx transaction.Tx, seatID int64) error {
	args := m.Called(ctx, tx, seatID)
	return args.Error(0)
}

func (m *MockSeatRepository) ReserveNextAvailable(ctx context.Context, tx transaction.Tx, flightID int64, class seat.Class) (*seat.Seat, error) {
	args := m.Called(ctx, tx, flightID, class)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Seat), args.Error(1)
}

func (m *MockSeatRepository) Release(ctx context.Context, tx transaction.Tx, seatID int64) error {
	args := m.Called(ctx, tx, seatID)
	return args.Error(0)
}

func (m *MockSeatRepository) CountAvailable(ctx context.Context, flightID int64, class seat.Class) (int, error) {
	args := m.Called(ctx, flightID, class)
	return args.Int(0), args.Error(1)
}

// MockPassengerRepository implements passenger.Repository
type MockPassengerRepository struct {
	mock.Mock
}

func (m *MockPassengerRepository) Create(ctx context.Context, tx transaction.Tx, p *passenger.Passenger) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPassengerRepository) GetByID(ctx context.Context, id int64) (*passenger.Passenger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*passenger.Passenger), args.Error(1)
}

func (m *MockPassengerRepository) ExistsTx(ctx context.Context, tx transaction.Tx, id int64) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPassengerRepository) GetByPassport(ctx context.Context, passportNumber string) (*passenger.Passenger, error) {
	args := m.Called(ctx, passportNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*passenger.Passenger), args.Error(1)
}

func (m *MockPassengerRepository) List(ctx context.Context, limit, offset int) ([]*passenger.Passenger, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*passenger.Passenger), args.Error(1)
}

// MockLoyaltyRepository implements loyalty.Repository
type MockLoyaltyRepository struct {
	mock.Mock
}

func (m *MockLoyaltyRepository) Create(ctx context.Context, tx transaction.Tx, a *loyalty.Account) error {
	args := m.Called(ctx, tx, a)
	return args.Error(0)
}

func (m *MockLoyaltyRepository) GetByPassenger(ctx context.Context, passengerID int64) (*loyalty.Account, error) {
	args := m.Called(ctx, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loyalty.Account), args.Error(1)
}

func (m *MockLoyaltyRepository) GetByPassengerTx(ctx context.Context, tx transaction.Tx, passengerID int64) (*loyalty.Account, error) {
	args := m.Called(ctx, tx, passengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loyalty.Account), args.Error(1)
}

func (m *MockLoyaltyRepository) MembershipExistsTx(ctx context.Context, tx transaction.Tx, membershipNumber string) (bool, error) {
	args := m.Called(ctx, tx, membershipNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoyaltyRepository) UpdateTx(ctx context.Context, tx transaction.Tx, a *loyalty.Account) error {
	args := m.Called(ctx, tx, a)
	return args.Error(0)
}

// MockPaymentRepository implements payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id int64) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByIDTx(ctx context.Context, tx transaction.Tx, id int64) (*payment.Payment, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*payment.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ExistsForBookingTx(ctx context.Context, tx transaction.Tx, bookingID int64) (bool, error) {
	args := m.Called(ctx, tx, bookingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*payment.Payment, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, id int64, status payment.Status) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

// MockGateway implements payment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Charge(ctx context.Context, amount float64, method, reference string) (*payment.ChargeResult, error) {
	args := m.Called(ctx, amount, method, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ChargeResult), args.Error(1)
}

func (m *MockGateway) Refund(ctx context.Context, transactionID string, amount float64) (*payment.RefundResult, error) {
	args := m.Called(ctx, transactionID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.RefundResult), args.Error(1)
}
