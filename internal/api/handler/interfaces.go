package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-airline-reservation/internal/application"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/flight"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/loyalty"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/passenger"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
)

// FlightServiceInterface はフライトサービスのインターフェース
type FlightServiceInterface interface {
	CreateAircraft(ctx context.Context, input application.CreateAircraftInput) (*flight.Aircraft, error)
	GetAircraft(ctx context.Context, id int64) (*flight.Aircraft, error)
	ListAircraft(ctx context.Context) ([]*flight.Aircraft, error)
	CreateFlight(ctx context.Context, input application.CreateFlightInput) (*flight.Flight, error)
	GetFlight(ctx context.Context, id int64) (*flight.Flight, error)
	GetFlightSeats(ctx context.Context, flightID int64) ([]*seat.Seat, error)
	SearchFlights(ctx context.Context, criteria flight.SearchCriteria) ([]*flight.Flight, error)
	ListFlights(ctx context.Context, limit, offset int) ([]*flight.Flight, error)
	GetAvailability(ctx context.Context, flightID int64, class seat.Class) (int, error)
	CancelFlight(ctx context.Context, flightID int64) (*flight.Flight, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	ReserveSeat(ctx context.Context, input application.ReserveSeatInput) (*booking.Booking, error)
	GetBooking(ctx context.Context, id int64) (*booking.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*booking.Booking, error)
	GetPassengerBookings(ctx context.Context, passengerID int64, limit, offset int) ([]*booking.Booking, error)
	CancelBooking(ctx context.Context, bookingID int64) (*booking.Booking, error)
	ExpireStalePendingBookings(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// PaymentServiceInterface は決済サービスのインターフェース
type PaymentServiceInterface interface {
	ProcessBookingPayment(ctx context.Context, bookingID int64, method string) (*payment.Payment, error)
	RefundPayment(ctx context.Context, paymentID int64) (*payment.Payment, error)
	GetPayment(ctx context.Context, id int64) (*payment.Payment, error)
	GetBookingPayment(ctx context.Context, bookingID int64) (*payment.Payment, error)
}

// PassengerServiceInterface は搭乗者サービスのインターフェース
type PassengerServiceInterface interface {
	CreatePassenger(ctx context.Context, input application.CreatePassengerInput) (*passenger.Passenger, error)
	GetPassenger(ctx context.Context, id int64) (*passenger.Passenger, error)
	GetPassengerByPassport(ctx context.Context, passportNumber string) (*passenger.Passenger, error)
	ListPassengers(ctx context.Context, limit, offset int) ([]*passenger.Passenger, error)
	GetLoyaltyAccount(ctx context.Context, passengerID int64) (*loyalty.Account, error)
}
