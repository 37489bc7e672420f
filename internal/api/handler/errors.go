package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/flight"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/loyalty"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/passenger"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

var notFoundErrors = []error{
	booking.ErrBookingNotFound,
	flight.ErrFlightNotFound,
	flight.ErrAircraftNotFound,
	seat.ErrSeatNotFound,
	passenger.ErrPassengerNotFound,
	payment.ErrPaymentNotFound,
	loyalty.ErrAccountNotFound,
}

var conflictErrors = []error{
	transaction.ErrSerializationConflict,
	flight.ErrNoAvailability,
	flight.ErrFlightNotBookable,
	seat.ErrSeatUnavailable,
	booking.ErrInvalidBookingState,
	booking.ErrReferenceConflict,
	payment.ErrInvalidPaymentState,
	passenger.ErrPassportConflict,
	loyalty.ErrMembershipConflict,
}

// httpError はドメインエラーをHTTPステータスに変換する
// 404: 対象が存在しない / 409: 競合・状態不正（リトライ可能なものを含む） / 402: 決済拒否
func httpError(err error) error {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
	}
	if errors.Is(err, payment.ErrPaymentFailed) {
		return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
	}
	if errors.Is(err, payment.ErrRefundFailed) {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
