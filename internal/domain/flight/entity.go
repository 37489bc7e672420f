package flight

import (
	"time"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
)

// Status はフライトの状態を表す
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Aircraft は機材エンティティを表す
type Aircraft struct {
	ID              int64
	Model           string
	Manufacturer    string
	TotalSeats      int
	EconomySeats    int
	BusinessSeats   int
	FirstClassSeats int
}

// NewAircraft は新しい機材を作成する
func NewAircraft(model, manufacturer string, economySeats, businessSeats, firstClassSeats int) *Aircraft {
	return &Aircraft{
		Model:           model,
		Manufacturer:    manufacturer,
		TotalSeats:      economySeats + businessSeats + firstClassSeats,
		EconomySeats:    economySeats,
		BusinessSeats:   businessSeats,
		FirstClassSeats: firstClassSeats,
	}
}

// Validate は機材の検証を行う
func (a *Aircraft) Validate() error {
	if a.Model == "" {
		return ErrAircraftModelRequired
	}
	if a.TotalSeats <= 0 {
		return ErrInvalidSeatCount
	}
	if a.TotalSeats != a.EconomySeats+a.BusinessSeats+a.FirstClassSeats {
		return ErrInvalidSeatCount
	}
	if a.EconomySeats < 0 || a.BusinessSeats < 0 || a.FirstClassSeats < 0 {
		return ErrInvalidSeatCount
	}
	return nil
}

// CapacityFor はクラス別の座席数を返す
func (a *Aircraft) CapacityFor(class seat.Class) int {
	switch class {
	case seat.ClassBusiness:
		return a.BusinessSeats
	case seat.ClassFirst:
		return a.FirstClassSeats
	default:
		return a.EconomySeats
	}
}

// Flight はフライトエンティティを表す
// クラス別の空席カウンタは予約・決済トランザクション以外から書き換えてはならない
type Flight struct {
	ID                int64
	FlightNumber      string
	AircraftID        int64
	Origin            string
	Destination       string
	DepartureTime     time.Time
	ArrivalTime       time.Time
	BasePriceEconomy  float64
	BasePriceBusiness float64
	BasePriceFirst    float64
	AvailableEconomy  int
	AvailableBusiness int
	AvailableFirst    int
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewFlight は機材の座席構成から新しいフライトを作成する
func NewFlight(flightNumber string, aircraft *Aircraft, origin, destination string,
	departureTime, arrivalTime time.Time, priceEconomy, priceBusiness, priceFirst float64) *Flight {
	now := time.Now()
	return &Flight{
		FlightNumber:      flightNumber,
		AircraftID:        aircraft.ID,
		Origin:            origin,
		Destination:       destination,
		DepartureTime:     departureTime,
		ArrivalTime:       arrivalTime,
		BasePriceEconomy:  priceEconomy,
		BasePriceBusiness: priceBusiness,
		BasePriceFirst:    priceFirst,
		AvailableEconomy:  aircraft.EconomySeats,
		AvailableBusiness: aircraft.BusinessSeats,
		AvailableFirst:    aircraft.FirstClassSeats,
		Status:            StatusScheduled,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Validate はフライトの検証を行う
func (f *Flight) Validate() error {
	if f.FlightNumber == "" {
		return ErrFlightNumberRequired
	}
	if !f.DepartureTime.Before(f.ArrivalTime) {
		return ErrInvalidFlightTime
	}
	if f.BasePriceEconomy < 0 || f.BasePriceBusiness < 0 || f.BasePriceFirst < 0 {
		return ErrInvalidPrice
	}
	if f.AvailableEconomy > 0 && f.BasePriceEconomy <= 0 {
		return ErrInvalidPrice
	}
	if f.AvailableBusiness > 0 && f.BasePriceBusiness <= 0 {
		return ErrInvalidPrice
	}
	if f.AvailableFirst > 0 && f.BasePriceFirst <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// IsBookable はフライトが予約を受け付けるかを返す
func (f *Flight) IsBookable() bool {
	return f.Status == StatusScheduled
}

// AvailableFor はクラス別の空席カウンタを返す
func (f *Flight) AvailableFor(class seat.Class) int {
	switch class {
	case seat.ClassBusiness:
		return f.AvailableBusiness
	case seat.ClassFirst:
		return f.AvailableFirst
	default:
		return f.AvailableEconomy
	}
}

// BasePriceFor はクラス別の基本価格を返す
func (f *Flight) BasePriceFor(class seat.Class) float64 {
	switch class {
	case seat.ClassBusiness:
		return f.BasePriceBusiness
	case seat.ClassFirst:
		return f.BasePriceFirst
	default:
		return f.BasePriceEconomy
	}
}
