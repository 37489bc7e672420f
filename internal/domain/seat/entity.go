package seat

// Class は座席クラスを表す
type Class string

const (
	ClassEconomy  Class = "economy"
	ClassBusiness Class = "business"
	ClassFirst    Class = "first"
)

// Valid は座席クラスが定義済みの値かを返す
func (c Class) Valid() bool {
	switch c {
	case ClassEconomy, ClassBusiness, ClassFirst:
		return true
	}
	return false
}

// Seat は座席エンティティを表す
type Seat struct {
	ID          int64
	FlightID    int64
	SeatNumber  string
	Class       Class
	IsAvailable bool
	IsWindow    bool
	IsAisle     bool
}

// NewSeat は新しい座席を作成する
func NewSeat(flightID int64, seatNumber string, class Class, isWindow, isAisle bool) *Seat {
	return &Seat{
		FlightID:    flightID,
		SeatNumber:  seatNumber,
		Class:       class,
		IsAvailable: true,
		IsWindow:    isWindow,
		IsAisle:     isAisle,
	}
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.FlightID == 0 {
		return ErrFlightIDRequired
	}
	if s.SeatNumber == "" {
		return ErrSeatNumberRequired
	}
	if !s.Class.Valid() {
		return ErrInvalidSeatClass
	}
	return nil
}
