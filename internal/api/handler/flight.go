package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-airline-reservation/internal/application"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/flight"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
)

type FlightHandler struct {
	service FlightServiceInterface
}

func NewFlightHandler(s FlightServiceInterface) *FlightHandler {
	return &FlightHandler{service: s}
}

type CreateAircraftRequest struct {
	Model           string `json:"model" validate:"required" example:"787-9"`
	Manufacturer    string `json:"manufacturer" example:"Boeing"`
	EconomySeats    int    `json:"economy_seats" validate:"min=0" example:"200"`
	BusinessSeats   int    `json:"business_seats" validate:"min=0" example:"40"`
	FirstClassSeats int    `json:"first_class_seats" validate:"min=0" example:"8"`
}

type AircraftResponse struct {
	ID              int64  `json:"id" example:"1"`
	Model           string `json:"model" example:"787-9"`
	Manufacturer    string `json:"manufacturer" example:"Boeing"`
	TotalSeats      int    `json:"total_seats" example:"248"`
	EconomySeats    int    `json:"economy_seats" example:"200"`
	BusinessSeats   int    `json:"business_seats" example:"40"`
	FirstClassSeats int    `json:"first_class_seats" example:"8"`
}

func toAircraftResponse(a *flight.Aircraft) AircraftResponse {
	return AircraftResponse{
		ID: a.ID, Model: a.Model, Manufacturer: a.Manufacturer,
		TotalSeats: a.TotalSeats, EconomySeats: a.EconomySeats,
		BusinessSeats: a.BusinessSeats, FirstClassSeats: a.FirstClassSeats,
	}
}

type CreateFlightRequest struct {
	FlightNumber  string    `json:"flight_number" validate:"required" example:"NH204"`
	AircraftID    int64     `json:"aircraft_id" validate:"required" example:"1"`
	Origin        string    `json:"origin" validate:"required,len=3" example:"HND"`
	Destination   string    `json:"destination" validate:"required,len=3" example:"SFO"`
	DepartureTime time.Time `json:"departure_time" validate:"required"`
	ArrivalTime   time.Time `json:"arrival_time" validate:"required"`
	PriceEconomy  float64   `json:"price_economy" validate:"min=0" example:"85000"`
	PriceBusiness float64   `json:"price_business" validate:"min=0" example:"320000"`
	PriceFirst    float64   `json:"price_first" validate:"min=0" example:"780000"`
}

type FlightResponse struct {
	ID                int64     `json:"id" example:"10"`
	FlightNumber      string    `json:"flight_number" example:"NH204"`
	AircraftID        int64     `json:"aircraft_id" example:"1"`
	Origin            string    `json:"origin" example:"HND"`
	Destination       string    `json:"destination" example:"SFO"`
	DepartureTime     time.Time `json:"departure_time"`
	ArrivalTime       time.Time `json:"arrival_time"`
	PriceEconomy      float64   `json:"price_economy" example:"85000"`
	PriceBusiness     float64   `json:"price_business" example:"320000"`
	PriceFirst        float64   `json:"price_first" example:"780000"`
	AvailableEconomy  int       `json:"available_economy" example:"120"`
	AvailableBusiness int       `json:"available_business" example:"20"`
	AvailableFirst    int       `json:"available_first" example:"8"`
	Status            string    `json:"status" example:"scheduled"`
}

func toFlightResponse(f *flight.Flight) FlightResponse {
	return FlightResponse{
		ID: f.ID, FlightNumber: f.FlightNumber, AircraftID: f.AircraftID,
		Origin: f.Origin, Destination: f.Destination,
		DepartureTime: f.DepartureTime, ArrivalTime: f.ArrivalTime,
		PriceEconomy: f.BasePriceEconomy, PriceBusiness: f.BasePriceBusiness, PriceFirst: f.BasePriceFirst,
		AvailableEconomy: f.AvailableEconomy, AvailableBusiness: f.AvailableBusiness, AvailableFirst: f.AvailableFirst,
		Status: string(f.Status),
	}
}

type SeatResponse struct {
	ID          int64  `json:"id" example:"77"`
	FlightID    int64  `json:"flight_id" example:"10"`
	SeatNumber  string `json:"seat_number" example:"12A"`
	SeatClass   string `json:"seat_class" example:"economy"`
	IsAvailable bool   `json:"is_available" example:"true"`
	IsWindow    bool   `json:"is_window" example:"true"`
	IsAisle     bool   `json:"is_aisle" example:"false"`
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	return SeatResponse{
		ID: s.ID, FlightID: s.FlightID, SeatNumber: s.SeatNumber,
		SeatClass: string(s.Class), IsAvailable: s.IsAvailable,
		IsWindow: s.IsWindow, IsAisle: s.IsAisle,
	}
}

type AvailabilityResponse struct {
	FlightID  int64  `json:"flight_id" example:"10"`
	SeatClass string `json:"seat_class" example:"economy"`
	Available int    `json:"available" example:"42"`
}

// CreateAircraft godoc
// @Summary 機材を登録
// @Description クラス別の座席構成を持つ機材を登録します
// @Tags aircraft
// @Accept json
// @Produce json
// @Param request body CreateAircraftRequest true "機材情報"
// @Success 201 {object} AircraftResponse
// @Failure 400 {object} map[string]string
// @Router /aircraft [post]
func (h *FlightHandler) CreateAircraft(c echo.Context) error {
	var req CreateAircraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	a, err := h.service.CreateAircraft(c.Request().Context(), application.CreateAircraftInput{
		Model:           req.Model,
		Manufacturer:    req.Manufacturer,
		EconomySeats:    req.EconomySeats,
		BusinessSeats:   req.BusinessSeats,
		FirstClassSeats: req.FirstClassSeats,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, toAircraftResponse(a))
}

// ListAircraft godoc
// @Summary 機材一覧を取得
// @Tags aircraft
// @Produce json
// @Success 200 {array} AircraftResponse
// @Router /aircraft [get]
func (h *FlightHandler) ListAircraft(c echo.Context) error {
	aircraft, err := h.service.ListAircraft(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	resp := make([]AircraftResponse, len(aircraft))
	for i, a := range aircraft {
		resp[i] = toAircraftResponse(a)
	}
	return c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary フライトを作成
// @Description フライトを作成し、機材の座席構成から座席を生成します
// @Tags flights
// @Accept json
// @Produce json
// @Param request body CreateFlightRequest true "フライト情報"
// @Success 201 {object} FlightResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "機材が存在しない"
// @Router /flights [post]
func (h *FlightHandler) Create(c echo.Context) error {
	var req CreateFlightRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	f, err := h.service.CreateFlight(c.Request().Context(), application.CreateFlightInput{
		FlightNumber:  req.FlightNumber,
		AircraftID:    req.AircraftID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		PriceEconomy:  req.PriceEconomy,
		PriceBusiness: req.PriceBusiness,
		PriceFirst:    req.PriceFirst,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, toFlightResponse(f))
}

// GetByID godoc
// @Summary フライトを取得
// @Tags flights
// @Produce json
// @Param id path int true "フライトID"
// @Success 200 {object} FlightResponse
// @Failure 404 {object} map[string]string
// @Router /flights/{id} [get]
func (h *FlightHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なフライトIDです")
	}
	f, err := h.service.GetFlight(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toFlightResponse(f))
}

// List godoc
// @Summary フライト一覧・検索
// @Description 出発地・到着地・出発日で絞り込めるフライト一覧を取得します
// @Tags flights
// @Produce json
// @Param origin query string false "出発地（IATAコード）"
// @Param destination query string false "到着地（IATAコード）"
// @Param date query string false "出発日（YYYY-MM-DD）"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} FlightResponse
// @Router /flights [get]
func (h *FlightHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	origin := c.QueryParam("origin")
	destination := c.QueryParam("destination")
	dateParam := c.QueryParam("date")

	var flights []*flight.Flight
	var err error
	if origin == "" && destination == "" && dateParam == "" {
		flights, err = h.service.ListFlights(c.Request().Context(), limit, offset)
	} else {
		criteria := flight.SearchCriteria{
			Origin:      origin,
			Destination: destination,
			Limit:       limit,
			Offset:      offset,
		}
		if dateParam != "" {
			date, perr := time.Parse("2006-01-02", dateParam)
			if perr != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "無効な出発日です（YYYY-MM-DD形式）")
			}
			criteria.DepartureDate = &date
		}
		flights, err = h.service.SearchFlights(c.Request().Context(), criteria)
	}
	if err != nil {
		return httpError(err)
	}

	resp := make([]FlightResponse, len(flights))
	for i, f := range flights {
		resp[i] = toFlightResponse(f)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetSeats godoc
// @Summary フライトの座席一覧を取得
// @Tags flights
// @Produce json
// @Param id path int true "フライトID"
// @Success 200 {array} SeatResponse
// @Failure 404 {object} map[string]string
// @Router /flights/{id}/seats [get]
func (h *FlightHandler) GetSeats(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なフライトIDです")
	}
	seats, err := h.service.GetFlightSeats(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetAvailability godoc
// @Summary クラス別の空席数を取得
// @Description キャッシュ優先でクラス別の空席数を返します
// @Tags flights
// @Produce json
// @Param id path int true "フライトID"
// @Param class query string true "座席クラス" Enums(economy, business, first)
// @Success 200 {object} AvailabilityResponse
// @Failure 404 {object} map[string]string
// @Router /flights/{id}/availability [get]
func (h *FlightHandler) GetAvailability(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なフライトIDです")
	}
	class := seat.Class(c.QueryParam("class"))
	count, err := h.service.GetAvailability(c.Request().Context(), id, class)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{
		FlightID:  id,
		SeatClass: string(class),
		Available: count,
	})
}

// Cancel godoc
// @Summary フライトを欠航
// @Description フライトを欠航にし、有効な予約をすべてキャンセルして座席とポイントを補償します
// @Tags flights
// @Produce json
// @Param id path int true "フライトID"
// @Success 200 {object} FlightResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "既に欠航・終了済み"
// @Router /flights/{id}/cancel [post]
func (h *FlightHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なフライトIDです")
	}
	f, err := h.service.CancelFlight(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toFlightResponse(f))
}
