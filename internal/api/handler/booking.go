package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-airline-reservation/internal/application"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	PassengerID int64  `json:"passenger_id" validate:"required" example:"1"`
	FlightID    int64  `json:"flight_id" validate:"required" example:"10"`
	SeatClass   string `json:"seat_class" validate:"required,oneof=economy business first" example:"economy"`
	SeatNumber  string `json:"seat_number,omitempty" example:"12A"`
}

type BookingResponse struct {
	ID          int64     `json:"id" example:"1"`
	Reference   string    `json:"booking_reference" example:"A1B2C3"`
	PassengerID int64     `json:"passenger_id" example:"1"`
	FlightID    int64     `json:"flight_id" example:"10"`
	SeatID      *int64    `json:"seat_id,omitempty" example:"77"`
	SeatClass   string    `json:"seat_class" example:"economy"`
	Price       float64   `json:"price" example:"85000"`
	Status      string    `json:"status" example:"pending"`
	BookingDate time.Time `json:"booking_date"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID, Reference: b.Reference,
		PassengerID: b.PassengerID, FlightID: b.FlightID,
		SeatID: b.SeatID, SeatClass: string(b.SeatClass),
		Price: b.Price, Status: string(b.Status),
		BookingDate: b.BookingDate,
	}
}

// Create godoc
// @Summary 座席を予約
// @Description 座席を確保しpending状態の予約を作成します。座席番号を省略すると自動割当されます
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "満席・座席確保済み・直列化競合"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.ReserveSeat(c.Request().Context(), application.ReserveSeatInput{
		PassengerID: req.PassengerID,
		FlightID:    req.FlightID,
		Class:       seat.Class(req.SeatClass),
		SeatNumber:  req.SeatNumber,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// GetByID godoc
// @Summary 予約を取得
// @Description 指定IDの予約を取得します
// @Tags bookings
// @Produce json
// @Param id path int true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な予約IDです")
	}
	b, err := h.service.GetBooking(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetByReference godoc
// @Summary 予約番号で予約を取得
// @Description 予約番号（英数6桁）から予約を取得します
// @Tags bookings
// @Produce json
// @Param reference path string true "予約番号"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/reference/{reference} [get]
func (h *BookingHandler) GetByReference(c echo.Context) error {
	b, err := h.service.GetBookingByReference(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetPassengerBookings godoc
// @Summary 搭乗者の予約一覧を取得
// @Description 搭乗者の予約一覧を新しい順に取得します
// @Tags bookings
// @Produce json
// @Param passenger_id path int true "搭乗者ID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Router /passengers/{passenger_id}/bookings [get]
func (h *BookingHandler) GetPassengerBookings(c echo.Context) error {
	passengerID, err := strconv.ParseInt(c.Param("passenger_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な搭乗者IDです")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	bookings, err := h.service.GetPassengerBookings(c.Request().Context(), passengerID, limit, offset)
	if err != nil {
		return httpError(err)
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルし、座席と空席カウンタを戻します
// @Tags bookings
// @Produce json
// @Param id path int true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "キャンセル不可の状態"
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な予約IDです")
	}
	b, err := h.service.CancelBooking(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}
