package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-airline-reservation/internal/application"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/loyalty"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/passenger"
)

type PassengerHandler struct {
	service PassengerServiceInterface
}

func NewPassengerHandler(s PassengerServiceInterface) *PassengerHandler {
	return &PassengerHandler{service: s}
}

type CreatePassengerRequest struct {
	FirstName      string    `json:"first_name" validate:"required" example:"Taro"`
	LastName       string    `json:"last_name" validate:"required" example:"Yamada"`
	Email          string    `json:"email" validate:"omitempty,email" example:"taro@example.com"`
	DateOfBirth    time.Time `json:"date_of_birth"`
	PassportNumber string    `json:"passport_number" validate:"required" example:"TK1234567"`
	Nationality    string    `json:"nationality" example:"JP"`
	Phone          string    `json:"phone" example:"+81-90-0000-0000"`
}

type PassengerResponse struct {
	ID             int64     `json:"id" example:"1"`
	FirstName      string    `json:"first_name" example:"Taro"`
	LastName       string    `json:"last_name" example:"Yamada"`
	Email          string    `json:"email" example:"taro@example.com"`
	DateOfBirth    time.Time `json:"date_of_birth"`
	PassportNumber string    `json:"passport_number" example:"TK1234567"`
	Nationality    string    `json:"nationality" example:"JP"`
	Phone          string    `json:"phone" example:"+81-90-0000-0000"`
}

func toPassengerResponse(p *passenger.Passenger) PassengerResponse {
	return PassengerResponse{
		ID: p.ID, FirstName: p.FirstName, LastName: p.LastName,
		Email: p.Email, DateOfBirth: p.DateOfBirth,
		PassportNumber: p.PassportNumber, Nationality: p.Nationality, Phone: p.Phone,
	}
}

type LoyaltyAccountResponse struct {
	ID               int64      `json:"id" example:"1"`
	PassengerID      int64      `json:"passenger_id" example:"1"`
	MembershipNumber string     `json:"membership_number" example:"FF00123456"`
	Points           int        `json:"points" example:"42500"`
	Tier             string     `json:"tier" example:"silver"`
	JoinDate         time.Time  `json:"join_date"`
	LastFlightAt     *time.Time `json:"last_flight_at,omitempty"`
}

func toLoyaltyAccountResponse(a *loyalty.Account) LoyaltyAccountResponse {
	return LoyaltyAccountResponse{
		ID: a.ID, PassengerID: a.PassengerID,
		MembershipNumber: a.MembershipNumber,
		Points:           a.Points, Tier: string(a.Tier),
		JoinDate: a.JoinDate, LastFlightAt: a.LastFlightAt,
	}
}

// Create godoc
// @Summary 搭乗者を登録
// @Description 搭乗者とそのマイレージ口座を登録します
// @Tags passengers
// @Accept json
// @Produce json
// @Param request body CreatePassengerRequest true "搭乗者情報"
// @Success 201 {object} PassengerResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "パスポート番号が重複"
// @Router /passengers [post]
func (h *PassengerHandler) Create(c echo.Context) error {
	var req CreatePassengerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.CreatePassenger(c.Request().Context(), application.CreatePassengerInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		DateOfBirth:    req.DateOfBirth,
		PassportNumber: req.PassportNumber,
		Nationality:    req.Nationality,
		Phone:          req.Phone,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, toPassengerResponse(p))
}

// GetByID godoc
// @Summary 搭乗者を取得
// @Tags passengers
// @Produce json
// @Param id path int true "搭乗者ID"
// @Success 200 {object} PassengerResponse
// @Failure 404 {object} map[string]string
// @Router /passengers/{id} [get]
func (h *PassengerHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な搭乗者IDです")
	}
	p, err := h.service.GetPassenger(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toPassengerResponse(p))
}

// List godoc
// @Summary 搭乗者一覧を取得
// @Tags passengers
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} PassengerResponse
// @Router /passengers [get]
func (h *PassengerHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	passengers, err := h.service.ListPassengers(c.Request().Context(), limit, offset)
	if err != nil {
		return httpError(err)
	}
	resp := make([]PassengerResponse, len(passengers))
	for i, p := range passengers {
		resp[i] = toPassengerResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetLoyaltyAccount godoc
// @Summary マイレージ口座を取得
// @Description 搭乗者のマイレージ口座（ポイント・ティア）を取得します
// @Tags passengers
// @Produce json
// @Param id path int true "搭乗者ID"
// @Success 200 {object} LoyaltyAccountResponse
// @Failure 404 {object} map[string]string
// @Router /passengers/{id}/loyalty [get]
func (h *PassengerHandler) GetLoyaltyAccount(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な搭乗者IDです")
	}
	account, err := h.service.GetLoyaltyAccount(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toLoyaltyAccountResponse(account))
}
