package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/payment"
)

type PaymentHandler struct {
	service PaymentServiceInterface
}

func NewPaymentHandler(s PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type ProcessPaymentRequest struct {
	Method string `json:"payment_method" validate:"required,oneof=credit_card debit_card bank_transfer" example:"credit_card"`
}

type PaymentResponse struct {
	ID            int64     `json:"id" example:"1"`
	BookingID     int64     `json:"booking_id" example:"1"`
	TransactionID string    `json:"transaction_id" example:"TXN4F7K2M9PQ1AB"`
	Amount        float64   `json:"amount" example:"85000"`
	Method        string    `json:"payment_method" example:"credit_card"`
	Status        string    `json:"status" example:"success"`
	PaymentDate   time.Time `json:"payment_date"`
}

func toPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID: p.ID, BookingID: p.BookingID,
		TransactionID: p.TransactionID, Amount: p.Amount,
		Method: p.Method, Status: string(p.Status),
		PaymentDate: p.PaymentDate,
	}
}

// Process godoc
// @Summary 予約の決済を実行
// @Description pending予約の決済を実行します。承認されると予約が確定しポイントが加算されます。
// @Description 拒否された場合は予約がキャンセルされ座席が解放されます（支払い記録は残ります）
// @Tags payments
// @Accept json
// @Produce json
// @Param id path int true "予約ID"
// @Param request body ProcessPaymentRequest true "決済情報"
// @Success 201 {object} PaymentResponse
// @Failure 402 {object} map[string]string "決済拒否"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "二重決済・状態不正・直列化競合"
// @Router /bookings/{id}/payment [post]
func (h *PaymentHandler) Process(c echo.Context) error {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な予約IDです")
	}
	var req ProcessPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.ProcessBookingPayment(c.Request().Context(), bookingID, req.Method)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, toPaymentResponse(p))
}

// GetByID godoc
// @Summary 決済を取得
// @Description 指定IDの決済を取得します
// @Tags payments
// @Produce json
// @Param id path int true "決済ID"
// @Success 200 {object} PaymentResponse
// @Failure 404 {object} map[string]string
// @Router /payments/{id} [get]
func (h *PaymentHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な決済IDです")
	}
	p, err := h.service.GetPayment(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}

// GetByBooking godoc
// @Summary 予約の決済を取得
// @Description 予約IDに対応する決済を取得します
// @Tags payments
// @Produce json
// @Param id path int true "予約ID"
// @Success 200 {object} PaymentResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id}/payment [get]
func (h *PaymentHandler) GetByBooking(c echo.Context) error {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な予約IDです")
	}
	p, err := h.service.GetBookingPayment(c.Request().Context(), bookingID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}

// Refund godoc
// @Summary 決済を返金
// @Description 成功済みの決済を返金します。予約が確定状態の場合はキャンセルし座席とポイントを戻します
// @Tags payments
// @Produce json
// @Param id path int true "決済ID"
// @Success 200 {object} PaymentResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "返金不可の状態"
// @Router /payments/{id}/refund [post]
func (h *PaymentHandler) Refund(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な決済IDです")
	}
	p, err := h.service.RefundPayment(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}
