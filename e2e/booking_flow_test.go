package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-airline-reservation/internal/api"
	"github.com/sanosuguru/go-airline-reservation/internal/api/handler"
	"github.com/sanosuguru/go-airline-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-airline-reservation/internal/application"
	"github.com/sanosuguru/go-airline-reservation/internal/config"
	"github.com/sanosuguru/go-airline-reservation/internal/infrastructure/gateway"
	"github.com/sanosuguru/go-airline-reservation/internal/infrastructure/postgres"
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo    *echo.Echo
	Cleanup func()
}

// NewTestServer はテスト用サーバーを作成
// 決済ゲートウェイは失敗率0で固定し、決済は常に承認される
func NewTestServer(t *testing.T) *TestServer {
	cfg := config.Load()

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		t.Skipf("DB接続エラー: %v", err)
	}
	if err := postgres.RunMigrations(db.DB, "../migrations"); err != nil {
		db.Close()
		t.Skipf("マイグレーションエラー: %v", err)
	}

	txManager := postgres.NewTxManager(db)
	bookingRepo := postgres.NewBookingRepository(db)
	flightRepo := postgres.NewFlightRepository(db)
	seatRepo := postgres.NewSeatRepository(db)
	passengerRepo := postgres.NewPassengerRepository(db)
	loyaltyRepo := postgres.NewLoyaltyRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	paymentGateway := gateway.NewMockGateway(0, 0)

	bookingService := application.NewBookingService(txManager, bookingRepo, flightRepo, seatRepo, passengerRepo, loyaltyRepo)
	paymentService := application.NewPaymentService(txManager, paymentRepo, bookingRepo, flightRepo, seatRepo, loyaltyRepo, paymentGateway)
	flightService := application.NewFlightService(txManager, flightRepo, seatRepo, bookingRepo, loyaltyRepo)
	passengerService := application.NewPassengerService(txManager, passengerRepo, loyaltyRepo)

	flightHandler := handler.NewFlightHandler(flightService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	passengerHandler := handler.NewPassengerHandler(passengerService)
	healthHandler := handler.NewHealthHandler()

	e := echo.New()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Validator = api.NewValidator()
	middleware.SetupMiddleware(e)

	e.GET("/health", healthHandler.Check)

	v1 := e.Group("/api/v1")
	v1.POST("/aircraft", flightHandler.CreateAircraft)
	v1.GET("/aircraft", flightHandler.ListAircraft)

	v1.POST("/flights", flightHandler.Create)
	v1.GET("/flights", flightHandler.List)
	v1.GET("/flights/:id", flightHandler.GetByID)
	v1.GET("/flights/:id/seats", flightHandler.GetSeats)
	v1.GET("/flights/:id/availability", flightHandler.GetAvailability)
	v1.POST("/flights/:id/cancel", flightHandler.Cancel)

	v1.POST("/bookings", bookingHandler.Create)
	v1.GET("/bookings/:id", bookingHandler.GetByID)
	v1.GET("/bookings/reference/:reference", bookingHandler.GetByReference)
	v1.POST("/bookings/:id/cancel", bookingHandler.Cancel)
	v1.POST("/bookings/:id/payment", paymentHandler.Process)
	v1.GET("/bookings/:id/payment", paymentHandler.GetByBooking)

	v1.GET("/payments/:id", paymentHandler.GetByID)
	v1.POST("/payments/:id/refund", paymentHandler.Refund)

	v1.POST("/passengers", passengerHandler.Create)
	v1.GET("/passengers", passengerHandler.List)
	v1.GET("/passengers/:id", passengerHandler.GetByID)
	v1.GET("/passengers/:id/loyalty", passengerHandler.GetLoyaltyAccount)
	v1.GET("/passengers/:passenger_id/bookings", bookingHandler.GetPassengerBookings)

	cleanup := func() {
		db.Exec("DELETE FROM payments")
		db.Exec("DELETE FROM bookings")
		db.Exec("DELETE FROM seats")
		db.Exec("DELETE FROM flights")
		db.Exec("DELETE FROM frequent_flyers")
		db.Exec("DELETE FROM passengers")
		db.Exec("DELETE FROM aircraft")
		db.Close()
	}

	return &TestServer{Echo: e, Cleanup: cleanup}
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// TestE2E_HealthCheck はヘルスチェックをテスト
func TestE2E_HealthCheck(t *testing.T) {
	server := NewTestServer(t)
	defer server.Cleanup()

	rec := server.Request("GET", "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

// TestE2E_CompleteBookingJourney は機材登録から決済・マイレージ加算までの一連の流れをテスト
func TestE2E_CompleteBookingJourney(t *testing.T) {
	server := NewTestServer(t)
	defer server.Cleanup()

	var aircraftID, flightID, passengerID, bookingID float64
	var bookingReference string

	// 1. 機材登録
	t.Run("機材登録", func(t *testing.T) {
		body := map[string]interface{}{
			"model":             "777-300ER",
			"manufacturer":      "Boeing",
			"economy_seats":     12,
			"business_seats":    6,
			"first_class_seats": 4,
		}

		rec := server.Request("POST", "/api/v1/aircraft", body)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		aircraftID = resp["id"].(float64)
		assert.Equal(t, float64(22), resp["total_seats"])
	})

	// 2. フライト作成
	t.Run("フライト作成", func(t *testing.T) {
		dep := time.Now().Add(14 * 24 * time.Hour)
		body := map[string]interface{}{
			"flight_number":  "NH110",
			"aircraft_id":    aircraftID,
			"origin":         "HND",
			"destination":    "LAX",
			"departure_time": dep.Format(time.RFC3339),
			"arrival_time":   dep.Add(10 * time.Hour).Format(time.RFC3339),
			"price_economy":  90000,
			"price_business": 350000,
			"price_first":    800000,
		}

		rec := server.Request("POST", "/api/v1/flights", body)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		flightID = resp["id"].(float64)
		assert.Equal(t, float64(12), resp["available_economy"])
	})

	// 3. 搭乗者登録
	t.Run("搭乗者登録", func(t *testing.T) {
		body := map[string]interface{}{
			"first_name":      "Hanako",
			"last_name":       "Sato",
			"email":           "hanako@example.com",
			"passport_number": fmt.Sprintf("TK%d", time.Now().UnixNano()%100000000),
			"nationality":     "JP",
		}

		rec := server.Request("POST", "/api/v1/passengers", body)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		passengerID = resp["id"].(float64)
	})

	// 4. マイレージ口座が作成されていることを確認
	t.Run("マイレージ口座確認", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/passengers/%d/loyalty", int64(passengerID))
		rec := server.Request("GET", path, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, float64(0), resp["points"])
		assert.Equal(t, "bronze", resp["tier"])
	})

	// 5. 座席予約（自動割当）
	t.Run("座席予約", func(t *testing.T) {
		body := map[string]interface{}{
			"passenger_id": passengerID,
			"flight_id":    flightID,
			"seat_class":   "economy",
		}

		rec := server.Request("POST", "/api/v1/bookings", body)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		bookingID = resp["id"].(float64)
		bookingReference = resp["booking_reference"].(string)
		assert.Equal(t, "pending", resp["status"])
		assert.Equal(t, float64(90000), resp["price"])
		assert.Len(t, bookingReference, 6)
	})

	// 6. 空席数が減っていることを確認
	t.Run("空席数減少確認", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/flights/%d/availability?class=economy", int64(flightID))
		rec := server.Request("GET", path, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, float64(11), resp["available"])
	})

	// 7. 決済実行
	t.Run("決済実行", func(t *testing.T) {
		body := map[string]interface{}{"payment_method": "credit_card"}

		path := fmt.Sprintf("/api/v1/bookings/%d/payment", int64(bookingID))
		rec := server.Request("POST", path, body)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, "success", resp["status"])
		assert.Equal(t, float64(90000), resp["amount"])
	})

	// 8. 予約が確定されていることを予約番号で確認
	t.Run("予約確定確認", func(t *testing.T) {
		path := "/api/v1/bookings/reference/" + bookingReference
		rec := server.Request("GET", path, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, "confirmed", resp["status"])
	})

	// 9. マイレージが加算されていることを確認（エコノミー90000円×ブロンズ1.0倍）
	t.Run("マイレージ加算確認", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/passengers/%d/loyalty", int64(passengerID))
		rec := server.Request("GET", path, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, float64(90000), resp["points"])
		assert.Equal(t, "gold", resp["tier"])
	})
}

// TestE2E_SeatConflict は同一座席をめぐる競合をテスト
func TestE2E_SeatConflict(t *testing.T) {
	server := NewTestServer(t)
	defer server.Cleanup()

	// セットアップ: 機材・フライト・搭乗者2名
	rec := server.Request("POST", "/api/v1/aircraft", map[string]interface{}{
		"model": "A320neo", "manufacturer": "Airbus",
		"economy_seats": 6, "business_seats": 0, "first_class_seats": 0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var aircraftResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &aircraftResp)

	dep := time.Now().Add(7 * 24 * time.Hour)
	rec = server.Request("POST", "/api/v1/flights", map[string]interface{}{
		"flight_number": "NH660", "aircraft_id": aircraftResp["id"],
		"origin": "HND", "destination": "ITM",
		"departure_time": dep.Format(time.RFC3339),
		"arrival_time":   dep.Add(time.Hour).Format(time.RFC3339),
		"price_economy":  15000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var flightResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &flightResp)
	flightID := flightResp["id"]

	passengerIDs := make([]interface{}, 2)
	for i := range passengerIDs {
		rec = server.Request("POST", "/api/v1/passengers", map[string]interface{}{
			"first_name": "Test", "last_name": fmt.Sprintf("User%d", i),
			"passport_number": fmt.Sprintf("CF%d%d", i, time.Now().UnixNano()%10000000),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		var p map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &p)
		passengerIDs[i] = p["id"]
	}

	t.Run("搭乗者Aが1Aを予約成功", func(t *testing.T) {
		rec := server.Request("POST", "/api/v1/bookings", map[string]interface{}{
			"passenger_id": passengerIDs[0], "flight_id": flightID,
			"seat_class": "economy", "seat_number": "1A",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("搭乗者Bが同じ1Aを予約しようとして409", func(t *testing.T) {
		rec := server.Request("POST", "/api/v1/bookings", map[string]interface{}{
			"passenger_id": passengerIDs[1], "flight_id": flightID,
			"seat_class": "economy", "seat_number": "1A",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("搭乗者Bは別の座席なら予約できる", func(t *testing.T) {
		rec := server.Request("POST", "/api/v1/bookings", map[string]interface{}{
			"passenger_id": passengerIDs[1], "flight_id": flightID,
			"seat_class": "economy",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

// TestE2E_CancelAndRefund は決済後のキャンセル（返金）をテスト
func TestE2E_CancelAndRefund(t *testing.T) {
	server := NewTestServer(t)
	defer server.Cleanup()

	// セットアップ
	rec := server.Request("POST", "/api/v1/aircraft", map[string]interface{}{
		"model": "A350-900", "manufacturer": "Airbus",
		"economy_seats": 4, "business_seats": 2, "first_class_seats": 0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var aircraftResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &aircraftResp)

	dep := time.Now().Add(10 * 24 * time.Hour)
	rec = server.Request("POST", "/api/v1/flights", map[string]interface{}{
		"flight_number": "NH842", "aircraft_id": aircraftResp["id"],
		"origin": "NRT", "destination": "SIN",
		"departure_time": dep.Format(time.RFC3339),
		"arrival_time":   dep.Add(7 * time.Hour).Format(time.RFC3339),
		"price_economy":  60000, "price_business": 240000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var flightResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &flightResp)
	flightID := flightResp["id"]

	rec = server.Request("POST", "/api/v1/passengers", map[string]interface{}{
		"first_name": "Jiro", "last_name": "Suzuki",
		"passport_number": fmt.Sprintf("RF%d", time.Now().UnixNano()%100000000),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var passengerResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &passengerResp)
	passengerID := passengerResp["id"]

	// 予約して決済
	rec = server.Request("POST", "/api/v1/bookings", map[string]interface{}{
		"passenger_id": passengerID, "flight_id": flightID, "seat_class": "business",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var bookingResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &bookingResp)
	bookingID := int64(bookingResp["id"].(float64))

	rec = server.Request("POST", fmt.Sprintf("/api/v1/bookings/%d/payment", bookingID),
		map[string]interface{}{"payment_method": "credit_card"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var paymentResp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &paymentResp)
	paymentID := int64(paymentResp["id"].(float64))

	t.Run("返金すると予約がキャンセルされ座席が戻る", func(t *testing.T) {
		rec := server.Request("POST", fmt.Sprintf("/api/v1/payments/%d/refund", paymentID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var refundResp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &refundResp)
		assert.Equal(t, "refunded", refundResp["status"])

		// 予約がキャンセルされている
		rec = server.Request("GET", fmt.Sprintf("/api/v1/bookings/%d", bookingID), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var b map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &b)
		assert.Equal(t, "cancelled", b["status"])

		// 空席カウンタが戻っている
		rec = server.Request("GET", fmt.Sprintf("/api/v1/flights/%v/availability?class=business", flightID), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var avail map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &avail)
		assert.Equal(t, float64(2), avail["available"])
	})

	t.Run("返金済みの決済を再度返金しようとすると409", func(t *testing.T) {
		rec := server.Request("POST", fmt.Sprintf("/api/v1/payments/%d/refund", paymentID), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
