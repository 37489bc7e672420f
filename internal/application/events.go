package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-reservation/internal/infrastructure/kafka"
	"github.com/sanosuguru/go-airline-reservation/internal/pkg/logger"
)

// publishBookingEvent は予約ライフサイクルイベントをベストエフォートで発行する
// コミット後の通知であり、発行失敗は予約結果に影響させない
func publishBookingEvent(ctx context.Context, producer *kafka.Producer, eventType string, b *booking.Booking) {
	if producer == nil {
		return
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		Reference:  b.Reference,
		FlightID:   b.FlightID,
		SeatClass:  string(b.SeatClass),
		Status:     string(b.Status),
		OccurredAt: time.Now(),
	}
	if err := producer.Publish(ctx, event); err != nil {
		logger.Warn("予約イベントの発行に失敗",
			zap.String("type", eventType),
			zap.String("booking_reference", b.Reference),
			zap.Error(err),
		)
	}
}
