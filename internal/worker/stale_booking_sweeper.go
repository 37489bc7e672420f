package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-airline-reservation/internal/pkg/logger"
)

// BookingExpirer は滞留したpending予約を失効させるインターフェース
type BookingExpirer interface {
	ExpireStalePendingBookings(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// StaleBookingSweeper は決済されないまま放置された予約を定期的に失効させるワーカー
type StaleBookingSweeper struct {
	bookingService BookingExpirer
	interval       time.Duration
	expireAfter    time.Duration
	batchSize      int
	stopCh         chan struct{}
	doneCh         chan struct{}
}

// NewStaleBookingSweeper は新しいスイーパーを作成
func NewStaleBookingSweeper(
	bs BookingExpirer,
	interval time.Duration,
	expireAfter time.Duration,
	batchSize int,
) *StaleBookingSweeper {
	return &StaleBookingSweeper{
		bookingService: bs,
		interval:       interval,
		expireAfter:    expireAfter,
		batchSize:      batchSize,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start はスイーパーを開始
// interval が0以下の場合はスイーパーを無効とみなし何もせず戻る
func (s *StaleBookingSweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		logger.Info("滞留予約スイーパーは無効（intervalが0以下）")
		close(s.doneCh)
		return
	}

	logger.Info("滞留予約スイーパー開始",
		zap.Duration("interval", s.interval),
		zap.Duration("expire_after", s.expireAfter),
		zap.Int("batch_size", s.batchSize),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("滞留予約スイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("滞留予約スイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *StaleBookingSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は期限超過したpending予約を失効させる
func (s *StaleBookingSweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("滞留予約のスイープ開始")

	count, err := s.bookingService.ExpireStalePendingBookings(ctx, s.expireAfter, s.batchSize)
	if err != nil {
		log.Error("滞留予約のスイープ失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("滞留予約を失効", zap.Int("count", count))
	} else {
		log.Debug("滞留予約なし")
	}
}
