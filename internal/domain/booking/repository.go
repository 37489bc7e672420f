package booking

import (
	"context"
	"time"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	// 予約番号が衝突した場合は ErrReferenceConflict を返す
	Create(ctx context.Context, tx transaction.Tx, b *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id int64) (*Booking, error)

	// GetByIDTx はトランザクション内で予約を取得する
	// 決済エンジンが pending 状態を再確認するために使用する
	GetByIDTx(ctx context.Context, tx transaction.Tx, id int64) (*Booking, error)

	// GetByReference は予約番号から予約を取得する
	GetByReference(ctx context.Context, reference string) (*Booking, error)

	// ReferenceExistsTx はトランザクション内で予約番号の使用有無を確認する
	ReferenceExistsTx(ctx context.Context, tx transaction.Tx, reference string) (bool, error)

	// ListByPassenger は搭乗者の予約一覧を取得する
	ListByPassenger(ctx context.Context, passengerID int64, limit, offset int) ([]*Booking, error)

	// ListActiveByFlightTx はフライトの pending / confirmed 予約を取得する（トランザクション必須）
	ListActiveByFlightTx(ctx context.Context, tx transaction.Tx, flightID int64) ([]*Booking, error)

	// ListStalePending は指定時間より古い pending 予約のIDを取得する
	ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]int64, error)

	// UpdateStatus は予約の状態を更新する（トランザクション必須）
	UpdateStatus(ctx context.Context, tx transaction.Tx, id int64, status Status) error
}
