package payment

import (
	"context"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

// Repository は決済リポジトリのインターフェース
type Repository interface {
	// Create は新しい決済レコードを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, p *Payment) error

	// GetByID はIDから決済を取得する
	GetByID(ctx context.Context, id int64) (*Payment, error)

	// GetByIDTx はトランザクション内で決済を取得する
	GetByIDTx(ctx context.Context, tx transaction.Tx, id int64) (*Payment, error)

	// GetByBookingID は予約IDから決済を取得する
	GetByBookingID(ctx context.Context, bookingID int64) (*Payment, error)

	// ExistsForBookingTx はトランザクション内で予約に決済レコードがあるかを確認する
	// 決済エンジンの二重処理ガードに使用する
	ExistsForBookingTx(ctx context.Context, tx transaction.Tx, bookingID int64) (bool, error)

	// GetByTransactionID は取引IDから決済を取得する
	GetByTransactionID(ctx context.Context, transactionID string) (*Payment, error)

	// UpdateStatus は決済の状態を更新する（トランザクション必須）
	UpdateStatus(ctx context.Context, tx transaction.Tx, id int64, status Status) error
}
