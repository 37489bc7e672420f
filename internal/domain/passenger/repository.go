package passenger

import (
	"context"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

// Repository は搭乗者リポジトリのインターフェース
type Repository interface {
	// Create は新しい搭乗者を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, p *Passenger) error

	// GetByID はIDから搭乗者を取得する
	GetByID(ctx context.Context, id int64) (*Passenger, error)

	// ExistsTx はトランザクション内で搭乗者の存在を確認する
	ExistsTx(ctx context.Context, tx transaction.Tx, id int64) (bool, error)

	// GetByPassport はパスポート番号から搭乗者を取得する
	GetByPassport(ctx context.Context, passportNumber string) (*Passenger, error)

	// List は搭乗者一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Passenger, error)
}
