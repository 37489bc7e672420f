package seat

import (
	"context"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

// Repository は座席リポジトリのインターフェース
type Repository interface {
	// CreateBulk は複数の座席を一括作成する（トランザクション必須）
	CreateBulk(ctx context.Context, tx transaction.Tx, seats []*Seat) error

	// GetByID はIDから座席を取得する
	GetByID(ctx context.Context, id int64) (*Seat, error)

	// GetByFlightID はフライトIDから座席一覧を取得する
	GetByFlightID(ctx context.Context, flightID int64) ([]*Seat, error)

	// GetByNumberTx はトランザクション内でフライトIDと座席番号から座席を取得する
	GetByNumberTx(ctx context.Context, tx transaction.Tx, flightID int64, seatNumber string) (*Seat, error)

	// Reserve はテストアンドセット更新で座席を確保する（トランザクション必須）
	// 更新行数が0の場合は ErrSeatUnavailable を返す
	Reserve(ctx context.Context, tx transaction.Tx, seatID int64) error

	// ReserveNextAvailable は指定クラスの最も若い番号の空席を確保する（トランザクション必須）
	// 空席がない場合は ErrSeatUnavailable を返す
	ReserveNextAvailable(ctx context.Context, tx transaction.Tx, flightID int64, class Class) (*Seat, error)

	// Release は座席を解放する（トランザクション必須）
	Release(ctx context.Context, tx transaction.Tx, seatID int64) error

	// CountAvailable はフライトの指定クラスの空席数を取得する
	CountAvailable(ctx context.Context, flightID int64, class Class) (int, error)
}
