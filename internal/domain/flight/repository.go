package flight

import (
	"context"
	"time"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

// SearchCriteria はフライト検索の条件
type SearchCriteria struct {
	Origin        string
	Destination   string
	DepartureDate *time.Time
	Limit         int
	Offset        int
}

// Repository はフライト・機材リポジトリのインターフェース
type Repository interface {
	// CreateAircraft は新しい機材を作成する
	CreateAircraft(ctx context.Context, a *Aircraft) error

	// GetAircraft はIDから機材を取得する
	GetAircraft(ctx context.Context, id int64) (*Aircraft, error)

	// ListAircraft は機材一覧を取得する
	ListAircraft(ctx context.Context) ([]*Aircraft, error)

	// Create は新しいフライトを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, f *Flight) error

	// GetByID はIDからフライトを取得する
	GetByID(ctx context.Context, id int64) (*Flight, error)

	// GetByIDTx はトランザクション内でフライトを取得する
	// 予約エンジンが空席カウンタを再読込するために使用する
	GetByIDTx(ctx context.Context, tx transaction.Tx, id int64) (*Flight, error)

	// GetByNumber はフライト番号からフライトを取得する
	GetByNumber(ctx context.Context, flightNumber string) (*Flight, error)

	// Search は条件に合致するフライトを検索する
	Search(ctx context.Context, criteria SearchCriteria) ([]*Flight, error)

	// List はフライト一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Flight, error)

	// DecrementAvailability はクラス別空席カウンタを1減らす（トランザクション必須）
	// カウンタが1以上であることをガード条件とし、更新行数が0なら ErrNoAvailability を返す
	DecrementAvailability(ctx context.Context, tx transaction.Tx, flightID int64, class seat.Class) error

	// IncrementAvailability はクラス別空席カウンタを1増やす（トランザクション必須）
	IncrementAvailability(ctx context.Context, tx transaction.Tx, flightID int64, class seat.Class) error

	// UpdateStatus はフライトの状態を更新する（トランザクション必須）
	UpdateStatus(ctx context.Context, tx transaction.Tx, flightID int64, status Status) error
}
