package loyalty

import (
	"context"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

// Repository はマイレージ口座リポジトリのインターフェース
type Repository interface {
	// Create は新しい口座を作成する（トランザクション必須）
	// 会員番号が衝突した場合は ErrMembershipConflict を返す
	Create(ctx context.Context, tx transaction.Tx, a *Account) error

	// GetByPassenger は搭乗者IDから口座を取得する
	GetByPassenger(ctx context.Context, passengerID int64) (*Account, error)

	// GetByPassengerTx はトランザクション内で口座を取得する
	// 決済エンジンがポイント加算のために使用する
	GetByPassengerTx(ctx context.Context, tx transaction.Tx, passengerID int64) (*Account, error)

	// MembershipExistsTx はトランザクション内で会員番号の使用有無を確認する
	MembershipExistsTx(ctx context.Context, tx transaction.Tx, membershipNumber string) (bool, error)

	// UpdateTx はポイント・ティア・最終搭乗日時を更新する（トランザクション必須）
	UpdateTx(ctx context.Context, tx transaction.Tx, a *Account) error
}
