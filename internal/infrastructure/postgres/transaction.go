package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

// serializationFailureCode はPostgreSQLの直列化異常のSQLSTATE
const serializationFailureCode = "40001"

// TxWrapper は sqlx.Tx を transaction.Tx インターフェースでラップする
type TxWrapper struct {
	*sqlx.Tx
}

// Commit はトランザクションをコミットする
// SERIALIZABLEトランザクションはコミット時に直列化異常で中断されることがある
func (t *TxWrapper) Commit() error {
	if err := t.Tx.Commit(); err != nil {
		return mapSerializationError(err)
	}
	return nil
}

// Rollback はトランザクションをロールバックする
func (t *TxWrapper) Rollback() error {
	return t.Tx.Rollback()
}

// TxManager は sqlx.DB を使用したトランザクションマネージャー
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager は新しい TxManager を作成する
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin は指定した分離レベルで新しいトランザクションを開始する
func (m *TxManager) Begin(ctx context.Context, level transaction.Level) (transaction.Tx, error) {
	var opts *sql.TxOptions
	if level == transaction.LevelSerializable {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	tx, err := m.db.BeginTxx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &TxWrapper{Tx: tx}, nil
}

// UnwrapTx は transaction.Tx から sqlx.Tx を取り出す
// リポジトリ実装で使用する
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if wrapper, ok := tx.(*TxWrapper); ok {
		return wrapper.Tx
	}
	return nil
}

// mapSerializationError はSQLSTATE 40001 を transaction.ErrSerializationConflict に変換する
func mapSerializationError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == serializationFailureCode {
		return fmt.Errorf("%w: %v", transaction.ErrSerializationConflict, err)
	}
	return err
}

// isUniqueViolation はSQLSTATE 23505（一意制約違反）かを返す
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

var _ transaction.Manager = (*TxManager)(nil)
