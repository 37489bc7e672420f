package transaction

import (
	"context"
	"errors"
	"fmt"
)

// Level はトランザクションの分離レベルを表す
type Level int

const (
	// LevelDefault は通常の読み書き用（READ COMMITTED）
	LevelDefault Level = iota
	// LevelSerializable は予約・決済のクリティカルセクション用（SERIALIZABLE）
	LevelSerializable
)

// ErrSerializationConflict は直列化異常によるトランザクション中断を表す
// リトライの判断は呼び出し側が行う。エンジン内部では決してリトライしない
var ErrSerializationConflict = errors.New("トランザクションの直列化競合が発生しました")

// Tx はトランザクションを表すインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Tx interface {
	// Commit はトランザクションをコミットする
	Commit() error
	// Rollback はトランザクションをロールバックする
	Rollback() error
}

// Manager はトランザクションを管理するインターフェース
type Manager interface {
	// Begin は指定した分離レベルで新しいトランザクションを開始する
	Begin(ctx context.Context, level Level) (Tx, error)
}

// Run はトランザクション内で fn を実行する
// fn が正常に返ればコミット、エラーを返せばロールバックして伝播する
func Run(ctx context.Context, m Manager, level Level, fn func(tx Tx) error) error {
	tx, err := m.Begin(ctx, level)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}
