package payment

import "context"

// ChargeResult は決済ゲートウェイの課金結果を表す
// Approved が false の場合も TransactionID は監査用に採番される
type ChargeResult struct {
	TransactionID string
	Approved      bool
	ErrorCode     string
	ErrorMessage  string
}

// RefundResult は決済ゲートウェイの返金結果を表す
type RefundResult struct {
	RefundTransactionID string
	Approved            bool
}

// Gateway は外部決済ゲートウェイのインターフェース
// 決済エンジンからはブラックボックスとして扱う
type Gateway interface {
	// Charge は課金を実行する
	// ゲートウェイ側の拒否（残高不足等）は Approved=false で返り、エラーにはならない
	Charge(ctx context.Context, amount float64, method, reference string) (*ChargeResult, error)

	// Refund は課金済みの取引を返金する
	Refund(ctx context.Context, transactionID string, amount float64) (*RefundResult, error)
}
