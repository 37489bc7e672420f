package gateway

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/payment"
)

// 拒否時のエラーコード
const (
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeCardDeclined      = "CARD_DECLINED"
	CodeExpiredCard       = "EXPIRED_CARD"
	CodeNetworkError      = "NETWORK_ERROR"
)

var declineCodes = []struct {
	code    string
	message string
}{
	{CodeInsufficientFunds, "残高が不足しています"},
	{CodeCardDeclined, "カードが拒否されました"},
	{CodeExpiredCard, "カードの有効期限が切れています"},
	{CodeNetworkError, "ネットワークエラーが発生しました"},
}

const transactionIDChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MockGateway は外部決済ゲートウェイのモック実装
// 失敗率と処理遅延を設定でき、開発環境と検証で使用する
// 乱数はパッケージレベルの関数を使うため複数goroutineから同時に呼んでも安全
type MockGateway struct {
	failureRate     float64
	processingDelay time.Duration
}

// NewMockGateway は新しいMockGatewayを作成する
// failureRate は 0.0（常に承認）から 1.0（常に拒否）の範囲で指定する
func NewMockGateway(failureRate float64, processingDelay time.Duration) *MockGateway {
	return &MockGateway{
		failureRate:     failureRate,
		processingDelay: processingDelay,
	}
}

// Charge は課金をシミュレートする
// 拒否は Approved=false で返し、エラーは通信断などの例外的な失敗のみ
func (g *MockGateway) Charge(ctx context.Context, amount float64, method, reference string) (*payment.ChargeResult, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	result := &payment.ChargeResult{TransactionID: newTransactionID()}
	if rand.Float64() < g.failureRate {
		decline := declineCodes[rand.Intn(len(declineCodes))]
		result.ErrorCode = decline.code
		result.ErrorMessage = decline.message
		return result, nil
	}
	result.Approved = true
	return result, nil
}

// Refund は返金をシミュレートする
// 課金と異なり返金は常に承認される
func (g *MockGateway) Refund(ctx context.Context, transactionID string, amount float64) (*payment.RefundResult, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	return &payment.RefundResult{
		RefundTransactionID: newTransactionID(),
		Approved:            true,
	}, nil
}

func (g *MockGateway) wait(ctx context.Context) error {
	if g.processingDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(g.processingDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// newTransactionID はゲートウェイ取引IDを採番する（TXN + 英数字12桁）
func newTransactionID() string {
	var sb strings.Builder
	sb.WriteString("TXN")
	for i := 0; i < 12; i++ {
		sb.WriteByte(transactionIDChars[rand.Intn(len(transactionIDChars))])
	}
	return sb.String()
}

var _ payment.Gateway = (*MockGateway)(nil)
