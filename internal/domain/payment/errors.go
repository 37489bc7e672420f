package payment

import "errors"

// Payment ドメインのエラー定義
var (
	ErrPaymentNotFound       = errors.New("決済が見つかりません")
	ErrPaymentFailed         = errors.New("決済に失敗しました")
	ErrInvalidPaymentState   = errors.New("決済の状態が不正です")
	ErrRefundFailed          = errors.New("返金処理に失敗しました")
	ErrBookingIDRequired     = errors.New("予約IDは必須です")
	ErrTransactionIDRequired = errors.New("取引IDは必須です")
	ErrInvalidAmount         = errors.New("金額は0より大きい必要があります")
	ErrMethodRequired        = errors.New("決済方法は必須です")
)
