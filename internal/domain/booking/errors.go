package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound     = errors.New("予約が見つかりません")
	ErrInvalidBookingState = errors.New("予約の状態が不正です")
	ErrReferenceConflict   = errors.New("予約番号は既に使用されています")
	ErrPassengerIDRequired = errors.New("搭乗者IDは必須です")
	ErrFlightIDRequired    = errors.New("フライトIDは必須です")
	ErrInvalidSeatClass    = errors.New("無効な座席クラスです")
	ErrInvalidPrice        = errors.New("価格は0より大きい必要があります")
)
