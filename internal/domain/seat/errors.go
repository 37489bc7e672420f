package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound       = errors.New("座席が見つかりません")
	ErrSeatUnavailable    = errors.New("座席は既に確保されています")
	ErrSeatClassMismatch  = errors.New("座席クラスが一致しません")
	ErrFlightIDRequired   = errors.New("フライトIDは必須です")
	ErrSeatNumberRequired = errors.New("座席番号は必須です")
	ErrInvalidSeatClass   = errors.New("無効な座席クラスです")
)
