package flight

import "errors"

// Flight ドメインのエラー定義
var (
	ErrFlightNotFound        = errors.New("フライトが見つかりません")
	ErrFlightNotBookable     = errors.New("フライトは予約を受け付けていません")
	ErrNoAvailability        = errors.New("指定クラスの空席がありません")
	ErrFlightNumberRequired  = errors.New("フライト番号は必須です")
	ErrFlightNumberConflict  = errors.New("フライト番号は既に使用されています")
	ErrInvalidFlightTime     = errors.New("出発時刻は到着時刻より前である必要があります")
	ErrInvalidPrice          = errors.New("価格は0より大きい必要があります")
	ErrAircraftNotFound      = errors.New("機材が見つかりません")
	ErrAircraftModelRequired = errors.New("機材モデルは必須です")
	ErrInvalidSeatCount      = errors.New("座席数の構成が不正です")
)
