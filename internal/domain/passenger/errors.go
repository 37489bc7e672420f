package passenger

import "errors"

// Passenger ドメインのエラー定義
var (
	ErrPassengerNotFound = errors.New("搭乗者が見つかりません")
	ErrPassportConflict  = errors.New("パスポート番号は既に登録されています")
	ErrNameRequired      = errors.New("氏名は必須です")
	ErrPassportRequired  = errors.New("パスポート番号は必須です")
)
