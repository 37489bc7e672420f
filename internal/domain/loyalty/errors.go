package loyalty

import "errors"

// Loyalty ドメインのエラー定義
var (
	ErrAccountNotFound    = errors.New("マイレージ口座が見つかりません")
	ErrMembershipConflict = errors.New("会員番号は既に使用されています")
)
