package loyalty

import (
	"fmt"
	"math/rand"
	"time"
)

// Tier はロイヤルティティアを表す
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// rank はティアの順序比較用
func (t Tier) rank() int {
	switch t {
	case TierSilver:
		return 1
	case TierGold:
		return 2
	case TierPlatinum:
		return 3
	default:
		return 0
	}
}

// Account はマイレージ口座エンティティを表す
// 搭乗者と1対1で対応し、決済エンジンの確定処理のみがポイントを加算する
type Account struct {
	ID               int64
	PassengerID      int64
	MembershipNumber string
	Points           int
	Tier             Tier
	JoinDate         time.Time
	LastFlightAt     *time.Time
	UpdatedAt        time.Time
}

// NewAccount はポイント0・ブロンズの新しい口座を作成する
func NewAccount(passengerID int64) *Account {
	return &Account{
		PassengerID:      passengerID,
		MembershipNumber: NewMembershipNumber(),
		Points:           0,
		Tier:             TierBronze,
		JoinDate:         time.Now(),
		UpdatedAt:        time.Now(),
	}
}

// NewMembershipNumber は会員番号を生成する（FF + 数字8桁、一意性はストレージ層で保証）
func NewMembershipNumber() string {
	return fmt.Sprintf("FF%08d", rand.Intn(100000000))
}

// AddPoints はポイントを加算しティアを再計算する
// ティアは累計ポイントの単調関数として昇格のみ行い、降格はしない
func (a *Account) AddPoints(points int) {
	a.Points += points
	if next := TierForPoints(a.Points); next.rank() > a.Tier.rank() {
		a.Tier = next
	}
	a.UpdatedAt = time.Now()
}

// DeductPoints はポイントを減算する（下限0）
// キャンセル・返金による減算でもティアは維持する
func (a *Account) DeductPoints(points int) {
	a.Points -= points
	if a.Points < 0 {
		a.Points = 0
	}
	a.UpdatedAt = time.Now()
}

// RecordFlight は最終搭乗日時を記録する
func (a *Account) RecordFlight(at time.Time) {
	a.LastFlightAt = &at
	a.UpdatedAt = time.Now()
}
