package loyalty

import (
	"math"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
)

// ティア昇格の累計ポイント閾値
const (
	silverThreshold   = 25000
	goldThreshold     = 50000
	platinumThreshold = 100000
)

// ClassMultiplier は座席クラスのポイント倍率を返す
func ClassMultiplier(class seat.Class) float64 {
	switch class {
	case seat.ClassBusiness:
		return 2.0
	case seat.ClassFirst:
		return 3.0
	default:
		return 1.0
	}
}

// Multiplier はティアのポイント倍率を返す
func (t Tier) Multiplier() float64 {
	switch t {
	case TierSilver:
		return 1.25
	case TierGold:
		return 1.5
	case TierPlatinum:
		return 2.0
	default:
		return 1.0
	}
}

// PointsEarned は運賃・座席クラス・現在ティアから獲得ポイントを計算する純粋関数
// points = round(price × classMultiplier × tierMultiplier)
func PointsEarned(price float64, class seat.Class, tier Tier) int {
	return int(math.Round(price * ClassMultiplier(class) * tier.Multiplier()))
}

// TierForPoints は累計ポイントに対応するティアを返す
func TierForPoints(points int) Tier {
	switch {
	case points >= platinumThreshold:
		return TierPlatinum
	case points >= goldThreshold:
		return TierGold
	case points >= silverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}
