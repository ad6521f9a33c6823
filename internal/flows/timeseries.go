package flows

import (
	"math"

	"geo-signals/internal/briefing"
	"geo-signals/internal/numeric"
	"geo-signals/internal/provenance"
	"geo-signals/internal/signals"
	"geo-signals/internal/weighting"
)

const HoursPerWeek = 168

// 文档注释：周内 168 小时活跃度曲线
// 背景：午间与傍晚双峰；线上业务傍晚峰后移至 21 时，购物中心模式周末增强。
// 约束：纯函数，相同简报得到相同序列；Real-Only 下返回空；值域 [0,1]，索引 0 为周一 0 时。
func Weekly(br briefing.Briefing, policy provenance.Policy) []signals.TimePoint {
	out := []signals.TimePoint{}
	if !policy.AllowsDerived() {
		return out
	}
	evening := 19.0
	if weighting.IsModel(br.OperationalModel, briefing.ModelDigital) {
		evening = 21
	}
	weekend := [2]float64{0.9, 0.7}
	if weighting.IsModel(br.OperationalModel, briefing.ModelShopping) {
		weekend = [2]float64{1.1, 1.0}
	}
	prov := provenance.NewDerived("activity-model", "weekly-double-peak")
	for i := 0; i < HoursPerWeek; i++ {
		day, h := i/24, float64(i%24)
		v := 0.1 + 0.5*math.Exp(-(h-12)*(h-12)/8) + 0.55*math.Exp(-(h-evening)*(h-evening)/6)
		switch day {
		case 5:
			v *= weekend[0]
		case 6:
			v *= weekend[1]
		}
		out = append(out, signals.TimePoint{Hour: i, Value: round3(numeric.Clamp(v, 0, 1)), Provenance: prov})
	}
	return out
}
