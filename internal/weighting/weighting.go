// 包 weighting：简报属性到乘性权重的纯函数映射，以及确定性伪随机抖动
package weighting

import (
	"strings"

	"geo-signals/internal/briefing"
	"geo-signals/internal/numeric"
)

const (
	BriefingWeightMin = 0.6
	BriefingWeightMax = 1.6
)

// 文档注释：权重表
// 背景：经营模式/市场定位/目标三类偏好各自对受众规模做乘性修正；未知或缺失输入一律为 1.0。
// 约束：键按 normKey 归一化，"ClientVisit"、"client_visit"、"client-visit" 等价。
var (
	operationalWeights = map[string]float64{
		normKey(string(briefing.ModelDigital)):     1.15,
		normKey(string(briefing.ModelClientVisit)): 1.05,
		normKey(string(briefing.ModelItinerant)):   1.1,
		normKey(string(briefing.ModelShopping)):    1.0,
		normKey(string(briefing.ModelFixed)):       0.95,
		normKey(string(briefing.ModelInvestor)):    0.9,
	}
	marketWeights = map[string]float64{
		normKey(string(briefing.MarketPopular)):     1.15,
		normKey(string(briefing.MarketCostBenefit)): 1.05,
		normKey(string(briefing.MarketPremium)):     0.9,
		normKey(string(briefing.MarketLuxury)):      0.8,
	}
	objectiveWeights = map[string]float64{
		normKey(string(briefing.ObjectiveDominateRegion)): 1.1,
		normKey(string(briefing.ObjectiveSellMore)):       1.0,
		normKey(string(briefing.ObjectiveFindSpot)):       0.95,
		normKey(string(briefing.ObjectiveValidateIdea)):   0.85,
	}
)

func OperationalWeight(m briefing.OperationalModel) float64 {
	return lookup(operationalWeights, string(m))
}

func MarketWeight(p briefing.MarketPositioning) float64 {
	return lookup(marketWeights, string(p))
}

func ObjectiveWeight(o briefing.Objective) float64 {
	return lookup(objectiveWeights, string(o))
}

// 文档注释：简报综合权重
// 约束：三项乘积夹到 [0.6,1.6]，避免复合乘数使受众估算偏离原始人口过远。
func BriefingWeight(b briefing.Briefing) float64 {
	w := OperationalWeight(b.OperationalModel) * MarketWeight(b.MarketPositioning) * ObjectiveWeight(b.Objective)
	return numeric.Clamp(w, BriefingWeightMin, BriefingWeightMax)
}

// IsModel / IsObjective：归一化比较，供流量合成等模块使用
func IsModel(m briefing.OperationalModel, want briefing.OperationalModel) bool {
	return normKey(string(m)) == normKey(string(want))
}

func IsObjective(o briefing.Objective, want briefing.Objective) bool {
	return normKey(string(o)) == normKey(string(want))
}

func lookup(tbl map[string]float64, k string) float64 {
	if w, ok := tbl[normKey(k)]; ok {
		return w
	}
	return 1.0
}

func normKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r := strings.NewReplacer("_", "", "-", "", " ", "")
	return r.Replace(s)
}
