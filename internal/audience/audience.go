// 包 audience：基于人口基数、简报权重与确定性抖动估算目标受众人数
package audience

import (
	"math"

	"geo-signals/internal/briefing"
	"geo-signals/internal/numeric"
	"geo-signals/internal/weighting"
)

const (
	JitterMin = 0.85
	JitterMax = 1.15

	ageShare        = 0.12
	ageFactorMin    = 0.12
	ageFactorMax    = 0.6
	ageFactorAbsent = 0.35
	singleGender    = 0.5
)

// 文档注释：受众估算
// 背景：每个年龄段占人口固定份额，单一性别约占一半；乘以简报权重与按种子确定的抖动。
// 约束：人口为空或 ≤0 时返回 nil，绝不凭空生成数字；相同 (population, briefing, seedKey) 恒得相同结果。
func Estimate(population *float64, b briefing.Briefing, seedKey string) *float64 {
	if population == nil || *population <= 0 || math.IsNaN(*population) || math.IsInf(*population, 0) {
		return nil
	}
	v := math.Round(*population * GenderFactor(b) * AgeFactor(b) * weighting.BriefingWeight(b) * weighting.SeededJitter(seedKey, JitterMin, JitterMax))
	return &v
}

func GenderFactor(b briefing.Briefing) float64 {
	if b.TargetsSingleGender() {
		return singleGender
	}
	return 1.0
}

func AgeFactor(b briefing.Briefing) float64 {
	n := len(b.TargetAgeRanges)
	if n == 0 {
		return ageFactorAbsent
	}
	return numeric.Clamp(float64(n)*ageShare, ageFactorMin, ageFactorMax)
}
