// 包 choropleth：分位数分级着色
package choropleth

import (
	"math"
	"sort"

	"geo-signals/internal/signals"
)

// DefaultPalette：五级顺序色板（浅→深）
var DefaultPalette = []string{"#fee5d9", "#fcae91", "#fb6a4a", "#de2d26", "#a50f15"}

// FallbackColor：无值或无分级时的中性色
const FallbackColor = "#cccccc"

// Break：单个分级区间，两端闭合
type Break struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Color string  `json:"color"`
}

// 文档注释：分位数分级
// 背景：按升序排序后，第 i 级取 sorted[floor(i/K×(n-1))] 到 sorted[floor((i+1)/K×(n-1))]。
// 约束：相邻区间在边界值处可重叠，查找时首个匹配胜出；输入为空或色板为空时返回空；非有限值被忽略。
func QuantileBreaks(values []float64, palette []string) []Break {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	k := len(palette)
	if len(sorted) == 0 || k == 0 {
		return []Break{}
	}
	sort.Float64s(sorted)
	last := float64(len(sorted) - 1)
	out := make([]Break, 0, k)
	for i := 0; i < k; i++ {
		lo := int(math.Floor(float64(i) / float64(k) * last))
		hi := int(math.Floor(float64(i+1) / float64(k) * last))
		out = append(out, Break{Min: sorted[lo], Max: sorted[hi], Color: palette[i]})
	}
	return out
}

// 文档注释：取值对应颜色
// 约束：线性扫描返回首个 min ≤ v ≤ max 的颜色；无匹配时返回最后一级颜色；breaks 为空或 v 为 nil 时返回 fallback。
func ColorFor(v *float64, breaks []Break, fallback string) string {
	if v == nil || len(breaks) == 0 {
		return fallback
	}
	for _, b := range breaks {
		if *v >= b.Min && *v <= b.Max {
			return b.Color
		}
	}
	return breaks[len(breaks)-1].Color
}

// Attribute：可着色的多边形属性
type Attribute string

const (
	AttrPopulation Attribute = "population"
	AttrIncome     Attribute = "income"
	AttrAudience   Attribute = "targetAudienceEstimate"
	AttrScore      Attribute = "score"
)

// Value：取多边形属性值，缺失返回 nil
func Value(p signals.Polygon, attr Attribute) *float64 {
	switch attr {
	case AttrPopulation:
		return p.Properties.Population
	case AttrIncome:
		return p.Properties.Income
	case AttrAudience:
		return p.Properties.TargetAudienceEstimate
	case AttrScore:
		if p.Properties.Score != nil {
			f := float64(*p.Properties.Score)
			return &f
		}
	}
	return nil
}

// Legend：图例与逐多边形颜色（键为多边形 ID）
type Legend struct {
	Attribute Attribute         `json:"attribute"`
	Breaks    []Break           `json:"breaks"`
	Colors    map[string]string `json:"colors"`
}

// BuildLegend：基于多边形集合计算图例；无值时 Breaks 为空、颜色均为 fallback
func BuildLegend(polys []signals.Polygon, attr Attribute, palette []string, fallback string) Legend {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	var vals []float64
	for _, p := range polys {
		if v := Value(p, attr); v != nil {
			vals = append(vals, *v)
		}
	}
	lg := Legend{Attribute: attr, Breaks: QuantileBreaks(vals, palette), Colors: make(map[string]string, len(polys))}
	for _, p := range polys {
		lg.Colors[p.Properties.ID] = ColorFor(Value(p, attr), lg.Breaks, fallback)
	}
	return lg
}
