// 包 polygons：行政区与普查网格几何的分类、过滤与多边形信号构建
package polygons

import (
	"strconv"
	"strings"

	"geo-signals/internal/audience"
	"geo-signals/internal/briefing"
	"geo-signals/internal/geo"
	"geo-signals/internal/logger"
	"geo-signals/internal/numeric"
	"geo-signals/internal/provenance"
	"geo-signals/internal/signals"
)

// Layer：单个来源的要素集合及其种类
type Layer struct {
	Kind       signals.Kind
	Source     string
	Collection geo.FeatureCollection
}

// 文档注释：多边形构建器
// 背景：将州/市/普查网格三类原始几何归一为统一的多边形信号；几何与人口为真实数据，受众估算为叠加字段。
// 约束：Real-Only 下不附加受众估算与评分；输出按图层顺序、要素顺序排列，该顺序也是热点排序的并列裁决依据。
type Builder struct {
	Aliases numeric.AliasTable
	Policy  provenance.Policy
}

func NewBuilder(aliases numeric.AliasTable, policy provenance.Policy) *Builder {
	return &Builder{Aliases: aliases, Policy: policy}
}

// Build：按简报行政区过滤并生成多边形信号
func (b *Builder) Build(layers []Layer, br briefing.Briefing) []signals.Polygon {
	j := br.Jurisdiction()
	out := []signals.Polygon{}
	seen := map[string]int{}
	for _, layer := range layers {
		kept, skipped := 0, 0
		for i, f := range layer.Collection.Features {
			if !geo.IsAreal(f.Geometry) {
				skipped++
				continue
			}
			if !b.matchesJurisdiction(layer.Kind, f.Properties, j) {
				skipped++
				continue
			}
			id := b.uniqueID(layer.Kind, f.Properties, i, seen)
			out = append(out, b.buildOne(layer, f, id, br))
			kept++
		}
		logger.L().Debug("polygon_layer_built", "kind", layer.Kind, "source", layer.Source, "kept", kept, "skipped", skipped)
	}
	return out
}

func (b *Builder) buildOne(layer Layer, f geo.Feature, id string, br briefing.Briefing) signals.Polygon {
	props := signals.PolygonProperties{
		ID:         id,
		Kind:       layer.Kind,
		AdminLevel: signals.LevelFor(layer.Kind),
		Name:       numeric.PickString(f.Properties, b.Aliases.Name),
		Population: numeric.PickNumber(f.Properties, b.Aliases.Population),
		Income:     numeric.PickNumber(f.Properties, b.Aliases.Income),
	}
	if props.Name == "" {
		props.Name = id
	}
	if b.Policy.AllowsDerived() {
		props.TargetAudienceEstimate = audience.Estimate(props.Population, br, br.AudienceSeed(id))
		props.Score = PolygonScore(props.TargetAudienceEstimate, props.Population)
	}
	return signals.Polygon{
		Type:       "Feature",
		Geometry:   *f.Geometry,
		Properties: props,
		Provenance: provenance.NewReal(layer.Source),
		Rings:      geo.Polygons(f.Geometry),
	}
}

// 文档注释：多边形评分
// 约束：audience/max(1,population)×100 四舍五入并夹到 [1,100]；无估算时为 nil。
func PolygonScore(aud, pop *float64) *int {
	if aud == nil {
		return nil
	}
	p := 0.0
	if pop != nil {
		p = *pop
	}
	if p < 1 {
		p = 1
	}
	s := numeric.ClampInt(*aud/p*100, 1, 100)
	return &s
}

// 文档注释：行政区过滤
// 背景：IBGE 编码具层级前缀关系（州 2 位 ⊂ 市 7 位 ⊂ 网格 15 位），统一用“要素编码以简报编码为前缀”判定。
// 约束：任一侧编码无法确定时放行，缺少过滤条件不应排除数据；自定义图层不过滤。
func (b *Builder) matchesJurisdiction(kind signals.Kind, props map[string]any, j briefing.Jurisdiction) bool {
	var want, code string
	switch kind {
	case signals.KindState:
		want = j.UF
		code = numeric.DigitsOnly(numeric.PickString(props, b.Aliases.StateCode))
	case signals.KindMunicipality:
		want = j.MunicipioID
		if want == "" {
			want = j.UF
		}
		code = numeric.DigitsOnly(numeric.PickString(props, b.Aliases.MunicipalityCode))
		if code == "" && want == j.UF {
			code = numeric.DigitsOnly(numeric.PickString(props, b.Aliases.StateCode))
		}
	case signals.KindSector:
		want = j.MunicipioID
		if want == "" {
			want = j.UF
		}
		code = numeric.DigitsOnly(numeric.PickString(props, b.Aliases.SectorCode))
		if code == "" {
			code = numeric.DigitsOnly(numeric.PickString(props, b.Aliases.MunicipalityCode))
		}
	default:
		return true
	}
	if want == "" || code == "" {
		return true
	}
	return strings.HasPrefix(code, want)
}

func (b *Builder) uniqueID(kind signals.Kind, props map[string]any, idx int, seen map[string]int) string {
	raw := numeric.PickString(props, b.Aliases.ID)
	if raw == "" {
		raw = strconv.Itoa(idx)
	}
	id := idPrefix(kind) + ":" + raw
	seen[id]++
	if n := seen[id]; n > 1 {
		id += "#" + strconv.Itoa(n)
	}
	return id
}

func idPrefix(kind signals.Kind) string {
	switch kind {
	case signals.KindState:
		return "uf"
	case signals.KindMunicipality:
		return "mun"
	case signals.KindSector:
		return "setor"
	}
	return "custom"
}
