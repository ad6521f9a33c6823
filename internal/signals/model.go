// 包 signals：地理信号输出模型（多边形、热点、流量、168 小时序列与信封）
package signals

import (
	"time"

	"geo-signals/internal/geo"
	"geo-signals/internal/provenance"
)

// Version：信封结构版本；字段增删需同步导出方
const Version = "1.0"

type Kind string

const (
	KindState        Kind = "administrative-state"
	KindMunicipality Kind = "administrative-municipality"
	KindSector       Kind = "census-sector"
	KindCustom       Kind = "custom"
	KindHotspot      Kind = "hotspot"
)

// AdminLevel：驱动前端按缩放级别显隐
type AdminLevel string

const (
	LevelEstado    AdminLevel = "estado"
	LevelMunicipio AdminLevel = "municipio"
	LevelSetor     AdminLevel = "setor"
	LevelCustom    AdminLevel = "custom"
)

// LevelFor：图层种类到行政层级
func LevelFor(k Kind) AdminLevel {
	switch k {
	case KindState:
		return LevelEstado
	case KindMunicipality:
		return LevelMunicipio
	case KindSector:
		return LevelSetor
	}
	return LevelCustom
}

type PolygonProperties struct {
	ID                     string     `json:"id"`
	Kind                   Kind       `json:"kind"`
	AdminLevel             AdminLevel `json:"adminLevel"`
	Name                   string     `json:"name"`
	Population             *float64   `json:"population"`
	Income                 *float64   `json:"income"`
	TargetAudienceEstimate *float64   `json:"targetAudienceEstimate"`
	Score                  *int       `json:"score"`
}

// 文档注释：多边形信号
// 约束：每次扫描新建，输出后不再修改；几何本身为真实数据，叠加的受众估算单独存放于属性中。
type Polygon struct {
	Type       string                `json:"type"`
	Geometry   geo.Geometry          `json:"geometry"`
	Properties PolygonProperties     `json:"properties"`
	Provenance provenance.Provenance `json:"provenance"`
	// 解析后的环结构，仅供质心与判定使用，不序列化
	Rings []geo.Polygon `json:"-"`
}

type HotspotProperties struct {
	ID                     string   `json:"id"`
	Kind                   Kind     `json:"kind"`
	Rank                   int      `json:"rank"`
	Name                   string   `json:"name"`
	Score                  int      `json:"score"`
	TargetAudienceEstimate *float64 `json:"targetAudienceEstimate"`
}

// 文档注释：热点
// 约束：rank 为 1..N 连续序列；score 为 [1,100] 整数。
type Hotspot struct {
	ID         string                `json:"id"`
	Point      geo.Point             `json:"point"`
	Properties HotspotProperties     `json:"properties"`
	Provenance provenance.Provenance `json:"provenance"`
}

type FlowProperties struct {
	Intensity float64 `json:"intensity"`
	Label     string  `json:"label"`
	Kind      string  `json:"kind"`
}

// Flow：仅在非 real-only 模式下存在
type Flow struct {
	Type       string                `json:"type"`
	Geometry   geo.Geometry          `json:"geometry"`
	Properties FlowProperties        `json:"properties"`
	Provenance provenance.Provenance `json:"provenance"`
}

// TimePoint：周内小时（0=周一 00 时）活跃度
type TimePoint struct {
	Hour       int                   `json:"hour"`
	Value      float64               `json:"value"`
	Provenance provenance.Provenance `json:"provenance"`
}

type BriefingSummary struct {
	PrimaryCity string   `json:"primaryCity"`
	MunicipioID string   `json:"municipioId,omitempty"`
	DataSources []string `json:"dataSources"`
}

// 文档注释：信号信封（聚合根）
// 约束：RealOnly 为 true 时 Hotspots 仅含 REAL 来源、Flows 与 Timeseries168h 为空；切片恒非 nil，序列化为 []。
type Envelope struct {
	ScanID         string          `json:"scanId,omitempty"`
	Version        string          `json:"version"`
	CreatedAt      time.Time       `json:"createdAt"`
	RealOnly       bool            `json:"realOnly"`
	Briefing       BriefingSummary `json:"briefing"`
	Center         *geo.Point      `json:"center,omitempty"`
	Polygons       []Polygon       `json:"polygons"`
	Hotspots       []Hotspot       `json:"hotspots"`
	Flows          []Flow          `json:"flows"`
	Timeseries168h []TimePoint     `json:"timeseries168h"`
	Warnings       []string        `json:"warnings"`
}

// NewEnvelope：空切片初始化，保证结构始终合法
func NewEnvelope(createdAt time.Time, realOnly bool) *Envelope {
	return &Envelope{
		Version:        Version,
		CreatedAt:      createdAt,
		RealOnly:       realOnly,
		Polygons:       []Polygon{},
		Hotspots:       []Hotspot{},
		Flows:          []Flow{},
		Timeseries168h: []TimePoint{},
		Warnings:       []string{},
	}
}

func (e *Envelope) Warn(w string) { e.Warnings = append(e.Warnings, w) }
