// 包 briefing：业务简报（位置、定向偏好、预算）的输入模型与辅助函数
package briefing

import (
	"strings"

	"geo-signals/internal/numeric"
)

type OperationalModel string

const (
	ModelDigital     OperationalModel = "digital"
	ModelClientVisit OperationalModel = "client_visit"
	ModelItinerant   OperationalModel = "itinerant"
	ModelShopping    OperationalModel = "shopping"
	ModelFixed       OperationalModel = "fixed"
	ModelInvestor    OperationalModel = "investor"
)

type MarketPositioning string

const (
	MarketPopular     MarketPositioning = "popular"
	MarketCostBenefit MarketPositioning = "cost_benefit"
	MarketPremium     MarketPositioning = "premium"
	MarketLuxury      MarketPositioning = "luxury"
)

type Objective string

const (
	ObjectiveDominateRegion Objective = "dominate_region"
	ObjectiveSellMore       Objective = "sell_more"
	ObjectiveFindSpot       Objective = "find_spot"
	ObjectiveValidateIdea   Objective = "validate_idea"
)

type Gender string

const (
	GenderMixed  Gender = "mixed"
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// 文档注释：地理范围
// 约束：UF 为 IBGE 两位数字编码（如 "35"）或字母缩写（如 "SP"，无法参与数字匹配）；坐标为 WGS84。
type Geography struct {
	PrimaryCity string   `json:"primaryCity" validate:"omitempty,max=120"`
	UF          string   `json:"uf,omitempty" validate:"omitempty,max=8"`
	MunicipioID string   `json:"municipioId,omitempty" validate:"omitempty,max=16"`
	Lat         *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng         *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
}

// 文档注释：业务简报
// 背景：由前端问卷生成，决定权重、受众估算种子与地理过滤条件。
// 约束：所有枚举字段允许为空或未知值，对应权重回落到 1.0。
type Briefing struct {
	ProductDescription string            `json:"productDescription" validate:"max=2000"`
	OperationalModel   OperationalModel  `json:"operationalModel"`
	MarketPositioning  MarketPositioning `json:"marketPositioning"`
	Objective          Objective         `json:"objective"`
	TargetGender       Gender            `json:"targetGender"`
	TargetAgeRanges    []string          `json:"targetAgeRanges" validate:"max=12"`
	Budget             float64           `json:"budget" validate:"gte=0"`
	Geography          Geography         `json:"geography"`
	DataSources        []string          `json:"dataSources" validate:"max=16"`
}

// Jurisdiction：行政区过滤条件（纯数字编码，空串表示未指定）
type Jurisdiction struct {
	UF          string
	MunicipioID string
}

// 文档注释：提取过滤用行政区编码
// 背景：IBGE 市编码前两位即州编码；简报仅给出市编码时据此补齐州编码。
func (b Briefing) Jurisdiction() Jurisdiction {
	j := Jurisdiction{
		UF:          numeric.DigitsOnly(b.Geography.UF),
		MunicipioID: numeric.DigitsOnly(b.Geography.MunicipioID),
	}
	if j.UF == "" && len(j.MunicipioID) >= 2 {
		j.UF = j.MunicipioID[:2]
	}
	return j
}

// TargetsSingleGender：非空且不是 mixed 即视为单一性别定向（大小写不敏感）
func (b Briefing) TargetsSingleGender() bool {
	g := Gender(strings.ToLower(strings.TrimSpace(string(b.TargetGender))))
	return g != "" && g != GenderMixed
}

// AudienceSeed：受众估算抖动种子
func (b Briefing) AudienceSeed(polygonID string) string {
	return "audience|" + polygonID + "|" + b.ProductDescription + "|" + string(b.Objective)
}

// BehaviorSeed：排序行为抖动种子；前缀与受众种子不同，使两者去相关
func (b Briefing) BehaviorSeed(polygonID string) string {
	return "behavior|" + polygonID + "|" + b.ProductDescription + "|" + string(b.Objective)
}

// HasCoordinates：简报是否直接给出中心点
func (b Briefing) HasCoordinates() bool {
	return b.Geography.Lat != nil && b.Geography.Lng != nil
}
