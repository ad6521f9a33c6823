// 包 provenance：信号数据的可信度标签，每个输出值都携带且仅携带一个 Provenance
package provenance

// Label：可信度等级
type Label string

const (
	Real          Label = "REAL"
	Derived       Label = "DERIVED"
	PartialReal   Label = "PARTIAL_REAL"
	NotConfigured Label = "NOT_CONFIGURED"
	Unavailable   Label = "UNAVAILABLE"
)

// 文档注释：数据来源标签
// 背景：前端与导出逻辑依据该标签渲染“真实/估算/不可用”状态，不得自行填充占位数据。
// 约束：REAL 仅用于可追溯到权威来源且 Source 非空的数据；启发式或加权计算一律为 DERIVED。
type Provenance struct {
	Label  Label  `json:"label"`
	Source string `json:"source"`
	Method string `json:"method,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// NewReal：权威来源数据；source 为空时降级为 PARTIAL_REAL，避免无来源的 REAL
func NewReal(source string) Provenance {
	if source == "" {
		return Provenance{Label: PartialReal, Source: "unknown", Notes: "missing source identifier"}
	}
	return Provenance{Label: Real, Source: source}
}

func NewDerived(source, method string) Provenance {
	return Provenance{Label: Derived, Source: source, Method: method}
}

func NewUnavailable(source, notes string) Provenance {
	return Provenance{Label: Unavailable, Source: source, Notes: notes}
}

func NewNotConfigured(source string) Provenance {
	return Provenance{Label: NotConfigured, Source: source}
}

func (p Provenance) IsReal() bool { return p.Label == Real }

// ParseLabel：外部来源上报的标签文本，未知值返回 false
func ParseLabel(s string) (Label, bool) {
	switch Label(s) {
	case Real, Derived, PartialReal, NotConfigured, Unavailable:
		return Label(s), true
	}
	return "", false
}
