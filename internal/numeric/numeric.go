// 包 numeric：异构属性包的宽容数值解析；任何输入都不会 panic，无法解析时返回 nil
package numeric

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// 文档注释：宽容数值转换
// 背景：上游几何数据来自不同提供方，人口/收入字段可能是数字、逗号小数字符串或空值。
// 约束：仅做逗号→点替换，不识别千分位；"1.234,56" 因多个分隔符无法解析而返回 nil；非有限值返回 nil。
func ToNumber(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		return parseString(string(x))
	case string:
		return parseString(x)
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseString(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// PickNumber：按别名顺序取第一个可解析的数值
func PickNumber(props map[string]any, keys []string) *float64 {
	if props == nil {
		return nil
	}
	for _, k := range keys {
		v, ok := props[k]
		if !ok {
			continue
		}
		if n := ToNumber(v); n != nil {
			return n
		}
	}
	return nil
}

// PickString：按别名顺序取第一个非空文本；数值按最短十进制表示（编码类字段常以数字下发）
func PickString(props map[string]any, keys []string) string {
	if props == nil {
		return ""
	}
	for _, k := range keys {
		switch x := props[k].(type) {
		case string:
			if s := strings.TrimSpace(x); s != "" {
				return s
			}
		case float64:
			if !math.IsNaN(x) && !math.IsInf(x, 0) {
				return strconv.FormatFloat(x, 'f', -1, 64)
			}
		case int:
			return strconv.Itoa(x)
		case int64:
			return strconv.FormatInt(x, 10)
		case json.Number:
			return x.String()
		}
	}
	return ""
}

// DigitsOnly：仅保留 ASCII 数字，用于行政区编码归一化
func DigitsOnly(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt：四舍五入后夹到 [lo,hi]
func ClampInt(v float64, lo, hi int) int {
	r := math.Round(v)
	if math.IsNaN(r) || r < float64(lo) {
		return lo
	}
	if r > float64(hi) {
		return hi
	}
	return int(r)
}
