// 包 geo：GeoJSON 要素集合的解析与几何辅助（质心、包围盒、点入多边形、geohash）
package geo

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// 文档注释：解码 FeatureCollection / Feature
// 背景：连接器与命令行均以标准 GeoJSON 提供图层；单个 Feature 视为只含一项的集合。
// 约束：未知 type 返回错误，由上层视为图层缺失。
func Decode(r io.Reader) (FeatureCollection, error) {
	var raw struct {
		Type       string         `json:"type"`
		Features   []Feature      `json:"features"`
		Geometry   *Geometry      `json:"geometry"`
		Properties map[string]any `json:"properties"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Empty(), fmt.Errorf("decode geojson: %w", err)
	}
	switch strings.ToLower(raw.Type) {
	case "featurecollection":
		return FeatureCollection{Type: "FeatureCollection", Features: raw.Features}, nil
	case "feature":
		f := Feature{Type: "Feature", Geometry: raw.Geometry, Properties: raw.Properties}
		return FeatureCollection{Type: "FeatureCollection", Features: []Feature{f}}, nil
	}
	return Empty(), fmt.Errorf("decode geojson: unsupported type %q", raw.Type)
}

// LoadFile：读取磁盘上的 GeoJSON 文件
func LoadFile(path string) (FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Empty(), err
	}
	defer f.Close()
	return Decode(f)
}

// 文档注释：几何转环结构
// 背景：仅 Polygon/MultiPolygon 参与质心与判定；其他类型返回空切片。
// 约束：坐标点少于两个分量时跳过该点。
func Polygons(g *Geometry) []Polygon {
	if g == nil {
		return nil
	}
	coords, ok := g.Coordinates.([]any)
	if !ok {
		return nil
	}
	switch strings.ToLower(g.Type) {
	case "polygon":
		return []Polygon{parsePolygon(coords)}
	case "multipolygon":
		out := make([]Polygon, 0, len(coords))
		for _, part := range coords {
			if rings, ok := part.([]any); ok {
				out = append(out, parsePolygon(rings))
			}
		}
		return out
	}
	return nil
}

// IsAreal：是否为面状几何
func IsAreal(g *Geometry) bool {
	if g == nil {
		return false
	}
	t := strings.ToLower(g.Type)
	return t == "polygon" || t == "multipolygon"
}

func parsePolygon(rings []any) Polygon {
	var poly Polygon
	for _, ring := range rings {
		arr, ok := ring.([]any)
		if !ok {
			continue
		}
		var rr []Point
		for _, p := range arr {
			if vv, ok := p.([]any); ok && len(vv) >= 2 {
				rr = append(rr, Point{Lng: toFloat(vv[0]), Lat: toFloat(vv[1])})
			}
		}
		poly.Rings = append(poly.Rings, rr)
	}
	poly.BBox = computeBBox(poly)
	return poly
}

func computeBBox(p Polygon) [4]float64 {
	b := [4]float64{180, 90, -180, -90}
	for _, r := range p.Rings {
		for _, pt := range r {
			if pt.Lng < b[0] {
				b[0] = pt.Lng
			}
			if pt.Lat < b[1] {
				b[1] = pt.Lat
			}
			if pt.Lng > b[2] {
				b[2] = pt.Lng
			}
			if pt.Lat > b[3] {
				b[3] = pt.Lat
			}
		}
	}
	return b
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	default:
		return 0
	}
}
