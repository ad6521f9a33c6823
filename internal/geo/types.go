package geo

// 文档注释：几何最小数据结构
// 背景：承载 GeoJSON Polygon/MultiPolygon 的环结构，供质心、包围盒与点入多边形判定使用。
// 约束：多面与洞以环列表表达，第一环为外环，其余为洞；坐标为 WGS84。
type Polygon struct {
	Rings [][]Point
	BBox  [4]float64 // minLng, minLat, maxLng, maxLat
}

// 点坐标（WGS84）
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry：GeoJSON 几何原样透传；Coordinates 保留解码后的嵌套数组，输出时不做改写
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Empty：缺失图层的统一表示
func Empty() FeatureCollection { return FeatureCollection{Type: "FeatureCollection"} }

// LineString：流量线段几何
func LineString(a, b Point) Geometry {
	return Geometry{Type: "LineString", Coordinates: [][]float64{{a.Lng, a.Lat}, {b.Lng, b.Lat}}}
}
