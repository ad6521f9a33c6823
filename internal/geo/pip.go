package geo

// 文档注释：点入多边形判定（Even-Odd）
// 背景：后端热点需落在本次扫描的多边形集合内才保留；支持洞与多面结构。
// 约束：射线算法在边界临界值时易受数值误差影响，边界上的点可能被判为任一侧。
func PointInPolygon(pt Point, poly Polygon) bool {
	// 外环命中且不在洞内视为命中
	if len(poly.Rings) == 0 {
		return false
	}
	if !inBBox(pt, poly.BBox) {
		return false
	}
	if !pointInRing(pt, poly.Rings[0]) {
		return false
	}
	for i := 1; i < len(poly.Rings); i++ {
		if pointInRing(pt, poly.Rings[i]) {
			return false
		}
	}
	return true
}

// PointInAny：任一多边形命中即为 true
func PointInAny(pt Point, polys []Polygon) bool {
	for _, p := range polys {
		if PointInPolygon(pt, p) {
			return true
		}
	}
	return false
}

// 射线法判定点是否在环内
func pointInRing(pt Point, ring []Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x := pt.Lng
	y := pt.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lng, ring[i].Lat
		xj, yj := ring[j].Lng, ring[j].Lat
		intersect := ((yi > y) != (yj > y)) && (x < (xj-xi)*(y-yi)/(yj-yi+1e-12)+xi)
		if intersect {
			inside = !inside
		}
	}
	return inside
}

// 快速包围盒过滤
func inBBox(pt Point, b [4]float64) bool {
	return pt.Lng >= b[0] && pt.Lng <= b[2] && pt.Lat >= b[1] && pt.Lat <= b[3]
}
