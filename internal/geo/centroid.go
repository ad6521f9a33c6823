package geo

// 文档注释：外环顶点算术平均
// 背景：热点展示只需近似中心点；小而紧凑的普查多边形上与面积加权质心差异可忽略。
// 约束：取第一个面的外环；闭合环末尾重复的首点不计入；无有效外环时返回 nil。
func RingCentroid(polys []Polygon) *Point {
	for _, p := range polys {
		if len(p.Rings) == 0 {
			continue
		}
		ring := p.Rings[0]
		n := len(ring)
		if n > 1 && ring[0] == ring[n-1] {
			n--
		}
		if n == 0 {
			continue
		}
		var sumLat, sumLng float64
		for _, pt := range ring[:n] {
			sumLat += pt.Lat
			sumLng += pt.Lng
		}
		return &Point{Lat: sumLat / float64(n), Lng: sumLng / float64(n)}
	}
	return nil
}

// MeanPoint：点集算术平均，空集返回 nil
func MeanPoint(pts []Point) *Point {
	if len(pts) == 0 {
		return nil
	}
	var sumLat, sumLng float64
	for _, p := range pts {
		sumLat += p.Lat
		sumLng += p.Lng
	}
	n := float64(len(pts))
	return &Point{Lat: sumLat / n, Lng: sumLng / n}
}
