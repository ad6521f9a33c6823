package geo

// 文档注释：轻量 geohash 编码（base32）
// 背景：用于后端热点去重与稳定 ID；精度 7 字符约 150m。
// 约束：仅用于去重与标识，不做行政区映射。
var base32 = []rune("0123456789bcdefghjkmnpqrstuvwxyz")

func Geohash(pt Point, precision int) string {
	latInt := [2]float64{-90, 90}
	lngInt := [2]float64{-180, 180}
	bits := [5]int{16, 8, 4, 2, 1}
	bit := 0
	ch := 0
	even := true
	out := make([]rune, 0, precision)
	for len(out) < precision {
		if even {
			mid := (lngInt[0] + lngInt[1]) / 2
			if pt.Lng >= mid {
				ch |= bits[bit]
				lngInt[0] = mid
			} else {
				lngInt[1] = mid
			}
		} else {
			mid := (latInt[0] + latInt[1]) / 2
			if pt.Lat >= mid {
				ch |= bits[bit]
				latInt[0] = mid
			} else {
				latInt[1] = mid
			}
		}
		even = !even
		if bit < 4 {
			bit++
		} else {
			out = append(out, base32[ch])
			bit = 0
			ch = 0
		}
	}
	return string(out)
}
