package connectors

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"unicode"

	"github.com/oschwald/geoip2-golang"
	"golang.org/x/text/unicode/norm"

	"geo-signals/internal/briefing"
	"geo-signals/internal/geo"
	"geo-signals/internal/logger"
	"geo-signals/internal/numeric"
)

// CenterTier：中心点来源层级，写入日志便于排查
type CenterTier string

const (
	TierBriefing CenterTier = "briefing"
	TierTable    CenterTier = "centroid_table"
	TierGeoIP    CenterTier = "geoip"
	TierPolygons CenterTier = "polygons"
	TierNone     CenterTier = ""
)

// Centroid：城市中心点表项
type Centroid struct {
	City string  `json:"city"`
	UF   string  `json:"uf"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// 文档注释：扫描中心解析器
// 背景：依次尝试简报坐标、城市中心点表（城市名大小写与重音不敏感，UF 可选参与匹配）、请求方 IP 的 GeoIP 城市坐标。
// 约束：全部失败返回 nil，由编排器在构建多边形后以多边形质心均值兜底；只读，可并发使用。
type CenterResolver struct {
	table map[string][]Centroid
	geoip *geoip2.Reader
}

// 文档注释：构造解析器
// 参数：centroidsPath 为 JSON 数组文件；geoipPath 为 GeoLite2/GeoIP2 City mmdb；任一为空则跳过对应层级。
// 返回：文件存在但无法解析时返回错误。
func NewCenterResolver(centroidsPath, geoipPath string) (*CenterResolver, error) {
	r := &CenterResolver{table: map[string][]Centroid{}}
	if centroidsPath != "" {
		raw, err := os.ReadFile(centroidsPath)
		if err != nil {
			return nil, fmt.Errorf("read centroids %s: %w", centroidsPath, err)
		}
		var list []Centroid
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("parse centroids %s: %w", centroidsPath, err)
		}
		r.Add(list...)
	}
	if geoipPath != "" && exists(geoipPath) {
		db, err := geoip2.Open(geoipPath)
		if err != nil {
			return nil, fmt.Errorf("open geoip %s: %w", geoipPath, err)
		}
		r.geoip = db
	} else if geoipPath != "" {
		logger.L().Warn("geoip_db_missing", "path", geoipPath)
	}
	return r, nil
}

// Add：追加中心点表项
func (r *CenterResolver) Add(list ...Centroid) {
	for _, c := range list {
		k := foldCity(c.City)
		if k == "" {
			continue
		}
		r.table[k] = append(r.table[k], c)
	}
}

func (r *CenterResolver) Close() error {
	if r == nil || r.geoip == nil {
		return nil
	}
	return r.geoip.Close()
}

// Resolve：返回中心点与命中的层级
func (r *CenterResolver) Resolve(b briefing.Briefing, clientIP string) (*geo.Point, CenterTier) {
	if b.HasCoordinates() {
		return &geo.Point{Lat: *b.Geography.Lat, Lng: *b.Geography.Lng}, TierBriefing
	}
	if r == nil {
		return nil, TierNone
	}
	if p := r.lookupTable(b); p != nil {
		return p, TierTable
	}
	if p := r.lookupIP(clientIP); p != nil {
		return p, TierGeoIP
	}
	return nil, TierNone
}

func (r *CenterResolver) lookupTable(b briefing.Briefing) *geo.Point {
	cands := r.table[foldCity(b.Geography.PrimaryCity)]
	if len(cands) == 0 {
		return nil
	}
	uf := strings.ToUpper(strings.TrimSpace(b.Geography.UF))
	ufDigits := numeric.DigitsOnly(uf)
	if ufDigits == "" {
		ufDigits = b.Jurisdiction().UF
	}
	for _, c := range cands {
		cu := strings.ToUpper(strings.TrimSpace(c.UF))
		if (uf == "" && ufDigits == "") || cu == uf || (ufDigits != "" && numeric.DigitsOnly(cu) == ufDigits) {
			return &geo.Point{Lat: c.Lat, Lng: c.Lng}
		}
	}
	// UF 不匹配时退回首个同名城市
	return &geo.Point{Lat: cands[0].Lat, Lng: cands[0].Lng}
}

func (r *CenterResolver) lookupIP(clientIP string) *geo.Point {
	if r.geoip == nil || clientIP == "" {
		return nil
	}
	ip := net.ParseIP(clientIP)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() {
		return nil
	}
	rec, err := r.geoip.City(ip)
	if err != nil {
		logger.L().Debug("geoip_lookup_error", "ip", clientIP, "err", err)
		return nil
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		return nil
	}
	return &geo.Point{Lat: rec.Location.Latitude, Lng: rec.Location.Longitude}
}

// foldCity：小写、去重音、压缩空白
func foldCity(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(strings.TrimSpace(s))) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
