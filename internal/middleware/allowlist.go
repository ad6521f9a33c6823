package middleware

import (
	"net"
	"net/http"
	"strings"

	"geo-signals/internal/logger"
)

// 文档注释：源站白名单（IP/CIDR）
// 背景：服务部署在网关或 CDN 之后时，仅允许回源网段与指定调试 IP 直接访问，其余请求统一返回 403。
// 约束：
// 1) 条目可为单 IP 或 CIDR，支持 IPv4/IPv6；无法解析的条目忽略并记录；
// 2) 来源 IP 以 RemoteAddr 为准；配置 header 时取该头首个有效 IP；
// 3) allowLocal 为 true 时放行 127.0.0.1 与 ::1。
type AllowList struct {
	nets   []*net.IPNet
	header string
}

func NewAllowList(entries []string, allowLocal bool, header string) *AllowList {
	a := &AllowList{header: strings.TrimSpace(header)}
	if allowLocal {
		entries = append(entries, "127.0.0.1", "::1")
	}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.Contains(e, "/") {
			if ip := net.ParseIP(e); ip != nil {
				bits := 128
				if ip.To4() != nil {
					ip, bits = ip.To4(), 32
				}
				a.nets = append(a.nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
				continue
			}
		} else if _, n, err := net.ParseCIDR(e); err == nil {
			a.nets = append(a.nets, n)
			continue
		}
		logger.L().Warn("origin_allow_entry_invalid", "entry", e)
	}
	return a
}

// Allowed：IP 是否落在任一白名单网段
func (a *AllowList) Allowed(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range a.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Wrap：生成 http.Handler 中间件
func (a *AllowList) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := a.sourceIP(r)
		if !a.Allowed(ip) {
			logger.L().Debug("origin_defense_block", "ip", ip.String(), "path", r.URL.Path)
			w.Header().Set("content-type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"forbidden"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *AllowList) sourceIP(r *http.Request) net.IP {
	if a.header != "" {
		if raw := r.Header.Get(a.header); raw != "" {
			first, _, _ := strings.Cut(raw, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip
			}
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return net.ParseIP(host)
}
