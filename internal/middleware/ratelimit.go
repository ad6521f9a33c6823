// 包 middleware：入口限流与源站白名单
package middleware

import (
	"math"
	"net/http"

	"golang.org/x/time/rate"

	"geo-signals/internal/logger"
)

// 文档注释：令牌桶限流中间件
// 背景：扫描会并发拉取多个外部图层，流量峰值时对入口限速以保护上游连接器。
// 约束：不排队，超出即返回 429；qps ≤0 时不限流；burst ≤0 时取 ceil(qps)。
func RateLimit(qps float64, burst int) func(http.Handler) http.Handler {
	if qps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst <= 0 {
		burst = int(math.Ceil(qps))
	}
	lim := rate.NewLimiter(rate.Limit(qps), burst)
	logger.L().Debug("rate_limit_enabled", "qps", qps, "burst", burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				logger.L().Debug("rate_limited", "path", r.URL.Path)
				w.Header().Set("retry-after", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
