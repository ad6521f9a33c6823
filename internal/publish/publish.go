// 包 publish：扫描结果的尽力发布（Postgres 归档、Redis 按 ID 取回、Kafka 摘要事件）
package publish

import (
	"context"
	"time"

	"geo-signals/internal/logger"
	"geo-signals/internal/metrics"
	"geo-signals/internal/signals"
)

// Publisher：单个发布目标
type Publisher interface {
	Name() string
	Publish(ctx context.Context, env *signals.Envelope) error
}

// 文档注释：多目标发布
// 背景：扫描结果需同时进入归档、缓存与消息总线；各目标互不依赖。
// 约束：尽力而为，任一目标失败只记录日志与指标，不影响其它目标，也不改变扫描结果；返回失败的目标名。
type Multi struct {
	list    []Publisher
	timeout time.Duration
}

// NewMulti：nil 目标被忽略；timeout ≤0 时默认 3s
func NewMulti(timeout time.Duration, list ...Publisher) *Multi {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	m := &Multi{timeout: timeout}
	for _, p := range list {
		if p != nil {
			m.list = append(m.list, p)
		}
	}
	return m
}

func (m *Multi) Names() []string {
	out := make([]string, 0, len(m.list))
	for _, p := range m.list {
		out = append(out, p.Name())
	}
	return out
}

func (m *Multi) Publish(ctx context.Context, env *signals.Envelope) []string {
	var failed []string
	for _, p := range m.list {
		pctx, cancel := context.WithTimeout(ctx, m.timeout)
		err := p.Publish(pctx, env)
		cancel()
		if err != nil {
			logger.L().Warn("publish_error", "sink", p.Name(), "scan_id", env.ScanID, "err", err)
			metrics.PublishFailTotal.WithLabelValues(p.Name()).Inc()
			failed = append(failed, p.Name())
			continue
		}
		logger.L().Debug("publish_ok", "sink", p.Name(), "scan_id", env.ScanID)
	}
	return failed
}

// Archiver：归档存储接口（由 store.Store 实现）
type Archiver interface {
	SaveEnvelope(ctx context.Context, env *signals.Envelope) error
}

// Archive：把归档存储适配为发布目标
type Archive struct {
	Store Archiver
}

func (a *Archive) Name() string { return "postgres" }

func (a *Archive) Publish(ctx context.Context, env *signals.Envelope) error {
	return a.Store.SaveEnvelope(ctx, env)
}
