package publish

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"geo-signals/internal/provenance"
	"geo-signals/internal/signals"
)

const summaryTopHotspots = 5

// messageWriter：kafka.Writer 的最小子集
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Summary：下游导出方（广告平台定向载荷构建）消费的扫描摘要
type Summary struct {
	ScanID      string           `json:"scanId"`
	CreatedAt   time.Time        `json:"createdAt"`
	RealOnly    bool             `json:"realOnly"`
	PrimaryCity string           `json:"primaryCity"`
	MunicipioID string           `json:"municipioId,omitempty"`
	Polygons    int              `json:"polygons"`
	Hotspots    int              `json:"hotspots"`
	Flows       int              `json:"flows"`
	Top         []SummaryHotspot `json:"top"`
	Warnings    []string         `json:"warnings"`
}

type SummaryHotspot struct {
	ID    string           `json:"id"`
	Rank  int              `json:"rank"`
	Score int              `json:"score"`
	Lat   float64          `json:"lat"`
	Lng   float64          `json:"lng"`
	Label provenance.Label `json:"label"`
}

// Summarize：信封到摘要；只保留前 5 个热点
func Summarize(env *signals.Envelope) Summary {
	s := Summary{
		ScanID:      env.ScanID,
		CreatedAt:   env.CreatedAt,
		RealOnly:    env.RealOnly,
		PrimaryCity: env.Briefing.PrimaryCity,
		MunicipioID: env.Briefing.MunicipioID,
		Polygons:    len(env.Polygons),
		Hotspots:    len(env.Hotspots),
		Flows:       len(env.Flows),
		Top:         []SummaryHotspot{},
		Warnings:    env.Warnings,
	}
	for i, h := range env.Hotspots {
		if i >= summaryTopHotspots {
			break
		}
		s.Top = append(s.Top, SummaryHotspot{ID: h.ID, Rank: h.Properties.Rank, Score: h.Properties.Score, Lat: h.Point.Lat, Lng: h.Point.Lng, Label: h.Provenance.Label})
	}
	return s
}

// 文档注释：Kafka 发布目标
// 背景：导出方异步订阅扫描摘要，消息键为扫描 ID 以保证同一扫描落在同一分区。
// 约束：同步写入，RequireOne 确认；完整信封不进入总线，导出方按需从 Redis 或归档取回。
type KafkaPublisher struct {
	w     messageWriter
	topic string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &KafkaPublisher{
		topic: topic,
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

func (k *KafkaPublisher) Name() string { return "kafka" }

func (k *KafkaPublisher) Publish(ctx context.Context, env *signals.Envelope) error {
	raw, err := json.Marshal(Summarize(env))
	if err != nil {
		return err
	}
	return k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.ScanID),
		Value: raw,
		Time:  env.CreatedAt,
		Headers: []kafka.Header{
			{Key: "schema", Value: []byte("scan-summary/" + signals.Version)},
		},
	})
}

func (k *KafkaPublisher) Close() error { return k.w.Close() }
