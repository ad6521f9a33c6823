package connectors

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"

	"geo-signals/internal/geo"
	"geo-signals/internal/logger"
	"geo-signals/internal/metrics"
)

// 文档注释：对象存储几何来源
// 背景：预先切分好的行政区/网格 GeoJSON 放在 S3 兼容存储中，按键模板（{layer}、{uf}、{municipio}）定位对象。
// 约束：对象不存在视为空图层（非错误），与本地文件来源一致；其余错误返回给编排器。
type ObjectSource struct {
	client   *minio.Client
	bucket   string
	template string
}

func NewObjectSource(client *minio.Client, bucket, keyTemplate string) *ObjectSource {
	if client == nil || bucket == "" {
		return nil
	}
	if keyTemplate == "" {
		keyTemplate = "{layer}.geojson"
	}
	return &ObjectSource{client: client, bucket: bucket, template: keyTemplate}
}

func (o *ObjectSource) Name() string { return "s3:" + o.bucket }

// Key：展开对象键模板
func (o *ObjectSource) Key(req Request) string {
	return expand(o.template, req, nil)
}

func (o *ObjectSource) Fetch(ctx context.Context, req Request) (geo.FeatureCollection, error) {
	key := o.Key(req)
	t0 := time.Now()
	defer func() {
		metrics.ConnectorDurationMs.WithLabelValues(o.Name()).Observe(float64(time.Since(t0).Milliseconds()))
	}()
	obj, err := o.client.GetObject(ctx, o.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return geo.Empty(), fmt.Errorf("%s: %w", o.Name(), err)
	}
	defer obj.Close()
	if _, err := obj.Stat(); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			logger.L().Debug("geometry_object_missing", "bucket", o.bucket, "key", key)
			return geo.Empty(), nil
		}
		return geo.Empty(), fmt.Errorf("%s: %w", o.Name(), err)
	}
	fc, err := geo.Decode(obj)
	if err != nil {
		return geo.Empty(), fmt.Errorf("%s: %w", o.Name(), err)
	}
	logger.L().Debug("geometry_object_ok", "bucket", o.bucket, "key", key, "features", len(fc.Features))
	return fc, nil
}
