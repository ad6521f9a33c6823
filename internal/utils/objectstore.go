package utils

import (
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"geo-signals/internal/config"
	"geo-signals/internal/logger"
)

// 文档注释：打开对象存储客户端（S3 兼容）
// 约束：端点或桶未配置时返回 nil, nil；仅创建客户端，不做连通性检查，图层拉取失败由编排器降级处理。
func OpenObjectStore(c config.ObjectStore) (*minio.Client, error) {
	if !c.Enabled() {
		return nil, nil
	}
	cl, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
		Region: c.Region,
	})
	if err != nil {
		return nil, err
	}
	logger.L().Debug("object_store_open", "endpoint", c.Endpoint, "bucket", c.Bucket, "ssl", c.UseSSL)
	return cl, nil
}
