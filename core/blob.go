package core

import "context"

// BlobStore 是对象存储的领域接口，用于拉取向量表与编码器制品。
//
// 实现：
//   - blob.S3Store（生产，AWS S3 / MinIO / LocalStack）
//   - blob.MemoryStore（测试/开发）
//
// 调用方通过 ctx 控制超时；超时到期表现为可重试失败。
type BlobStore interface {
	// Name 返回后端名称（用于日志/监控）
	Name() string

	// GetObject 读取 bucket 下指定 key 的完整内容
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}
