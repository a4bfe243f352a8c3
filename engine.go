package reelkit

import (
	"context"

	"github.com/reelkit/reelkit/blob"
	"github.com/reelkit/reelkit/config"
	"github.com/reelkit/reelkit/core"
	"github.com/reelkit/reelkit/embedding"
	"github.com/reelkit/reelkit/encoder"
	"github.com/reelkit/reelkit/feast"
	"github.com/reelkit/reelkit/recall"
	"github.com/reelkit/reelkit/recommend"
	"github.com/reelkit/reelkit/store"
)

// New 按部署配置装配一个完整的推荐引擎。
//
// 装配规则：
//   - S3 端点显式配置时走自定义端点（本地 MinIO/LocalStack），否则走默认凭证链
//   - Model.Bucket 为空时不启用 semantic 策略
//   - Redis.Addr 为空时评分/元数据落在进程内存，适合示例与测试
//   - Feast.Host 配置后 content 策略可按 user_id 拉取口味特征
//
// 返回的 cleanup 负责释放编码器与存储连接，进程退出前调用。
func New(ctx context.Context, cfg *config.Config) (*recommend.Engine, func() error, error) {
	var blobs core.BlobStore
	if cfg.S3.EndpointURL != "" || cfg.S3.AccessKey != "" {
		blobs = blob.NewS3StoreWithConfig(blob.S3Config{
			HostEndpointUrl: cfg.S3.EndpointURL,
			Region:          cfg.S3.Region,
			Username:        cfg.S3.AccessKey,
			Password:        cfg.S3.SecretKey,
		})
	} else {
		s3Store, err := blob.NewS3Store(ctx, cfg.S3.Region)
		if err != nil {
			return nil, nil, err
		}
		blobs = s3Store
	}

	embeddings := embedding.NewStore(blobs, cfg.Embeddings.Bucket, cfg.Embeddings.Key,
		embedding.Format(cfg.Embeddings.Format))

	var kv core.Store
	if cfg.Redis.Addr != "" {
		redisStore, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		kv = redisStore
	} else {
		kv = store.NewMemoryStore()
	}

	engine := &recommend.Engine{
		Content:       &recall.Content{Embeddings: embeddings},
		Similar:       &recall.Similar{Embeddings: embeddings},
		Collaborative: &recall.UserCF{Ratings: recall.NewStoreRatingAdapter(kv)},
		Metadata:      recall.NewStoreMetadataAdapter(kv),
	}

	var enc *encoder.TextEncoder
	if cfg.Model.Bucket != "" {
		enc = encoder.New(blobs, encoder.ArtifactKeys{
			Bucket:       cfg.Model.Bucket,
			TokenizerKey: cfg.Model.TokenizerKey,
			ConfigKey:    cfg.Model.ConfigKey,
			ModelKey:     cfg.Model.ModelKey,
		}, nil)
		engine.Semantic = &recall.Semantic{Encoder: enc, Embeddings: embeddings}
	}

	var feastClient feast.Client
	if cfg.Feast.Host != "" {
		client, err := feast.NewGrpcClient(cfg.Feast.Host, cfg.Feast.Port, cfg.Feast.Project)
		if err != nil {
			return nil, nil, err
		}
		feastClient = client
		engine.Content.Tastes = &feast.UserTasteSource{Client: client}
	}

	cleanup := func() error {
		var firstErr error
		if enc != nil {
			if err := enc.Close(); err != nil {
				firstErr = err
			}
		}
		if feastClient != nil {
			if err := feastClient.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if err := kv.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return firstErr
	}
	return engine, cleanup, nil
}
