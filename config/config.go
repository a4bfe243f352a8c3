// Package config 提供部署配置的加载与校验。
//
// 加载顺序：YAML 文件（可选）→ 环境变量覆盖 → 校验。
// 环境变量名沿用数据管道侧的约定（EMBEDDINGS_BUCKET 等），
// 保证离线生成与在线消费指向同一份制品。
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/reelkit/reelkit/embedding"
)

// Config 是进程级部署配置。
type Config struct {
	// S3 对象存储连接
	S3 S3Config `yaml:"s3"`

	// Embeddings 向量表制品位置
	Embeddings EmbeddingsConfig `yaml:"embeddings"`

	// Model 编码器制品位置
	Model ModelConfig `yaml:"model"`

	// Feast 特征存储连接（可选）
	Feast FeastConfig `yaml:"feast"`

	// Redis 缓存/评分存储连接（可选，空 Addr 表示用内存存储）
	Redis RedisConfig `yaml:"redis"`
}

// S3Config 对象存储连接配置
type S3Config struct {
	// EndpointURL 自定义端点（MinIO / LocalStack），空值走 AWS 默认解析
	EndpointURL string `yaml:"endpoint_url"`
	Region      string `yaml:"region"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
}

// EmbeddingsConfig 向量表制品位置
type EmbeddingsConfig struct {
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`

	// Format 数据格式："jsonl" 或 "npy"。
	// 格式由部署显式指定，从不按内容嗅探
	Format string `yaml:"format"`
}

// ModelConfig 编码器制品位置（三件套共管，缺一不可）
type ModelConfig struct {
	Bucket       string `yaml:"bucket"`
	TokenizerKey string `yaml:"tokenizer_key"`
	ConfigKey    string `yaml:"config_key"`
	ModelKey     string `yaml:"model_key"`
}

// FeastConfig 特征存储连接配置
type FeastConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Project string `yaml:"project"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default 返回带默认值的配置。
// 默认的制品 key 对齐离线管道的输出文件名。
func Default() *Config {
	return &Config{
		S3: S3Config{
			Region: "us-east-1",
		},
		Embeddings: EmbeddingsConfig{
			Bucket: "movie-embeddings",
			Key:    "embeddings.jsonl",
			Format: string(embedding.FormatJSONL),
		},
		Model: ModelConfig{
			TokenizerKey: "model_onnx/tokenizer.json",
			ConfigKey:    "model_onnx/config.json",
			ModelKey:     "model_onnx/model.onnx",
		},
		Feast: FeastConfig{
			Port: 6565,
		},
	}
}

// Load 加载配置：默认值 → YAML 文件（path 为空则跳过）→ 环境变量 → 校验。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv 用环境变量覆盖对应字段，未设置的变量不覆盖
func (c *Config) applyEnv() {
	setString(&c.S3.EndpointURL, "S3_ENDPOINT_URL")
	setString(&c.S3.Region, "AWS_REGION")
	setString(&c.S3.AccessKey, "AWS_ACCESS_KEY_ID")
	setString(&c.S3.SecretKey, "AWS_SECRET_ACCESS_KEY")

	setString(&c.Embeddings.Bucket, "EMBEDDINGS_BUCKET")
	setString(&c.Embeddings.Key, "EMBEDDINGS_OUTPUT_FILE")
	setString(&c.Embeddings.Format, "EMBEDDINGS_FORMAT")

	setString(&c.Model.Bucket, "MODEL_BUCKET")
	setString(&c.Model.TokenizerKey, "MODEL_TOKENIZER_FILE")
	setString(&c.Model.ConfigKey, "MODEL_CONFIG_FILE")
	setString(&c.Model.ModelKey, "MODEL_FILE")

	setString(&c.Feast.Host, "FEAST_HOST")
	setInt(&c.Feast.Port, "FEAST_PORT")
	setString(&c.Feast.Project, "FEAST_PROJECT")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")
}

// Validate 校验配置的内部一致性。
func (c *Config) Validate() error {
	if c.Embeddings.Bucket == "" || c.Embeddings.Key == "" {
		return fmt.Errorf("config: embeddings bucket and key are required")
	}
	if !embedding.ValidFormat(embedding.Format(c.Embeddings.Format)) {
		return fmt.Errorf("config: invalid embeddings format %q (want %q or %q)",
			c.Embeddings.Format, embedding.FormatJSONL, embedding.FormatNPY)
	}
	// Model bucket 为空表示不启用语义搜索，此时三个 key 不再校验
	if c.Model.Bucket != "" {
		if c.Model.TokenizerKey == "" || c.Model.ConfigKey == "" || c.Model.ModelKey == "" {
			return fmt.Errorf("config: model tokenizer_key, config_key and model_key are all required")
		}
	}
	return nil
}

func setString(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
