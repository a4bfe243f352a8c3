package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Embeddings.Bucket != "movie-embeddings" {
		t.Errorf("默认 bucket = %q", cfg.Embeddings.Bucket)
	}
	if cfg.Embeddings.Format != "jsonl" {
		t.Errorf("默认格式 = %q", cfg.Embeddings.Format)
	}
	if cfg.Feast.Port != 6565 {
		t.Errorf("默认 Feast 端口 = %d", cfg.Feast.Port)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
s3:
  endpoint_url: http://localhost:4566
  region: eu-west-1
embeddings:
  bucket: prod-embeddings
  key: embeddings.npy
  format: npy
model:
  bucket: prod-models
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.S3.EndpointURL != "http://localhost:4566" || cfg.S3.Region != "eu-west-1" {
		t.Errorf("S3 配置 = %+v", cfg.S3)
	}
	if cfg.Embeddings.Format != "npy" {
		t.Errorf("格式 = %q", cfg.Embeddings.Format)
	}
	// YAML 未覆盖的字段保留默认值
	if cfg.Model.ModelKey != "model_onnx/model.onnx" {
		t.Errorf("ModelKey = %q", cfg.Model.ModelKey)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EMBEDDINGS_BUCKET", "env-bucket")
	t.Setenv("EMBEDDINGS_OUTPUT_FILE", "env.jsonl")
	t.Setenv("MODEL_BUCKET", "env-models")
	t.Setenv("FEAST_PORT", "6567")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Embeddings.Bucket != "env-bucket" || cfg.Embeddings.Key != "env.jsonl" {
		t.Errorf("环境变量覆盖失效: %+v", cfg.Embeddings)
	}
	if cfg.Model.Bucket != "env-models" {
		t.Errorf("Model.Bucket = %q", cfg.Model.Bucket)
	}
	if cfg.Feast.Port != 6567 {
		t.Errorf("Feast.Port = %d", cfg.Feast.Port)
	}
}

func TestValidate(t *testing.T) {
	t.Run("非法格式被拒绝", func(t *testing.T) {
		cfg := Default()
		cfg.Embeddings.Format = "csv"
		if err := cfg.Validate(); err == nil {
			t.Fatal("期望格式错误，实际为 nil")
		}
	})

	t.Run("缺失向量表位置被拒绝", func(t *testing.T) {
		cfg := Default()
		cfg.Embeddings.Bucket = ""
		if err := cfg.Validate(); err == nil {
			t.Fatal("期望配置错误，实际为 nil")
		}
	})

	t.Run("启用模型但缺 key 被拒绝", func(t *testing.T) {
		cfg := Default()
		cfg.Model.Bucket = "models"
		cfg.Model.TokenizerKey = ""
		if err := cfg.Validate(); err == nil {
			t.Fatal("期望配置错误，实际为 nil")
		}
	})
}
