package encoder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"

	"github.com/reelkit/reelkit/core"
)

// ArtifactKeys 指向编码器制品的三个对象：tokenizer 定义、模型配置、模型权重。
// 三者一起加载、一起版本化；任何一个缺失/损坏都不得产出可用编码器。
type ArtifactKeys struct {
	Bucket       string
	TokenizerKey string // tokenizer.json
	ConfigKey    string // config.json
	ModelKey     string // model.onnx
}

// modelConfig 是模型配置文档中核心关心的字段子集。
type modelConfig struct {
	MaxPositionEmbeddings int  `json:"max_position_embeddings"`
	PadTokenID            *int `json:"pad_token_id"`
	HiddenSize            int  `json:"hidden_size"`
}

// defaultMaxSeqLen 对齐离线生成脚本在配置缺失时的兜底值。
const defaultMaxSeqLen = 128

const padToken = "[PAD]"

// artifact 是装配完成的编码器制品：配置好截断/补齐的 tokenizer + 推理会话。
type artifact struct {
	tok       *tokenizer.Tokenizer
	runtime   Runtime
	maxSeqLen int
}

func (a *artifact) close() {
	if a.runtime != nil {
		_ = a.runtime.Close()
	}
}

// RuntimeFactory 从模型权重文件构建推理后端。
// 默认实现创建 ONNX Runtime 会话；测试可注入确定性假实现。
type RuntimeFactory func(modelPath string) (Runtime, error)

// DefaultRuntimeFactory 返回生产默认的 ONNX 后端工厂。
func DefaultRuntimeFactory(withTokenTypes bool) RuntimeFactory {
	return func(modelPath string) (Runtime, error) {
		return NewONNXRuntime(modelPath, withTokenTypes)
	}
}

// loadArtifact 拉取并装配编码器制品。
// 任一环节失败整体失败并返回 ENCODER_LOAD；临时目录在装配完成后即清理
// （会话创建时权重已读入内存，文件无需保留）。
func loadArtifact(ctx context.Context, blobs core.BlobStore, keys ArtifactKeys, factory RuntimeFactory) (*artifact, error) {
	loadErr := func(stage string, err error) error {
		return core.WrapDomainError(core.ModuleEncoder, core.ErrorCodeEncoderLoad,
			"encoder: "+stage, err)
	}

	tokData, err := blobs.GetObject(ctx, keys.Bucket, keys.TokenizerKey)
	if err != nil {
		return nil, loadErr(fmt.Sprintf("fetch s3://%s/%s", keys.Bucket, keys.TokenizerKey), err)
	}
	cfgData, err := blobs.GetObject(ctx, keys.Bucket, keys.ConfigKey)
	if err != nil {
		return nil, loadErr(fmt.Sprintf("fetch s3://%s/%s", keys.Bucket, keys.ConfigKey), err)
	}
	modelData, err := blobs.GetObject(ctx, keys.Bucket, keys.ModelKey)
	if err != nil {
		return nil, loadErr(fmt.Sprintf("fetch s3://%s/%s", keys.Bucket, keys.ModelKey), err)
	}

	var cfg modelConfig
	if err := json.Unmarshal(cfgData, &cfg); err != nil {
		return nil, loadErr("parse model config", err)
	}
	maxSeqLen := cfg.MaxPositionEmbeddings
	if maxSeqLen <= 0 {
		maxSeqLen = defaultMaxSeqLen
	}

	// tokenizer 与 ONNX 会话都从文件构建，落到一个一次性临时目录
	tmpDir, err := os.MkdirTemp("", "reelkit-encoder-")
	if err != nil {
		return nil, loadErr("create temp dir", err)
	}
	defer os.RemoveAll(tmpDir)

	tokPath := filepath.Join(tmpDir, "tokenizer.json")
	if err := os.WriteFile(tokPath, tokData, 0o600); err != nil {
		return nil, loadErr("write tokenizer file", err)
	}
	tok, err := pretrained.FromFile(tokPath)
	if err != nil {
		return nil, loadErr("load tokenizer", err)
	}

	padID, ok := tok.TokenToId(padToken)
	if !ok {
		// 词表没有 [PAD] 时回退到模型配置，再兜底 0（与离线脚本一致）
		if cfg.PadTokenID != nil {
			padID = *cfg.PadTokenID
		} else {
			padID = 0
		}
	}

	tok.WithTruncation(&tokenizer.TruncationParams{
		MaxLength: maxSeqLen,
		Strategy:  tokenizer.LongestFirst,
	})
	paddingStrategy := tokenizer.NewPaddingStrategy(tokenizer.WithFixed(maxSeqLen))
	tok.WithPadding(&tokenizer.PaddingParams{
		Strategy:  *paddingStrategy,
		Direction: tokenizer.Right,
		PadId:     padID,
		PadTypeId: 0,
		PadToken:  padToken,
	})

	modelPath := filepath.Join(tmpDir, "model.onnx")
	if err := os.WriteFile(modelPath, modelData, 0o600); err != nil {
		return nil, loadErr("write model file", err)
	}
	runtime, err := factory(modelPath)
	if err != nil {
		return nil, loadErr("create model runtime", err)
	}

	return &artifact{
		tok:       tok,
		runtime:   runtime,
		maxSeqLen: maxSeqLen,
	}, nil
}
