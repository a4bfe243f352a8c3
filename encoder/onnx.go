package encoder

import (
	"context"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNX 模型的固定输入/输出名，与离线导出脚本的 torch.onnx.export 约定一致。
const (
	inputIDsName      = "input_ids"
	attentionMaskName = "attention_mask"
	tokenTypeIDsName  = "token_type_ids"
	lastHiddenState   = "last_hidden_state"
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// initONNXRuntime 初始化全局 ONNX Runtime 环境（进程内一次）。
// 共享库路径可用 ONNXRUNTIME_SHARED_LIBRARY_PATH 覆盖，便于容器内布置。
func initONNXRuntime() error {
	ortInitOnce.Do(func() {
		if p := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); p != "" {
			ort.SetSharedLibraryPath(p)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// ONNXRuntime 是基于 ONNX Runtime 的 Runtime 实现。
// 加载一次模型，会话在进程生命周期内复用；Run 本身是并发安全的。
type ONNXRuntime struct {
	session      *ort.DynamicAdvancedSession
	hasTokenType bool
}

// NewONNXRuntime 从模型文件创建推理会话。
// withTokenTypes 指定模型是否声明了 token_type_ids 输入
// （BERT 系为 true；部分蒸馏模型导出时去掉了该输入）。
func NewONNXRuntime(modelPath string, withTokenTypes bool) (*ONNXRuntime, error) {
	if err := initONNXRuntime(); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	inputs := []string{inputIDsName, attentionMaskName}
	if withTokenTypes {
		inputs = append(inputs, tokenTypeIDsName)
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		inputs, []string{lastHiddenState}, nil)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &ONNXRuntime{
		session:      session,
		hasTokenType: withTokenTypes,
	}, nil
}

// Forward 实现 Runtime 接口。
func (r *ONNXRuntime) Forward(ctx context.Context, inputIDs, attentionMask, typeIDs []int64) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seqLen := len(inputIDs)
	if seqLen == 0 || len(attentionMask) != seqLen {
		return nil, fmt.Errorf("forward: input_ids and attention_mask must be non-empty and equal length")
	}

	shape := ort.NewShape(1, int64(seqLen))
	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("create input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	inputs := []ort.Value{idsTensor, maskTensor}
	if r.hasTokenType {
		if len(typeIDs) != seqLen {
			return nil, fmt.Errorf("forward: token_type_ids length mismatch")
		}
		typeTensor, err := ort.NewTensor(shape, typeIDs)
		if err != nil {
			return nil, fmt.Errorf("create token_type_ids tensor: %w", err)
		}
		defer typeTensor.Destroy()
		inputs = append(inputs, typeTensor)
	}

	outputs := []ort.Value{nil}
	if err := r.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	defer outputs[0].Destroy()

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}

	outShape := hidden.GetShape()
	if len(outShape) != 3 || outShape[0] != 1 || int(outShape[1]) != seqLen {
		return nil, fmt.Errorf("unexpected %s shape %v, want (1, %d, hidden)", lastHiddenState, outShape, seqLen)
	}
	hiddenSize := int(outShape[2])

	data := hidden.GetData()
	out := make([][]float64, seqLen)
	for i := 0; i < seqLen; i++ {
		row := make([]float64, hiddenSize)
		for j := 0; j < hiddenSize; j++ {
			row[j] = float64(data[i*hiddenSize+j])
		}
		out[i] = row
	}
	return out, nil
}

// Close 实现 Runtime 接口。
func (r *ONNXRuntime) Close() error {
	if r.session != nil {
		r.session.Destroy()
		r.session = nil
	}
	return nil
}
