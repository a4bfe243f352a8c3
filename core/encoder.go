package core

import "context"

// Encoder 是文本编码的领域接口：自由文本 → 定长向量。
//
// 约束：
//   - 输出向量与向量表中预计算向量处于同一语义空间，
//     预处理/池化/归一化流程必须与离线生成流程逐位一致
//   - 同一冻结制品下，同一文本的两次编码结果必须完全相同（确定性）
//
// 实现：
//   - encoder.TextEncoder（tokenizer + ONNX 前向 + mean pooling）
type Encoder interface {
	// Encode 将查询文本编码为 L2 归一化的向量。
	// 空文本或仅空白文本返回 INVALID_QUERY。
	Encode(ctx context.Context, text string) ([]float64, error)
}
