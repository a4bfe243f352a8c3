// Package encoder 将自由文本编码为与离线向量表同一语义空间的定长向量。
//
// 流程（与离线生成流程逐位一致，属正确性契约而非实现细节）：
//  1. tokenizer 分词，截断到最大序列长度，右侧补齐 pad token
//  2. 数值模型前向传播，得到逐 token 隐层向量（last_hidden_state）
//  3. attention mask 加权平均池化，分母下限 1e-9
//  4. L2 归一化
package encoder

import "context"

// Runtime 是数值模型前向传播的抽象：token ids + attention mask → 逐 token 隐层向量。
//
// 设计原则：
//   - 编码管线（分词/池化/归一化）与推理后端解耦
//   - 生产实现为 ONNX Runtime（onnx.go）；测试使用确定性假实现
//
// 实现必须是确定性的：同一输入的两次前向必须产生逐位相同的输出。
type Runtime interface {
	// Forward 执行 batch=1 的前向传播。
	// inputIDs/attentionMask/typeIDs 等长（typeIDs 在模型无此输入时被忽略），
	// 返回 [seqLen][hidden] 的隐层矩阵。
	Forward(ctx context.Context, inputIDs, attentionMask, typeIDs []int64) ([][]float64, error)

	// Close 释放推理会话资源
	Close() error
}
