package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message），并可携带底层原因（Err）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 参数校验错误：INVALID_REQUEST, INVALID_QUERY
//   - 资源加载错误：EMBEDDING_LOAD, ENCODER_LOAD（当前进程内致命，换新进程可重试）
//   - 计算错误：COMPUTATION（视为 bug 信号，带完整上下文记录日志）
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "INVALID_REQUEST", "EMBEDDING_LOAD"）
	Message string // 错误消息
	Module  string // 模块名称（如 "embedding", "encoder", "recommend"）
	Err     error  // 底层原因（可为 nil）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 返回底层原因，支持 errors.Is / errors.As 链式检查。
func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带底层原因的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	// 通用错误代码
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误

	// 推荐链路错误代码
	ErrorCodeInvalidRequest = "INVALID_REQUEST" // 策略参数缺失/非法，换参数前重试无意义
	ErrorCodeInvalidQuery   = "INVALID_QUERY"   // 查询文本为空或仅空白
	ErrorCodeEmbeddingLoad  = "EMBEDDING_LOAD"  // 向量表加载失败，当前进程实例内致命
	ErrorCodeEncoderLoad    = "ENCODER_LOAD"    // 编码器制品加载失败，当前进程实例内致命
	ErrorCodeComputation    = "COMPUTATION"     // 数值计算异常（如向量维度不一致）
)

// 模块名称常量
const (
	ModuleStore     = "store"     // 存储模块
	ModuleBlob      = "blob"      // 对象存储模块
	ModuleEmbedding = "embedding" // 向量表模块
	ModuleEncoder   = "encoder"   // 文本编码模块
	ModuleRecall    = "recall"    // 召回策略模块
	ModuleRecommend = "recommend" // 推荐编排模块
	ModuleFeature   = "feature"   // 特征模块
)

// 通用错误检查函数

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsInvalidRequest 检查错误是否为 INVALID_REQUEST
func IsInvalidRequest(err error) bool {
	return hasCode(err, ErrorCodeInvalidRequest)
}

// IsInvalidQuery 检查错误是否为 INVALID_QUERY
func IsInvalidQuery(err error) bool {
	return hasCode(err, ErrorCodeInvalidQuery)
}

// IsEmbeddingLoad 检查错误是否为 EMBEDDING_LOAD
func IsEmbeddingLoad(err error) bool {
	return hasCode(err, ErrorCodeEmbeddingLoad)
}

// IsEncoderLoad 检查错误是否为 ENCODER_LOAD
func IsEncoderLoad(err error) bool {
	return hasCode(err, ErrorCodeEncoderLoad)
}

// IsComputation 检查错误是否为 COMPUTATION
func IsComputation(err error) bool {
	return hasCode(err, ErrorCodeComputation)
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}
