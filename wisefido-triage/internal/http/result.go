package httpapi

// Result 统一响应包装
// - code: 2000 成功，-1 失败
// - type: 'success' | 'error'
// - message: string
// - result: any
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// ErrorDetail 失败原因：kind 区分输入错误 / 后端程序失败 / 输出无法识别，detail 为原始诊断文本
type ErrorDetail struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// FailWith 带错误类别的失败响应
func FailWith(message string, detail ErrorDetail) Result[ErrorDetail] {
	return Result[ErrorDetail]{Code: ResultError, Type: "error", Message: message, Result: detail}
}

// Ack 写操作成功
type Ack struct {
	OK bool `json:"ok"`
}
