package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind 对调用方可区分的失败类别
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindValidation ErrorKind = "validation"
	KindProcess    ErrorKind = "process"
	KindTimeout    ErrorKind = "timeout"
	KindDecode     ErrorKind = "decode"
	KindInternal   ErrorKind = "internal"
)

// ValidationError 必填字段缺失，在启动任何进程之前返回
type ValidationError struct {
	Operation Operation
	Field     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Operation, e.Field)
}

// ProcessError 外部程序非零退出、启动失败或超时
type ProcessError struct {
	Operation Operation
	ExitCode  int // -1 表示进程未能启动或被终止
	Stderr    string
	TimedOut  bool
	Err       error
}

func (e *ProcessError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", e.Operation)
	switch {
	case e.TimedOut:
		b.WriteString("triage program timed out")
	case errors.Is(e.Err, context.Canceled):
		b.WriteString("triage program call was cancelled")
	case e.ExitCode < 0:
		b.WriteString("triage program failed to start")
	default:
		fmt.Fprintf(&b, "triage program exited with code %d", e.ExitCode)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProcessError) Unwrap() error { return e.Err }

// DecodeError 进程正常退出，但 stdout 不符合任何一种输出格式
type DecodeError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode list output: %s: %v", e.Reason, e.Err)
	}
	return "decode list output: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Kind 把错误映射到类别，nil 返回 KindNone
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var pe *ProcessError
	if errors.As(err, &pe) {
		if pe.TimedOut {
			return KindTimeout
		}
		return KindProcess
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return KindDecode
	}
	return KindInternal
}

// Diagnostic 返回用于排查的原始文本（stderr 或原始 stdout）
func Diagnostic(err error) string {
	var pe *ProcessError
	if errors.As(err, &pe) {
		if pe.Stderr != "" {
			return pe.Stderr
		}
		if pe.Err != nil {
			return pe.Err.Error()
		}
		return ""
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Raw
	}
	return ""
}
