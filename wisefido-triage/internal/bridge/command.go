package bridge

import (
	"fmt"
	"strings"
)

// Operation 外部程序支持的子命令
type Operation string

const (
	OpList   Operation = "list"
	OpAdd    Operation = "add"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Args 各操作的参数。字段按原文透传给外部程序，只校验是否存在。
type Args struct {
	ID       string
	Name     string
	Age      string
	Severity string
}

// Invocation 一次外部程序调用：程序路径 + 参数向量
type Invocation struct {
	Operation Operation
	Program   string
	Args      []string

	sensitive []int // Args 中不能写入日志的下标（患者姓名）
}

// Argv 完整参数向量（含程序路径）
func (inv Invocation) Argv() []string {
	return append([]string{inv.Program}, inv.Args...)
}

// ShellString 旧版单行命令字符串（每个参数单引号转义），不会被执行
func (inv Invocation) ShellString() string {
	return joinQuoted(inv.Argv())
}

// RedactedString 与 ShellString 相同，但患者姓名替换为 redactedArg，用于日志
func (inv Invocation) RedactedString() string {
	argv := inv.Argv()
	for _, i := range inv.sensitive {
		if i+1 < len(argv) {
			argv[i+1] = redactedArg
		}
	}
	return joinQuoted(argv)
}

const redactedArg = "***"

func joinQuoted(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Builder 根据操作构造参数向量
type Builder struct {
	Program  string
	BaseArgs []string // 放在子命令之前，例如解释器脚本路径
}

// NewBuilder 创建命令构造器
func NewBuilder(program string, baseArgs ...string) *Builder {
	return &Builder{Program: program, BaseArgs: baseArgs}
}

type field struct {
	name      string
	value     string
	sensitive bool
}

// Build 构造调用。name 等字段始终作为独立的 argv 元素传递，不经过 shell。
func (b *Builder) Build(op Operation, args Args) (Invocation, error) {
	var fields []field
	switch op {
	case OpList:
	case OpAdd:
		fields = []field{{"id", args.ID, false}, {"name", args.Name, true}, {"age", args.Age, false}, {"severity", args.Severity, false}}
	case OpUpdate:
		fields = []field{{"id", args.ID, false}, {"severity", args.Severity, false}}
	case OpDelete:
		fields = []field{{"id", args.ID, false}}
	default:
		return Invocation{}, fmt.Errorf("unknown operation %q", op)
	}

	argv := make([]string, 0, len(b.BaseArgs)+1+len(fields))
	argv = append(argv, b.BaseArgs...)
	argv = append(argv, string(op))
	var sensitive []int
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return Invocation{}, &ValidationError{Operation: op, Field: f.name}
		}
		if f.sensitive {
			sensitive = append(sensitive, len(argv))
		}
		argv = append(argv, f.value)
	}
	return Invocation{Operation: op, Program: b.Program, Args: argv, sensitive: sensitive}, nil
}
