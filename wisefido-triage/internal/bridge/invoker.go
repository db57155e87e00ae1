package bridge

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"
)

// Result 一次调用的退出码与两路输出
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner 执行一次外部程序调用
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// ExecRunner 通过 os/exec 直接启动外部程序（不经过 shell），每次调用只执行一次，不重试
type ExecRunner struct {
	Timeout time.Duration // <=0 表示不设超时
	Dir     string
	Env     []string // 追加到当前进程环境变量之后
}

// waitDelay 进程退出或被杀后等待输出管道关闭的最长时间
const waitDelay = 2 * time.Second

func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err == nil {
		return res, nil
	}

	res.ExitCode = -1
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, &ProcessError{
			Operation: inv.Operation,
			ExitCode:  -1,
			Stderr:    res.Stderr,
			TimedOut:  errors.Is(ctxErr, context.DeadlineExceeded),
			Err:       ctxErr,
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &ProcessError{
			Operation: inv.Operation,
			ExitCode:  res.ExitCode,
			Stderr:    res.Stderr,
			Err:       err,
		}
	}

	// 启动失败：程序不存在、没有执行权限等
	return res, &ProcessError{Operation: inv.Operation, ExitCode: -1, Stderr: res.Stderr, Err: err}
}
