package bridge

import (
	"context"
	"errors"

	"owlback/wisefido-triage/internal/domain"

	"go.uber.org/zap"
)

// Bridge 把分诊操作翻译成外部程序调用：BUILD → INVOKE → (仅 list: DECODE)。
// 每次调用最多执行一次外部程序，不缓存、不重试，也不持有跨请求的记录状态。
type Bridge struct {
	builder *Builder
	runner  Runner
	logger  *zap.Logger

	// writeSem 容量为 1；排队中的写操作仍然响应自己的 ctx
	writeSem chan struct{}
}

// Option Bridge 选项
type Option func(*Bridge)

// WithSerializedWrites add/update/delete 的 INVOKE 阶段串行执行（list 不受影响）
func WithSerializedWrites(enabled bool) Option {
	return func(b *Bridge) {
		if enabled {
			b.writeSem = make(chan struct{}, 1)
		} else {
			b.writeSem = nil
		}
	}
}

// New 创建 Bridge
func New(builder *Builder, runner Runner, logger *zap.Logger, opts ...Option) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bridge{builder: builder, runner: runner, logger: logger}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ListPatients 调用 `<prog> list` 并解码 stdout
func (b *Bridge) ListPatients(ctx context.Context) ([]domain.PatientRecord, error) {
	res, err := b.invoke(ctx, OpList, Args{})
	if err != nil {
		return nil, err
	}
	decoded, err := Decode(res.Stdout)
	if err != nil {
		b.logger.Warn("triage list output not understood",
			zap.Int("stdout_bytes", len(res.Stdout)),
			zap.Error(err),
		)
		return nil, err
	}
	b.logger.Debug("triage list decoded",
		zap.Stringer("format", decoded.Format),
		zap.Int("records", len(decoded.Records)),
	)
	return decoded.Records, nil
}

// AddPatient 调用 `<prog> add <id> <name> <age> <severity>`
func (b *Bridge) AddPatient(ctx context.Context, args Args) error {
	_, err := b.invoke(ctx, OpAdd, args)
	return err
}

// UpdatePatient 调用 `<prog> update <id> <severity>`
func (b *Bridge) UpdatePatient(ctx context.Context, id, severity string) error {
	_, err := b.invoke(ctx, OpUpdate, Args{ID: id, Severity: severity})
	return err
}

// DeletePatient 调用 `<prog> delete <id>`
func (b *Bridge) DeletePatient(ctx context.Context, id string) error {
	_, err := b.invoke(ctx, OpDelete, Args{ID: id})
	return err
}

func (b *Bridge) invoke(ctx context.Context, op Operation, args Args) (Result, error) {
	inv, err := b.builder.Build(op, args)
	if err != nil {
		b.logger.Info("triage call rejected", zap.String("operation", string(op)), zap.Error(err))
		return Result{}, err
	}

	if b.writeSem != nil && op != OpList {
		select {
		case b.writeSem <- struct{}{}:
			defer func() { <-b.writeSem }()
		case <-ctx.Done():
			err := &ProcessError{
				Operation: op,
				ExitCode:  -1,
				TimedOut:  errors.Is(ctx.Err(), context.DeadlineExceeded),
				Err:       ctx.Err(),
			}
			b.logger.Warn("triage call gave up waiting for write slot",
				zap.String("operation", string(op)),
				zap.String("patient_id", args.ID),
				zap.Error(err),
			)
			return Result{ExitCode: -1}, err
		}
	}

	res, err := b.runner.Run(ctx, inv)
	fields := []zap.Field{
		zap.String("operation", string(op)),
		zap.String("patient_id", args.ID),
		zap.String("command", inv.RedactedString()),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration),
	}
	if err != nil {
		b.logger.Error("triage program call failed", append(fields, zap.Error(err))...)
		return res, err
	}
	b.logger.Debug("triage program call finished", fields...)
	return res, nil
}
