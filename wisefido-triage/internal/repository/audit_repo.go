package repository

import (
	"context"

	"owlback/wisefido-triage/internal/domain"
)

// AuditRepo 外部程序调用审计Repository接口
type AuditRepo interface {
	// Record 写入一条审计记录
	Record(ctx context.Context, entry domain.InvocationAudit) error
	// ListRecent 按时间倒序返回最近 limit 条
	ListRecent(ctx context.Context, limit int) ([]domain.InvocationAudit, error)
}

// DefaultListLimit ListRecent 的默认/最大条数
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ClampLimit 把 limit 限制在 [1, MaxListLimit]，<=0 使用默认值
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
