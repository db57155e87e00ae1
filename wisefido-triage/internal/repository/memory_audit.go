package repository

import (
	"context"
	"sync"

	"owlback/wisefido-triage/internal/domain"
)

// MemoryAuditRepo: DB 未启用或不可用时使用，只保留最近 capacity 条
type MemoryAuditRepo struct {
	mu       sync.RWMutex
	entries  []domain.InvocationAudit
	capacity int
}

func NewMemoryAuditRepo(capacity int) *MemoryAuditRepo {
	if capacity <= 0 {
		capacity = MaxListLimit
	}
	return &MemoryAuditRepo{capacity: capacity}
}

var _ AuditRepo = (*MemoryAuditRepo)(nil)

func (r *MemoryAuditRepo) Record(_ context.Context, entry domain.InvocationAudit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	if over := len(r.entries) - r.capacity; over > 0 {
		r.entries = append(r.entries[:0:0], r.entries[over:]...)
	}
	return nil
}

func (r *MemoryAuditRepo) ListRecent(_ context.Context, limit int) ([]domain.InvocationAudit, error) {
	limit = ClampLimit(limit)
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.InvocationAudit, 0, min(limit, len(r.entries)))
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}
