package service

import (
	"context"
	"errors"
	"time"

	"owlback/wisefido-triage/internal/bridge"
	"owlback/wisefido-triage/internal/domain"
	"owlback/wisefido-triage/internal/notify"
	"owlback/wisefido-triage/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PatientBridge 分诊操作（由 bridge.Bridge 实现）
type PatientBridge interface {
	ListPatients(ctx context.Context) ([]domain.PatientRecord, error)
	AddPatient(ctx context.Context, args bridge.Args) error
	UpdatePatient(ctx context.Context, id, severity string) error
	DeletePatient(ctx context.Context, id string) error
}

// TriageService 在 Bridge 之上记录调用审计并发布变更事件。
// 审计和事件失败只记录日志，不改变调用结果。
type TriageService struct {
	bridge    PatientBridge
	audit     repository.AuditRepo
	publisher notify.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewTriageService 创建 TriageService；audit/publisher 可为 nil
func NewTriageService(b PatientBridge, audit repository.AuditRepo, publisher notify.Publisher, logger *zap.Logger) *TriageService {
	if audit == nil {
		audit = repository.NewMemoryAuditRepo(0)
	}
	if publisher == nil {
		publisher = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriageService{bridge: b, audit: audit, publisher: publisher, logger: logger, now: time.Now}
}

func (s *TriageService) ListPatients(ctx context.Context) ([]domain.PatientRecord, error) {
	var records []domain.PatientRecord
	_, err := s.track(ctx, bridge.OpList, "", func() error {
		var err error
		records, err = s.bridge.ListPatients(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *TriageService) AddPatient(ctx context.Context, args bridge.Args) error {
	invocationID, err := s.track(ctx, bridge.OpAdd, args.ID, func() error {
		return s.bridge.AddPatient(ctx, args)
	})
	if err == nil {
		s.publish(ctx, notify.Event{Type: notify.EventPatientAdded, InvocationID: invocationID, PatientID: args.ID, Severity: args.Severity})
	}
	return err
}

func (s *TriageService) UpdatePatient(ctx context.Context, id, severity string) error {
	invocationID, err := s.track(ctx, bridge.OpUpdate, id, func() error {
		return s.bridge.UpdatePatient(ctx, id, severity)
	})
	if err == nil {
		s.publish(ctx, notify.Event{Type: notify.EventPatientUpdated, InvocationID: invocationID, PatientID: id, Severity: severity})
	}
	return err
}

func (s *TriageService) DeletePatient(ctx context.Context, id string) error {
	invocationID, err := s.track(ctx, bridge.OpDelete, id, func() error {
		return s.bridge.DeletePatient(ctx, id)
	})
	if err == nil {
		s.publish(ctx, notify.Event{Type: notify.EventPatientDeleted, InvocationID: invocationID, PatientID: id})
	}
	return err
}

// RecentInvocations 最近的调用审计
func (s *TriageService) RecentInvocations(ctx context.Context, limit int) ([]domain.InvocationAudit, error) {
	return s.audit.ListRecent(ctx, limit)
}

// track 执行 fn 并写审计记录，返回本次调用的 invocation_id
func (s *TriageService) track(ctx context.Context, op bridge.Operation, patientID string, fn func() error) (string, error) {
	invocationID := uuid.NewString()
	start := s.now()
	err := fn()

	entry := domain.InvocationAudit{
		InvocationID: invocationID,
		Operation:    string(op),
		PatientID:    patientID,
		Outcome:      domain.OutcomeSuccess,
		DurationMs:   s.now().Sub(start).Milliseconds(),
		CreatedAt:    start.UTC(),
	}
	if err != nil {
		entry.Outcome = domain.OutcomeFailed
		entry.ErrorKind = string(bridge.Kind(err))
		entry.ExitCode = -1
		var pe *bridge.ProcessError
		if errors.As(err, &pe) {
			entry.ExitCode = pe.ExitCode
		} else if bridge.Kind(err) == bridge.KindDecode {
			// 进程正常退出，只是输出无法解析
			entry.ExitCode = 0
		}
	}

	// 审计不受请求取消影响
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if auditErr := s.audit.Record(auditCtx, entry); auditErr != nil {
		s.logger.Warn("failed to record triage invocation",
			zap.String("invocation_id", invocationID),
			zap.Error(auditErr),
		)
	}
	return invocationID, err
}

func (s *TriageService) publish(ctx context.Context, ev notify.Event) {
	ev.OccurredAt = s.now().UTC()
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, ev); err != nil {
		s.logger.Warn("failed to publish triage event",
			zap.String("event_type", ev.Type),
			zap.String("patient_id", ev.PatientID),
			zap.Error(err),
		)
	}
}
