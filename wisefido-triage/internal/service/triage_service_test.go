package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"owlback/wisefido-triage/internal/bridge"
	"owlback/wisefido-triage/internal/domain"
	"owlback/wisefido-triage/internal/notify"
	"owlback/wisefido-triage/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBridge struct {
	records []domain.PatientRecord
	err     error
	added   []bridge.Args
}

func (f *fakeBridge) ListPatients(context.Context) ([]domain.PatientRecord, error) {
	return f.records, f.err
}

func (f *fakeBridge) AddPatient(_ context.Context, args bridge.Args) error {
	f.added = append(f.added, args)
	return f.err
}

func (f *fakeBridge) UpdatePatient(context.Context, string, string) error { return f.err }
func (f *fakeBridge) DeletePatient(context.Context, string) error         { return f.err }

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type failingAudit struct{}

func (failingAudit) Record(context.Context, domain.InvocationAudit) error {
	return errors.New("db down")
}

func (failingAudit) ListRecent(context.Context, int) ([]domain.InvocationAudit, error) {
	return nil, errors.New("db down")
}

func TestTriageService_AddPublishesEventAndAudits(t *testing.T) {
	fb := &fakeBridge{}
	pub := &recordingPublisher{}
	audit := repository.NewMemoryAuditRepo(10)
	svc := NewTriageService(fb, audit, pub, zap.NewNop())

	args := bridge.Args{ID: "7", Name: "O'Brien", Age: "42", Severity: "3"}
	require.NoError(t, svc.AddPatient(context.Background(), args))

	assert.Equal(t, []bridge.Args{args}, fb.added)
	require.Len(t, pub.events, 1)
	assert.Equal(t, notify.EventPatientAdded, pub.events[0].Type)
	assert.Equal(t, "7", pub.events[0].PatientID)

	entries, err := svc.RecentInvocations(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "add", entries[0].Operation)
	assert.Equal(t, domain.OutcomeSuccess, entries[0].Outcome)
	assert.Equal(t, pub.events[0].InvocationID, entries[0].InvocationID)
}

func TestTriageService_FailureAuditsKindAndSkipsEvent(t *testing.T) {
	fb := &fakeBridge{err: &bridge.ProcessError{Operation: bridge.OpDelete, ExitCode: 2, Stderr: "disk full"}}
	pub := &recordingPublisher{}
	svc := NewTriageService(fb, nil, pub, zap.NewNop())

	err := svc.DeletePatient(context.Background(), "7")
	assert.Equal(t, bridge.KindProcess, bridge.Kind(err))
	assert.Empty(t, pub.events)

	entries, err := svc.RecentInvocations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.OutcomeFailed, entries[0].Outcome)
	assert.Equal(t, "process", entries[0].ErrorKind)
	assert.Equal(t, 2, entries[0].ExitCode)
}

func TestTriageService_DecodeFailureAuditsZeroExit(t *testing.T) {
	fb := &fakeBridge{err: &bridge.DecodeError{Raw: "???", Reason: "bad"}}
	svc := NewTriageService(fb, nil, nil, nil)

	records, err := svc.ListPatients(context.Background())
	assert.Nil(t, records)
	assert.Equal(t, bridge.KindDecode, bridge.Kind(err))

	entries, _ := svc.RecentInvocations(context.Background(), 1)
	require.Len(t, entries, 1)
	assert.Equal(t, "decode", entries[0].ErrorKind)
	assert.Equal(t, 0, entries[0].ExitCode)
}

func TestTriageService_SideChannelFailuresDoNotFailCall(t *testing.T) {
	fb := &fakeBridge{records: []domain.PatientRecord{{ID: domain.IntOf(1), Name: "A", Age: domain.IntOf(2), Severity: domain.IntOf(3)}}}
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewTriageService(fb, failingAudit{}, pub, zap.NewNop())

	require.NoError(t, svc.UpdatePatient(context.Background(), "1", "9"))
	records, err := svc.ListPatients(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Len(t, pub.events, 1)
	assert.Equal(t, "9", pub.events[0].Severity)
}
