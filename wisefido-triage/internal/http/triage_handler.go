package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"owlback/wisefido-triage/internal/bridge"
	"owlback/wisefido-triage/internal/domain"

	"go.uber.org/zap"
)

// TriageService 由 service.TriageService 实现
type TriageService interface {
	ListPatients(ctx context.Context) ([]domain.PatientRecord, error)
	AddPatient(ctx context.Context, args bridge.Args) error
	UpdatePatient(ctx context.Context, id, severity string) error
	DeletePatient(ctx context.Context, id string) error
	RecentInvocations(ctx context.Context, limit int) ([]domain.InvocationAudit, error)
}

// TriageHandler 患者分诊 API
type TriageHandler struct {
	svc    TriageService
	logger *zap.Logger
	now    func() time.Time
}

func NewTriageHandler(svc TriageService, logger *zap.Logger) *TriageHandler {
	return &TriageHandler{svc: svc, logger: logger, now: time.Now}
}

// ListPatients GET /triage/api/v1/patients
func (h *TriageHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListPatients(r.Context())
	if err != nil {
		writeBridgeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(records))
}

// AddPatient POST /triage/api/v1/patients  {id,name,age,severity}
func (h *TriageHandler) AddPatient(w http.ResponseWriter, r *http.Request) {
	var body bodyFields
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	args := bridge.Args{
		ID:       body.str("id"),
		Name:     body.str("name"),
		Age:      body.str("age"),
		Severity: body.str("severity"),
	}
	if err := h.svc.AddPatient(r.Context(), args); err != nil {
		writeBridgeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(Ack{OK: true}))
}

// UpdatePatient PUT /triage/api/v1/patients/{id}  {severity}
func (h *TriageHandler) UpdatePatient(w http.ResponseWriter, r *http.Request, id string) {
	var body bodyFields
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}
	if err := h.svc.UpdatePatient(r.Context(), id, body.str("severity")); err != nil {
		writeBridgeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(Ack{OK: true}))
}

// DeletePatient DELETE /triage/api/v1/patients/{id}
func (h *TriageHandler) DeletePatient(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.DeletePatient(r.Context(), id); err != nil {
		writeBridgeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(Ack{OK: true}))
}

// ExportPatients GET /triage/api/v1/patients/export
func (h *TriageHandler) ExportPatients(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListPatients(r.Context())
	if err != nil {
		writeBridgeError(w, err)
		return
	}
	data, err := GeneratePatientExport(records)
	if err != nil {
		h.logger.Error("failed to generate patient export", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate export"))
		return
	}
	filename := fmt.Sprintf("triage-patients-%s.xlsx", h.now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// RecentInvocations GET /triage/api/v1/audit?limit=N
func (h *TriageHandler) RecentInvocations(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 0)
	entries, err := h.svc.RecentInvocations(r.Context(), limit)
	if err != nil {
		h.logger.Warn("failed to list triage invocations", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to list invocations"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(entries))
}
