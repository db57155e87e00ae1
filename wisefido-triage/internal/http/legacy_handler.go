package httpapi

import (
	"net/http"

	"owlback/wisefido-triage/internal/bridge"
)

// LegacyHandler 兼容旧前端的路由：成功返回裸数组或 {ok:true}，失败返回 {error:"..."}
type LegacyHandler struct {
	svc TriageService
}

func NewLegacyHandler(svc TriageService) *LegacyHandler {
	return &LegacyHandler{svc: svc}
}

type legacyError struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

func writeLegacyError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	if bridge.Kind(err) == bridge.KindValidation {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, legacyError{
		Error:  message,
		Kind:   string(bridge.Kind(err)),
		Detail: bridge.Diagnostic(err),
	})
}

// Patients GET /patients
func (h *LegacyHandler) Patients(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListPatients(r.Context())
	if err != nil {
		writeLegacyError(w, "C backend error", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// AddPatient POST /addPatient
func (h *LegacyHandler) AddPatient(w http.ResponseWriter, r *http.Request) {
	var body bodyFields
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, legacyError{Error: "Add failed", Kind: string(bridge.KindValidation)})
		return
	}
	err := h.svc.AddPatient(r.Context(), bridge.Args{
		ID:       body.str("id"),
		Name:     body.str("name"),
		Age:      body.str("age"),
		Severity: body.str("severity"),
	})
	if err != nil {
		writeLegacyError(w, "Add failed", err)
		return
	}
	writeJSON(w, http.StatusOK, Ack{OK: true})
}

// UpdatePatient PUT /updatePatient
func (h *LegacyHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	var body bodyFields
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, legacyError{Error: "Update failed", Kind: string(bridge.KindValidation)})
		return
	}
	if err := h.svc.UpdatePatient(r.Context(), body.str("id"), body.str("severity")); err != nil {
		writeLegacyError(w, "Update failed", err)
		return
	}
	writeJSON(w, http.StatusOK, Ack{OK: true})
}

// DeletePatient DELETE /deletePatient/{id}
func (h *LegacyHandler) DeletePatient(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.DeletePatient(r.Context(), id); err != nil {
		writeLegacyError(w, "Delete failed", err)
		return
	}
	writeJSON(w, http.StatusOK, Ack{OK: true})
}
