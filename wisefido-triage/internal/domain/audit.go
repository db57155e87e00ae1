package domain

import "time"

// InvocationAudit 一次外部程序调用的审计记录（不含患者姓名）
type InvocationAudit struct {
	InvocationID string    `json:"invocation_id"`
	Operation    string    `json:"operation"`
	PatientID    string    `json:"patient_id,omitempty"`
	Outcome      string    `json:"outcome"`              // success | failed
	ErrorKind    string    `json:"error_kind,omitempty"` // validation | process | timeout | decode | internal
	ExitCode     int       `json:"exit_code"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)
