package httpapi

import (
	"net/http"

	"owlback/wisefido-triage/internal/bridge"
)

// statusForError 按错误类别映射 HTTP 状态码
func statusForError(err error) int {
	switch bridge.Kind(err) {
	case bridge.KindValidation:
		return http.StatusBadRequest
	case bridge.KindProcess, bridge.KindDecode:
		return http.StatusBadGateway
	case bridge.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func messageForError(err error) string {
	switch bridge.Kind(err) {
	case bridge.KindValidation:
		return err.Error()
	case bridge.KindProcess:
		return "triage backend failed"
	case bridge.KindTimeout:
		return "triage backend timed out"
	case bridge.KindDecode:
		return "triage backend returned output in an unrecognised format"
	default:
		return "internal error"
	}
}

func writeBridgeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), FailWith(messageForError(err), ErrorDetail{
		Kind:   string(bridge.Kind(err)),
		Detail: bridge.Diagnostic(err),
	}))
}
