package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"owlback/wisefido-triage/internal/bridge"
	"owlback/wisefido-triage/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLegacy_PatientsBareArray(t *testing.T) {
	svc := &fakeService{records: []domain.PatientRecord{
		{ID: domain.IntOf(7), Name: "Unknown", Age: domain.IntOf(42), Severity: domain.IntOf(3)},
	}}
	rr := do(t, newTestRouter(svc), http.MethodGet, "/patients", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id":7,"name":"Unknown","age":42,"severity":3}]`, rr.Body.String())
}

func TestLegacy_Writes(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(svc)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/addPatient", `{"id":"1","name":"Ann","age":30,"severity":2}`).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodPut, "/updatePatient", `{"id":1,"severity":4}`).Code)
	rr := do(t, r, http.MethodDelete, "/deletePatient/1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())

	require.Len(t, svc.calls, 3)
	assert.Equal(t, bridge.Args{ID: "1", Name: "Ann", Age: "30", Severity: "2"}, svc.calls[0].args)
	assert.Equal(t, call{op: "update", id: "1", severity: "4"}, svc.calls[1])
	assert.Equal(t, call{op: "delete", id: "1"}, svc.calls[2])
}

func TestLegacy_ErrorBodies(t *testing.T) {
	svc := &fakeService{err: &bridge.ProcessError{Operation: bridge.OpDelete, ExitCode: 2, Stderr: "disk full"}}
	rr := do(t, newTestRouter(svc), http.MethodDelete, "/deletePatient/7", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var body legacyError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Delete failed", body.Error)
	assert.Equal(t, "process", body.Kind)
	assert.Equal(t, "disk full", body.Detail)

	svc.err = &bridge.ValidationError{Operation: bridge.OpAdd, Field: "name"}
	rr = do(t, newTestRouter(svc), http.MethodPost, "/addPatient", `{"id":"7"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStaticSPAFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>index</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	r := NewRouter(zap.NewNop())
	r.RegisterTriageRoutes(NewTriageHandler(&fakeService{}, zap.NewNop()))
	r.RegisterStaticRoutes(dir)

	rr := do(t, r, http.MethodGet, "/app.js", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "console.log")

	rr = do(t, r, http.MethodGet, "/some/client/route", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "index")

	rr = do(t, r, http.MethodGet, "/triage/api/v1/unknown", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}
