package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"owlback/wisefido-triage/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListPatients(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/triage/api/v1/patients", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"code":2000,"type":"success","message":"ok","result":[{"id":1,"name":"Ann","age":null,"severity":2}]}`)
	}))
	defer srv.Close()

	records, err := New(srv.URL, time.Second).ListPatients(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.IntOf(1), records[0].ID)
	assert.Equal(t, "Ann", records[0].Name)
	assert.False(t, records[0].Age.Valid)
}

func TestClient_WritesSendExpectedRequests(t *testing.T) {
	var got []string
	var added Patient
	var updated map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Method+" "+r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		switch r.Method {
		case http.MethodPost:
			_ = json.Unmarshal(body, &added)
		case http.MethodPut:
			_ = json.Unmarshal(body, &updated)
		}
		_, _ = io.WriteString(w, `{"code":2000,"type":"success","message":"ok","result":{"ok":true}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	ctx := context.Background()
	require.NoError(t, c.AddPatient(ctx, Patient{ID: "7", Name: "O'Brien", Age: "42", Severity: "3"}))
	require.NoError(t, c.UpdatePatient(ctx, "7", "1"))
	require.NoError(t, c.DeletePatient(ctx, "7"))

	assert.Equal(t, []string{
		"POST /triage/api/v1/patients",
		"PUT /triage/api/v1/patients/7",
		"DELETE /triage/api/v1/patients/7",
	}, got)
	assert.Equal(t, Patient{ID: "7", Name: "O'Brien", Age: "42", Severity: "3"}, added)
	assert.Equal(t, map[string]string{"severity": "1"}, updated)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"code":-1,"type":"error","message":"triage backend failed","result":{"kind":"process","detail":"disk full"}}`)
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).DeletePatient(context.Background(), "7")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "process", apiErr.Kind)
	assert.Equal(t, "disk full", apiErr.Detail)
	assert.Equal(t, 1, calls)
}

func TestClient_NonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).ListPatients(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}
