package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_DeliversNameAsSingleArgument(t *testing.T) {
	names := []string{"Jane Doe", `Jane "JD" Doe`, `O'Brien`, `$(whoami); echo pwned`, "  padded  "}
	for _, name := range names {
		inv, err := helperBuilder().Build(OpAdd, Args{ID: "7", Name: name, Age: "42", Severity: "3"})
		require.NoError(t, err)

		res, err := helperRunner("echo").Run(context.Background(), inv)
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)

		var argv []string
		require.NoError(t, json.Unmarshal([]byte(res.Stdout), &argv))
		assert.Equal(t, []string{"add", "7", name, "42", "3"}, argv)
	}
}

func TestExecRunner_NonZeroExitIsProcessError(t *testing.T) {
	inv, err := helperBuilder().Build(OpDelete, Args{ID: "7"})
	require.NoError(t, err)

	res, err := helperRunner("fail", "TRIAGE_HELPER_STDERR=disk full", "TRIAGE_HELPER_EXIT=2").Run(context.Background(), inv)
	var pe *ProcessError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.ExitCode)
	assert.Equal(t, 2, res.ExitCode)
	assert.Contains(t, pe.Stderr, "disk full")
	assert.Contains(t, pe.Error(), "disk full")
	assert.Equal(t, KindProcess, Kind(err))
}

func TestExecRunner_MissingBinaryIsProcessError(t *testing.T) {
	inv, err := NewBuilder(filepath.Join(t.TempDir(), "no-such-triage")).Build(OpList, Args{})
	require.NoError(t, err)

	_, err = (&ExecRunner{}).Run(context.Background(), inv)
	var pe *ProcessError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, -1, pe.ExitCode)
	assert.False(t, pe.TimedOut)
	assert.NotEmpty(t, Diagnostic(err))
}

func TestExecRunner_TimeoutIsProcessError(t *testing.T) {
	inv, err := helperBuilder().Build(OpList, Args{})
	require.NoError(t, err)

	runner := helperRunner("sleep")
	runner.Timeout = 200 * time.Millisecond

	start := time.Now()
	_, err = runner.Run(context.Background(), inv)
	var pe *ProcessError
	require.True(t, errors.As(err, &pe))
	assert.True(t, pe.TimedOut)
	assert.Equal(t, KindTimeout, Kind(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExecRunner_CallerCancellation(t *testing.T) {
	inv, err := helperBuilder().Build(OpList, Args{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = helperRunner("sleep").Run(ctx, inv)
	var pe *ProcessError
	require.True(t, errors.As(err, &pe))
	assert.False(t, pe.TimedOut)
	assert.ErrorIs(t, err, context.Canceled)
}
