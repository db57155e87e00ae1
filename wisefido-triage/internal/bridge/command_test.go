package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ArgumentVectors(t *testing.T) {
	b := NewBuilder("/opt/triage/triage")

	tests := []struct {
		op   Operation
		args Args
		want []string
	}{
		{OpList, Args{Name: "ignored"}, []string{"list"}},
		{OpAdd, Args{ID: "7", Name: "Jane Doe", Age: "42", Severity: "3"}, []string{"add", "7", "Jane Doe", "42", "3"}},
		{OpUpdate, Args{ID: "7", Severity: "1"}, []string{"update", "7", "1"}},
		{OpDelete, Args{ID: "7"}, []string{"delete", "7"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			inv, err := b.Build(tt.op, tt.args)
			require.NoError(t, err)
			assert.Equal(t, "/opt/triage/triage", inv.Program)
			assert.Equal(t, tt.want, inv.Args)
			assert.Equal(t, tt.op, inv.Operation)
		})
	}
}

func TestBuild_BaseArgsPrecedeSubcommand(t *testing.T) {
	inv, err := NewBuilder("node", "triage.js").Build(OpDelete, Args{ID: "9"})
	require.NoError(t, err)
	assert.Equal(t, []string{"node", "triage.js", "delete", "9"}, inv.Argv())
}

func TestBuild_HostileNameStaysOneArgument(t *testing.T) {
	names := []string{
		`"; rm -rf / #`,
		`$(reboot)`,
		"`id`",
		`O'Brien`,
		`Jane "JD" Doe`,
		"two\nlines",
		"--help",
	}
	b := NewBuilder("triage")
	for _, name := range names {
		inv, err := b.Build(OpAdd, Args{ID: "1", Name: name, Age: "30", Severity: "2"})
		require.NoError(t, err)
		require.Len(t, inv.Args, 5)
		assert.Equal(t, name, inv.Args[2])
	}
}

func TestBuild_MissingFieldsAreValidationErrors(t *testing.T) {
	b := NewBuilder("triage")
	tests := []struct {
		op    Operation
		args  Args
		field string
	}{
		{OpAdd, Args{Name: "A", Age: "1", Severity: "1"}, "id"},
		{OpAdd, Args{ID: "1", Name: "   ", Age: "1", Severity: "1"}, "name"},
		{OpAdd, Args{ID: "1", Name: "A", Severity: "1"}, "age"},
		{OpAdd, Args{ID: "1", Name: "A", Age: "1"}, "severity"},
		{OpUpdate, Args{ID: "1"}, "severity"},
		{OpUpdate, Args{Severity: "1"}, "id"},
		{OpDelete, Args{}, "id"},
	}
	for _, tt := range tests {
		_, err := b.Build(tt.op, tt.args)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve), "%s %+v", tt.op, tt.args)
		assert.Equal(t, tt.field, ve.Field)
		assert.Equal(t, tt.op, ve.Operation)
	}
}

func TestBuild_UnknownOperation(t *testing.T) {
	_, err := NewBuilder("triage").Build(Operation("purge"), Args{})
	require.Error(t, err)
	assert.Equal(t, KindInternal, Kind(err))
}

func TestInvocation_ShellStringQuotesEveryArgument(t *testing.T) {
	inv, err := NewBuilder("/srv/triage bin/triage").Build(OpAdd, Args{ID: "7", Name: "O'Brien; ls", Age: "42", Severity: "3"})
	require.NoError(t, err)
	assert.Equal(t, `'/srv/triage bin/triage' 'add' '7' 'O'\''Brien; ls' '42' '3'`, inv.ShellString())
}

func TestInvocation_RedactedStringHidesName(t *testing.T) {
	inv, err := NewBuilder("triage", "--db", "p.json").Build(OpAdd, Args{ID: "7", Name: "Jane Doe", Age: "42", Severity: "3"})
	require.NoError(t, err)
	assert.Equal(t, `'triage' '--db' 'p.json' 'add' '7' '***' '42' '3'`, inv.RedactedString())
	// 原始 argv 不受影响
	assert.Equal(t, "Jane Doe", inv.Args[4])

	del, err := NewBuilder("triage").Build(OpDelete, Args{ID: "7"})
	require.NoError(t, err)
	assert.Equal(t, del.ShellString(), del.RedactedString())
}
