package runplan

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveUnitExportsMergesGlobalAndUnitValues(t *testing.T) {
	path := writePlan(t, `
[global.env]
only_global = "a"

[global.paths]
state_dir = "/global/state"

[global.options]
summary_args = "--global-summary"

[global.action.summarize]
args = ["--g"]

[[unit]]
name = "u"
schedule = "0 * * * *"
mode = "hourly"
actions = ["fetch"]

[unit.env]
only_unit = "b"

[unit.options]
summary_args = "--unit-summary"

[unit.action.summarize]
args = ["--u"]
`)

	lines, err := DeriveUnitExports(path, "u")
	require.NoError(t, err)

	assert.Contains(t, lines, "apply_if_unset ONLY_GLOBAL a")
	assert.Contains(t, lines, "apply_if_unset ONLY_UNIT b")
	assert.Contains(t, lines, "apply_if_unset MINERVA_STATE_DIR /global/state")
	assert.Contains(t, lines, "apply_if_unset MINERVA_SUMMARY_ARGS --unit-summary")
	assert.Contains(t, lines, "apply_if_unset MINERVA_ACTION_SUMMARIZE_ARGS '--g --u'")

	tail := lines[len(lines)-3:]
	assert.Equal(t, []string{
		"apply_if_unset MINERVA_SELECTED_ACTIONS fetch",
		"apply_if_unset MINERVA_SELECTED_MODE hourly",
		"apply_if_unset MINERVA_SELECTED_UNIT u",
	}, tail)
}

func TestDeriveUnitExportsNamespacePrefixes(t *testing.T) {
	path := writePlan(t, `
[global.providers]
summary = "openrouter"

[global.tokens]
openrouter = "secret-token"

[global.env]
ALREADY_UPPER = "kept"

[[unit]]
name = "u"
schedule = "0 * * * *"
actions = ["fetch"]

[unit.paths]
"scratch dir" = "/tmp/scratch"
`)

	lines, err := DeriveUnitExports(path, "u")
	require.NoError(t, err)

	assert.Contains(t, lines, "apply_if_unset MINERVA_PROVIDER_SUMMARY openrouter")
	assert.Contains(t, lines, "apply_if_unset MINERVA_TOKEN_OPENROUTER secret-token")
	assert.Contains(t, lines, "apply_if_unset ALREADY_UPPER kept")
	assert.Contains(t, lines, "apply_if_unset MINERVA_SCRATCH_DIR /tmp/scratch")
}

func TestDeriveUnitExportsMovesConfigPathToPaths(t *testing.T) {
	path := writePlan(t, `
[global.options]
config_path = "/etc/minerva/google-services.json"

[[unit]]
name = "u"
schedule = "0 * * * *"
actions = ["fetch"]
`)

	lines, err := DeriveUnitExports(path, "u")
	require.NoError(t, err)

	assert.Contains(t, lines, "apply_if_unset MINERVA_CONFIG_PATH /etc/minerva/google-services.json")
}

func TestDeriveUnitExportsUsesModeFallbacks(t *testing.T) {
	path := writePlan(t, `
[[unit]]
name = "standalone"
schedule = "0 * * * *"
actions = ["fetch"]
`)

	lines, err := DeriveUnitExports(path, "standalone")
	require.NoError(t, err)
	assert.Contains(t, lines, "apply_if_unset MINERVA_SELECTED_MODE standalone")
}

func TestDeriveUnitExportsMissingUnit(t *testing.T) {
	_, err := DeriveUnitExports(filepath.Join(t.TempDir(), "missing-plan.toml"), "unknown")

	var lookupErr *UnitNotFoundError
	require.True(t, errors.As(err, &lookupErr), "want *UnitNotFoundError, got %T: %v", err, err)
	assert.Equal(t, "unknown", lookupErr.Unit)

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr), "lookup failures must not be validation errors")
}

func TestDeriveUnitExportsWorksAgainstDefaultPlan(t *testing.T) {
	lines, err := DeriveUnitExports(filepath.Join(t.TempDir(), "missing-plan.toml"), "daily")
	require.NoError(t, err)

	assert.Contains(t, lines, "apply_if_unset MINERVA_SELECTED_ACTIONS 'fetch summarize publish podcast'")
	assert.Contains(t, lines, "apply_if_unset MINERVA_SELECTED_MODE daily")
	assert.Contains(t, lines, "apply_if_unset MINERVA_SELECTED_UNIT daily")
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"state_dir", "STATE_DIR"},
		{"scratch dir", "SCRATCH_DIR"},
		{"weird--key!!", "WEIRD_KEY"},
		{"_padded_", "PADDED"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeKey(tt.in), "SanitizeKey(%q)", tt.in)
	}
}
