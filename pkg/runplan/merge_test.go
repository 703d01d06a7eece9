package runplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergedUnitScalarListAndMapSemantics(t *testing.T) {
	plan, err := FromDocument(map[string]any{
		"global": map[string]any{
			"mode":    "hourly",
			"args":    []any{"--global"},
			"actions": []any{"fetch"},
			"tokens":  map[string]any{"openrouter": "global-token"},
			"secrets": map[string]any{"telegram": "global-secret"},
			"action":  map[string]any{"fetch": map[string]any{"args": []any{"--global-fetch"}}},
		},
		"unit": []any{
			map[string]any{
				"name":     "u1",
				"schedule": "0 * * * *",
				"mode":     "daily",
				"args":     []any{"--unit"},
				"actions":  []any{"summarize"},
				"tokens":   map[string]any{"openrouter": "unit-token"},
				"secrets":  map[string]any{"chat": "unit-secret"},
				"action":   map[string]any{"fetch": map[string]any{"args": []any{"--unit-fetch"}}},
			},
		},
	}, "plan.toml")
	require.NoError(t, err)

	merged := plan.MergedUnit(plan.Units[0])
	assert.Equal(t, "daily", merged.Mode)
	assert.Equal(t, []string{"--global", "--unit"}, merged.Args)
	assert.Equal(t, []string{"fetch", "summarize"}, merged.Actions)
	assert.Equal(t, "unit-token", merged.Tokens["openrouter"])
	assert.Equal(t, "global-secret", merged.Secrets["telegram"])
	assert.Equal(t, "unit-secret", merged.Secrets["chat"])
	assert.Equal(t, []string{"--global-fetch", "--unit-fetch"}, merged.ActionArgs["fetch"])
}

func TestMergedUnitFallsBackToGlobalMode(t *testing.T) {
	plan, err := FromDocument(map[string]any{
		"global": map[string]any{"mode": "hourly"},
		"unit": []any{
			map[string]any{"name": "u", "schedule": "0 * * * *", "actions": []any{"fetch"}},
		},
	}, "plan.toml")
	require.NoError(t, err)

	assert.Equal(t, "hourly", plan.MergedUnit(plan.Units[0]).Mode)
}

func TestMergedUnitActionArgsWithUnitOnlyAction(t *testing.T) {
	plan, err := FromDocument(map[string]any{
		"global": map[string]any{
			"actions": []any{"fetch"},
			"action":  map[string]any{"fetch": map[string]any{"args": []any{"--global"}}},
		},
		"unit": []any{
			map[string]any{
				"name":     "u2",
				"schedule": "0 * * * *",
				"actions":  []any{"summarize"},
				"action": map[string]any{
					"fetch":     map[string]any{"args": []any{"--unit"}},
					"summarize": map[string]any{"args": []any{"--provider", "openrouter"}},
				},
			},
		},
	}, "plan.toml")
	require.NoError(t, err)

	merged := plan.MergedUnit(plan.Units[0])
	assert.Equal(t, []string{"--global", "--unit"}, merged.ActionArgs["fetch"])
	assert.Equal(t, []string{"--provider", "openrouter"}, merged.ActionArgs["summarize"])
}

func TestMergedUnitKeepsDuplicateActionsFromAlias(t *testing.T) {
	plan, err := FromDocument(map[string]any{
		"global": map[string]any{
			"actions": []any{"summarise"},
			"action":  map[string]any{"summarise": map[string]any{"args": []any{"--global"}}},
		},
		"unit": []any{
			map[string]any{
				"name":     "u3",
				"schedule": "0 * * * *",
				"actions":  []any{"summarize"},
				"action":   map[string]any{"summarise": map[string]any{"args": []any{"--unit"}}},
			},
		},
	}, "plan.toml")
	require.NoError(t, err)

	merged := plan.MergedUnit(plan.Units[0])
	assert.Equal(t, []string{"summarize", "summarize"}, merged.Actions)
	assert.Equal(t, []string{"--global", "--unit"}, merged.ActionArgs["summarize"])
}

func TestMergedUnitIsPureAndRepeatable(t *testing.T) {
	plan, err := FromDocument(map[string]any{
		"global": map[string]any{"actions": []any{"fetch"}, "args": []any{"--g"}},
		"unit": []any{
			map[string]any{"name": "u", "schedule": "0 * * * *", "args": []any{"--u"}},
		},
	}, "plan.toml")
	require.NoError(t, err)

	first := plan.MergedUnit(plan.Units[0])
	second := plan.MergedUnit(plan.Units[0])
	assert.Equal(t, first, second)

	first.Tokens["mutated"] = "x"
	first.Args[0] = "changed"
	assert.Equal(t, []string{"--g"}, plan.Global.Args, "merge must not mutate the global config")
	assert.Empty(t, plan.Units[0].Tokens, "merge must not mutate the unit")
}
