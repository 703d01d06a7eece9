// Package runplan loads, merges and validates the declarative run plans
// that drive the scheduled Minerva pipeline units.
//
// Merge semantics: scalar values from a unit override the global value when
// set, list values (args/actions) are appended global first then unit, and
// string maps (tokens/secrets) merge per key with the unit winning.
package runplan

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// GlobalConfig holds plan-wide defaults applied to each unit before
// unit-level overrides.
type GlobalConfig struct {
	Mode       string
	Args       []string
	Actions    []string
	Tokens     map[string]string
	Secrets    map[string]string
	ActionArgs map[string][]string
}

// UnitConfig is the configuration of one schedulable unit.
type UnitConfig struct {
	Name       string
	Schedule   string
	Mode       string
	Enabled    bool
	Args       []string
	Actions    []string
	Tokens     map[string]string
	Secrets    map[string]string
	ActionArgs map[string][]string
}

// RunPlan is a validated run plan loaded from a TOML file or a plain
// document mapping. A RunPlan that failed validation is never returned.
type RunPlan struct {
	Global   GlobalConfig
	Units    []UnitConfig
	FilePath string
}

// FromTOMLFile parses and validates a run plan from a TOML file.
func FromTOMLFile(path string) (*RunPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run plan: %w", err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("TOML parse error: %w", err)
	}

	return FromDocument(raw, path)
}

// FromDocument builds and validates a run plan from a decoded document
// mapping. filePath is used only in diagnostics.
func FromDocument(raw map[string]any, filePath string) (*RunPlan, error) {
	plan := &RunPlan{
		Global:   buildGlobalConfig(asTable(raw["global"])),
		FilePath: filePath,
	}

	for _, entry := range asTableList(raw["unit"]) {
		plan.Units = append(plan.Units, buildUnitConfig(entry))
	}

	if err := plan.validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// Load loads and validates the run plan at path, substituting the built-in
// default plan when no file exists there.
func Load(path string) (*RunPlan, error) {
	if _, err := os.Stat(path); err == nil {
		return FromTOMLFile(path)
	}
	return FromDocument(DefaultDocument(), path)
}

// DefaultDocument returns the built-in run plan document used when no plan
// file exists: an hourly summary unit and a daily unit that also produces
// the podcast.
func DefaultDocument() map[string]any {
	return map[string]any{
		"global": map[string]any{},
		"unit": []map[string]any{
			{
				"name":     "hourly",
				"schedule": "0 * * * *",
				"enabled":  true,
				"mode":     "hourly",
				"actions":  []any{"fetch", "summarize", "publish"},
			},
			{
				"name":     "daily",
				"schedule": "0 6 * * *",
				"enabled":  true,
				"mode":     "daily",
				"actions":  []any{"fetch", "summarize", "publish", "podcast"},
			},
		},
	}
}

func buildGlobalConfig(raw map[string]any) GlobalConfig {
	return GlobalConfig{
		Mode:       asString(raw["mode"]),
		Args:       asStringList(raw["args"]),
		Actions:    asActionList(raw["actions"]),
		Tokens:     asStringMap(raw["tokens"]),
		Secrets:    asStringMap(raw["secrets"]),
		ActionArgs: asActionArgs(raw["action"]),
	}
}

func buildUnitConfig(raw map[string]any) UnitConfig {
	return UnitConfig{
		Name:       asString(raw["name"]),
		Schedule:   asString(raw["schedule"]),
		Mode:       asString(raw["mode"]),
		Enabled:    asBool(raw["enabled"], true),
		Args:       asStringList(raw["args"]),
		Actions:    asActionList(raw["actions"]),
		Tokens:     asStringMap(raw["tokens"]),
		Secrets:    asStringMap(raw["secrets"]),
		ActionArgs: asActionArgs(raw["action"]),
	}
}
