package runplan

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alessio/shellescape"
)

// pathsEnvMap pins well-known path keys to their exported variable names.
var pathsEnvMap = map[string]string{
	"data_dir":                           "MINERVA_DATA_DIR",
	"state_dir":                          "MINERVA_STATE_DIR",
	"unit_state_dir":                     "MINERVA_UNIT_STATE_DIR",
	"prompts_dir":                        "MINERVA_PROMPTS_DIR",
	"run_cache_file":                     "MINERVA_RUN_CACHE_FILE",
	"todo_dump_file":                     "MINERVA_TODO_DUMP_FILE",
	"summary_file":                       "MINERVA_SUMMARY_FILE",
	"speech_file":                        "MINERVA_SPEECH_FILE",
	"podcast_text_file":                  "MINERVA_PODCAST_TEXT_FILE",
	"podcast_audio_file":                 "MINERVA_PODCAST_AUDIO_FILE",
	"podcast_topic_file":                 "MINERVA_PODCAST_TOPIC_FILE",
	"podcast_prompt_template_file":       "MINERVA_PODCAST_PROMPT_TEMPLATE_FILE",
	"daily_podcast_prompt_template_file": "MINERVA_DAILY_PODCAST_PROMPT_TEMPLATE_FILE",
	"config_path":                        "MINERVA_CONFIG_PATH",
}

// optionsEnvMap pins well-known option keys to their exported variable names.
var optionsEnvMap = map[string]string{
	"fetch_args":            "MINERVA_FETCH_ARGS",
	"summary_args":          "MINERVA_SUMMARY_ARGS",
	"publish_args":          "MINERVA_PUBLISH_ARGS",
	"shared_args":           "MINERVA_SHARED_ARGS",
	"hourly_fetch_args":     "MINERVA_HOURLY_FETCH_ARGS",
	"hourly_summary_args":   "MINERVA_HOURLY_SUMMARY_ARGS",
	"hourly_publish_args":   "MINERVA_HOURLY_PUBLISH_ARGS",
	"daily_fetch_args":      "MINERVA_DAILY_FETCH_ARGS",
	"daily_summary_args":    "MINERVA_DAILY_SUMMARY_ARGS",
	"daily_publish_args":    "MINERVA_DAILY_PUBLISH_ARGS",
	"podcast_args":          "MINERVA_PODCAST_ARGS",
	"daily_podcast_args":    "MINERVA_DAILY_PODCAST_ARGS",
	"podcast_telegram_args": "MINERVA_PODCAST_TELEGRAM_ARGS",
	"podcast_language":      "MINERVA_PODCAST_LANGUAGE",
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// UnitNotFoundError reports a load-unit request for a unit name absent from
// an otherwise valid plan.
type UnitNotFoundError struct {
	Unit string
	Plan string
}

func (e *UnitNotFoundError) Error() string {
	return fmt.Sprintf("run unit %q not found in plan %q", e.Unit, e.Plan)
}

// DeriveUnitExports resolves one unit of the plan at planFile into an
// ordered list of shell assignment lines. Beyond the typed plan model it
// re-reads the raw document for the free-form env/paths/options/providers/
// tokens/action namespaces, merging each with unit entries overriding
// global ones. Every line uses the apply_if_unset form, so callers can
// pre-seed any variable from their own environment; the list always ends
// with the resolved action list, mode and unit name.
func DeriveUnitExports(planFile, unitName string) ([]string, error) {
	plan, err := Load(planFile)
	if err != nil {
		return nil, err
	}

	var selected *UnitConfig
	for i := range plan.Units {
		if plan.Units[i].Name == unitName {
			selected = &plan.Units[i]
			break
		}
	}
	if selected == nil {
		return nil, &UnitNotFoundError{Unit: unitName, Plan: planFile}
	}

	raw, err := loadRawDocument(planFile)
	if err != nil {
		return nil, err
	}
	globalRaw := asTable(raw["global"])
	unitRaw := selectedRawUnit(raw, unitName)

	merged := plan.MergedUnit(*selected)
	env := overlayTables(asTable(globalRaw["env"]), asTable(unitRaw["env"]))
	paths := overlayTables(asTable(globalRaw["paths"]), asTable(unitRaw["paths"]))
	options := overlayTables(asTable(globalRaw["options"]), asTable(unitRaw["options"]))
	providers := overlayTables(asTable(globalRaw["providers"]), asTable(unitRaw["providers"]))
	tokens := overlayTables(asTable(globalRaw["tokens"]), asTable(unitRaw["tokens"]))
	actionArgs := mergeRawActionTables(asTable(globalRaw["action"]), asTable(unitRaw["action"]))

	// config_path historically lived under [options]; it names a path.
	if value, ok := options["config_path"]; ok {
		paths["config_path"] = value
		delete(options, "config_path")
	}

	mode := merged.Mode
	if mode == "" {
		mode = merged.Name
	}
	actions := merged.Actions
	if len(actions) == 0 {
		if mode == "daily" {
			actions = []string{"fetch", "summarize", "publish", "podcast"}
		} else {
			actions = []string{"fetch", "summarize", "publish"}
		}
	}

	var lines []string
	for _, key := range sortedKeys(env) {
		name := key
		if !isUpperKey(key) {
			name = SanitizeKey(key)
		}
		lines = append(lines, emit(name, asString(env[key])))
	}

	for _, key := range sortedKeys(paths) {
		name, ok := pathsEnvMap[key]
		if !ok {
			name = "MINERVA_" + SanitizeKey(key)
		}
		lines = append(lines, emit(name, asString(paths[key])))
	}

	for _, key := range sortedKeys(options) {
		name, ok := optionsEnvMap[key]
		if !ok {
			if strings.HasPrefix(key, "MINERVA_") {
				name = key
			} else {
				name = "MINERVA_" + SanitizeKey(key)
			}
		}
		lines = append(lines, emit(name, asString(options[key])))
	}

	for _, key := range sortedKeys(providers) {
		lines = append(lines, emit("MINERVA_PROVIDER_"+SanitizeKey(key), asString(providers[key])))
	}

	for _, key := range sortedKeys(tokens) {
		lines = append(lines, emit("MINERVA_TOKEN_"+SanitizeKey(key), asString(tokens[key])))
	}

	actionTokens := make([]string, 0, len(actionArgs))
	for token := range actionArgs {
		actionTokens = append(actionTokens, token)
	}
	sort.Strings(actionTokens)
	for _, token := range actionTokens {
		if args := actionArgs[token]; len(args) > 0 {
			lines = append(lines, emit("MINERVA_ACTION_"+SanitizeKey(token)+"_ARGS", strings.Join(args, " ")))
		}
	}

	lines = append(lines,
		emit("MINERVA_SELECTED_ACTIONS", strings.Join(actions, " ")),
		emit("MINERVA_SELECTED_MODE", mode),
		emit("MINERVA_SELECTED_UNIT", unitName),
	)
	return lines, nil
}

// SanitizeKey derives an environment-variable fragment from an arbitrary
// key: every run of non-alphanumeric characters collapses to a single
// underscore and the result is upper-cased.
func SanitizeKey(key string) string {
	return strings.ToUpper(strings.Trim(nonAlnum.ReplaceAllString(key, "_"), "_"))
}

func emit(name, value string) string {
	return fmt.Sprintf("apply_if_unset %s %s", shellescape.Quote(name), shellescape.Quote(value))
}

func loadRawDocument(planFile string) (map[string]any, error) {
	if _, err := os.Stat(planFile); err != nil {
		return DefaultDocument(), nil
	}
	data, err := os.ReadFile(planFile)
	if err != nil {
		return nil, fmt.Errorf("reading run plan: %w", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("TOML parse error: %w", err)
	}
	return raw, nil
}

func selectedRawUnit(raw map[string]any, unitName string) map[string]any {
	for _, entry := range asTableList(raw["unit"]) {
		if asString(entry["name"]) == unitName {
			return entry
		}
	}
	return map[string]any{}
}

func overlayTables(global, unit map[string]any) map[string]any {
	merged := make(map[string]any, len(global)+len(unit))
	for key, value := range global {
		merged[key] = value
	}
	for key, value := range unit {
		merged[key] = value
	}
	return merged
}

// mergeRawActionTables resolves the free-form per-action tables into
// argument lists, appending unit args after global args per action token.
func mergeRawActionTables(global, unit map[string]any) map[string][]string {
	merged := map[string][]string{}
	for key, value := range global {
		token := NormalizeAction(key)
		if token == "" {
			continue
		}
		merged[token] = asStringList(asTable(value)["args"])
	}
	for key, value := range unit {
		token := NormalizeAction(key)
		if token == "" {
			continue
		}
		merged[token] = append(merged[token], asStringList(asTable(value)["args"])...)
	}
	return merged
}

func sortedKeys(table map[string]any) []string {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func isUpperKey(key string) bool {
	hasLetter := false
	for _, r := range key {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}
