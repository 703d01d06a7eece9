package runplan

// MergedUnit returns a new resolved unit with the plan's global defaults
// merged in. Lists append global entries before unit entries and keep
// duplicates; a unit declaring an action the global list already names runs
// it twice. The receiver and unit are never mutated.
func (p *RunPlan) MergedUnit(unit UnitConfig) UnitConfig {
	mode := unit.Mode
	if mode == "" {
		mode = p.Global.Mode
	}

	return UnitConfig{
		Name:       unit.Name,
		Schedule:   unit.Schedule,
		Mode:       mode,
		Enabled:    unit.Enabled,
		Args:       appendLists(p.Global.Args, unit.Args),
		Actions:    appendLists(p.Global.Actions, unit.Actions),
		Tokens:     overlayMaps(p.Global.Tokens, unit.Tokens),
		Secrets:    overlayMaps(p.Global.Secrets, unit.Secrets),
		ActionArgs: mergeActionArgs(p.Global.ActionArgs, unit.ActionArgs),
	}
}

func appendLists(global, unit []string) []string {
	merged := make([]string, 0, len(global)+len(unit))
	merged = append(merged, global...)
	return append(merged, unit...)
}

func overlayMaps(global, unit map[string]string) map[string]string {
	merged := make(map[string]string, len(global)+len(unit))
	for key, value := range global {
		merged[key] = value
	}
	for key, value := range unit {
		merged[key] = value
	}
	return merged
}

// mergeActionArgs appends unit argument lists after the global ones per
// action token; tokens present in only one layer pass through unchanged.
func mergeActionArgs(global, unit map[string][]string) map[string][]string {
	merged := make(map[string][]string, len(global)+len(unit))
	for token, values := range global {
		merged[token] = append([]string(nil), values...)
	}
	for token, values := range unit {
		merged[token] = append(merged[token], values...)
	}
	return merged
}
