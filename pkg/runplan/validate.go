package runplan

import (
	"fmt"
	"strings"
)

// Issue is a single validation problem scoped to one key of one unit.
type Issue struct {
	FilePath string
	UnitName string
	Key      string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: unit=%q key=%q: %s", i.FilePath, i.UnitName, i.Key, i.Message)
}

// ValidationError aggregates every issue found in one validation pass so a
// broken plan is reported completely rather than one defect at a time.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = issue.String()
	}
	return strings.Join(lines, "\n")
}

// validate checks plan invariants: unique unit names, well-formed cron
// schedules, and a non-empty resolved action list per unit.
func (p *RunPlan) validate() error {
	var issues []Issue
	seen := map[string]bool{}

	for i, unit := range p.Units {
		name := strings.TrimSpace(unit.Name)
		if name == "" {
			name = fmt.Sprintf("<unit[%d]>", i)
			issues = append(issues, Issue{
				FilePath: p.FilePath,
				UnitName: name,
				Key:      "name",
				Message:  "unit name must not be empty",
			})
		}

		if seen[name] {
			issues = append(issues, Issue{
				FilePath: p.FilePath,
				UnitName: name,
				Key:      "name",
				Message:  "duplicate unit name",
			})
		}
		seen[name] = true

		if !IsCronExpr(unit.Schedule) {
			issues = append(issues, Issue{
				FilePath: p.FilePath,
				UnitName: name,
				Key:      "schedule",
				Message:  "invalid cron expression; expected 5 fields (minute hour day month weekday)",
			})
		}

		if len(p.MergedUnit(unit).Actions) == 0 {
			issues = append(issues, Issue{
				FilePath: p.FilePath,
				UnitName: name,
				Key:      "actions",
				Message:  "must include at least one action",
			})
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
