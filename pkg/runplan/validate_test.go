package runplan

import (
	"errors"
	"strings"
	"testing"
)

func validationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	return verr
}

func TestValidateDuplicateUnitNames(t *testing.T) {
	_, err := FromDocument(map[string]any{
		"unit": []any{
			map[string]any{"name": "dup", "schedule": "0 * * * *", "actions": []any{"a"}},
			map[string]any{"name": "dup", "schedule": "5 * * * *", "actions": []any{"b"}},
		},
	}, "/tmp/plan.toml")

	verr := validationError(t, err)
	if len(verr.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(verr.Issues), verr)
	}

	message := verr.Error()
	for _, want := range []string{"/tmp/plan.toml", `unit="dup"`, `key="name"`, "duplicate unit name"} {
		if !strings.Contains(message, want) {
			t.Errorf("error %q should contain %q", message, want)
		}
	}
}

func TestValidateAggregatesAllIssues(t *testing.T) {
	_, err := FromDocument(map[string]any{
		"unit": []any{
			map[string]any{"name": "broken", "schedule": "* * *", "actions": []any{}},
		},
	}, "/tmp/plan.toml")

	verr := validationError(t, err)
	message := verr.Error()
	if !strings.Contains(message, `key="schedule"`) {
		t.Errorf("error should report the schedule issue: %q", message)
	}
	if !strings.Contains(message, `key="actions"`) {
		t.Errorf("error should report the actions issue: %q", message)
	}
}

func TestValidateBlankNameUsesPlaceholder(t *testing.T) {
	_, err := FromDocument(map[string]any{
		"unit": []any{
			map[string]any{"name": "  ", "schedule": "not a cron", "actions": []any{}},
		},
	}, "plan.toml")

	verr := validationError(t, err)
	if len(verr.Issues) != 3 {
		t.Fatalf("expected name, schedule and actions issues, got %d: %v", len(verr.Issues), verr)
	}
	for _, issue := range verr.Issues {
		if issue.UnitName != "<unit[0]>" {
			t.Errorf("issue unit name = %q, want %q", issue.UnitName, "<unit[0]>")
		}
	}
	if verr.Issues[0].Key != "name" {
		t.Errorf("first issue key = %q, want %q", verr.Issues[0].Key, "name")
	}
}

func TestValidateDuplicateAndEmptyActionsReportedTogether(t *testing.T) {
	_, err := FromDocument(map[string]any{
		"unit": []any{
			map[string]any{"name": "dup", "schedule": "0 * * * *", "actions": []any{"fetch"}},
			map[string]any{"name": "dup", "schedule": "0 * * * *"},
		},
	}, "plan.toml")

	verr := validationError(t, err)
	if len(verr.Issues) != 2 {
		t.Fatalf("expected duplicate-name and empty-actions issues, got %d: %v", len(verr.Issues), verr)
	}
	if verr.Issues[0].Key != "name" || verr.Issues[1].Key != "actions" {
		t.Errorf("issue keys = %q, %q", verr.Issues[0].Key, verr.Issues[1].Key)
	}
}

func TestValidGlobalActionsSatisfyUnitWithoutActions(t *testing.T) {
	plan, err := FromDocument(map[string]any{
		"global": map[string]any{"actions": []any{"fetch"}},
		"unit": []any{
			map[string]any{"name": "u", "schedule": "0 * * * *"},
		},
	}, "plan.toml")
	if err != nil {
		t.Fatalf("plan with inherited actions should validate: %v", err)
	}
	if got := plan.MergedUnit(plan.Units[0]).Actions; len(got) != 1 || got[0] != "fetch" {
		t.Errorf("resolved actions = %v, want [fetch]", got)
	}
}
