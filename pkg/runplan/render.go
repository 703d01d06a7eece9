package runplan

import (
	"fmt"
	"strings"

	"github.com/alessio/shellescape"
)

const runnerPath = "/usr/local/bin/minerva-run"

// RenderCron renders crontab text for the validated run plan at planPath.
// With systemCron the lines carry the mandatory user field of a system
// crontab; user crontabs omit it.
func RenderCron(planPath string, systemCron bool) (string, error) {
	plan, err := Load(planPath)
	if err != nil {
		return "", err
	}

	lines := []string{
		"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin",
		"SHELL=/bin/bash",
		"",
		"# Redirect job output to the container log stream.",
	}

	enabled := 0
	for _, unit := range plan.Units {
		if !unit.Enabled {
			continue
		}

		command := fmt.Sprintf("%s unit %s --plan %s >> /proc/1/fd/1 2>&1",
			runnerPath, shellescape.Quote(unit.Name), shellescape.Quote(planPath))
		lines = append(lines, fmt.Sprintf("# unit: %s", unit.Name))
		if systemCron {
			lines = append(lines, fmt.Sprintf("%s root %s", unit.Schedule, command))
		} else {
			lines = append(lines, fmt.Sprintf("%s %s", unit.Schedule, command))
		}
		enabled++
	}

	if enabled == 0 {
		lines = append(lines, "# No enabled units found in run plan.")
	}

	return strings.Join(lines, "\n"), nil
}
