package runplan

import (
	"regexp"
	"strings"
)

// cronField accepts *, a bare integer, a range N-M, a step */N, or a
// comma-separated list of two or more integers. Semantic ranges (months
// 1-12 and so on) are deliberately not checked.
var cronField = regexp.MustCompile(`^(\*|\d+|\d+-\d+|\*/\d+|\d+(,\d+)+)$`)

// IsCronExpr reports whether expr has the lexical shape of a 5-field cron
// expression (minute hour day month weekday).
func IsCronExpr(expr string) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	for _, field := range fields {
		if !cronField.MatchString(field) {
			return false
		}
	}
	return true
}
