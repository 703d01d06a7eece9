package runplan

import "strings"

// actionAliases maps deprecated action spellings to their canonical tokens.
var actionAliases = map[string]string{
	"summarise": "summarize",
}

// NormalizeAction canonicalizes an action name: lowercased, trimmed, and
// resolved through the alias table. Unknown tokens pass through unchanged;
// unrecognized actions are rejected by the consumers that run them, not
// here.
func NormalizeAction(action string) string {
	token := strings.ToLower(strings.TrimSpace(action))
	if canonical, ok := actionAliases[token]; ok {
		return canonical
	}
	return token
}
