package queryHelper

import "strings"

// LikeEscapeChar is the escape character used by ContainsPattern.
// Use it in an ESCAPE clause: "LOWER(col) LIKE ? ESCAPE '\'".
const LikeEscapeChar = `\`

var likeEscaper = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`_`, `\_`,
)

// EscapeLike escapes LIKE wildcards so the term matches literally
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// ContainsPattern returns a lower-cased, escaped "%term%" pattern for a
// case-insensitive literal substring match against LOWER(column)
func ContainsPattern(term string) string {
	return "%" + EscapeLike(strings.ToLower(strings.TrimSpace(term))) + "%"
}

// ContainsClause builds "(LOWER(a) LIKE ? ESCAPE '\' OR LOWER(b) LIKE ? ...)"
// together with the matching arguments for every column
func ContainsClause(term string, columns ...string) (string, []interface{}) {
	pattern := ContainsPattern(term)
	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		parts = append(parts, "LOWER("+column+") LIKE ? ESCAPE '"+LikeEscapeChar+"'")
		args = append(args, pattern)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
