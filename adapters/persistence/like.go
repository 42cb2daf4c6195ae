package persistence

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern. Postgres uses
// backslash as the default escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
