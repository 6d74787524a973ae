package commsutil

import (
	"fmt"
	"strings"
)

// SubjectSchemaChanged is the global subject schema-published events go to.
const SubjectSchemaChanged = "rpc.schema.changed"

// BuildCallSubject builds the subject an app answers call batches on.
func BuildCallSubject(app string) string {
	return fmt.Sprintf("rpc.%s.call", SanitizeToken(app))
}

// BuildSchemaSubject builds the subject an app answers schema requests on.
func BuildSchemaSubject(app string) string {
	return fmt.Sprintf("rpc.%s.schema", SanitizeToken(app))
}

// BuildSchemaChangedSubject builds the per-app schema event subject.
func BuildSchemaChangedSubject(app string) string {
	return fmt.Sprintf("%s.%s", SubjectSchemaChanged, SanitizeToken(app))
}

// SanitizeToken turns s into a single subject token. Separators and
// wildcards become underscores.
func SanitizeToken(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}
