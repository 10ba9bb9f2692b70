package fixtures

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFixture is returned when a fixture name has no registered node.
var ErrUnknownFixture = errors.New("unknown fixture")

// ConstraintError reports an entity that cannot be created because a
// declared constraint cannot be satisfied. Entity and Field name the exact
// declaration at fault so the failure reads as a data problem, not a
// storage problem.
type ConstraintError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("fixtures: cannot satisfy constraint on %s.%s: %s", e.Entity, e.Field, e.Reason)
}

// CycleError reports a circular fixture dependency. Path holds the full
// cycle, ending with the name that closes it.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "fixtures: circular dependency: " + strings.Join(e.Path, " -> ")
}

// uniqueViolation translates a storage-level unique constraint failure into
// a ConstraintError naming the entity and field. SQLite reports the failing
// column as "UNIQUE constraint failed: table.column"; the driver may append
// its numeric error code after the column name.
func uniqueViolation(entity string, err error) error {
	msg := err.Error()
	const marker = "UNIQUE constraint failed: "
	field := ""
	if i := strings.Index(msg, marker); i >= 0 {
		qualified := strings.TrimSpace(msg[i+len(marker):])
		if j := strings.IndexByte(qualified, '.'); j >= 0 {
			field = qualified[j+1:]
			if k := strings.IndexAny(field, " (,;"); k >= 0 {
				field = field[:k]
			}
		}
	}
	return &ConstraintError{
		Entity: entity,
		Field:  field,
		Reason: "value already exists and the column is unique",
	}
}
