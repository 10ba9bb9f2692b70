package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// ColumnType enumerates the column types the provisioner can translate to
// storage. Anything else fails provisioning.
type ColumnType string

const (
	TypeInteger   ColumnType = "integer"
	TypeReal      ColumnType = "real"
	TypeText      ColumnType = "text"
	TypeBoolean   ColumnType = "boolean"
	TypeTimestamp ColumnType = "timestamp"
	TypeJSON      ColumnType = "json"
)

// Now marks a timestamp column as defaulting to the insertion time.
var Now = nowDefault{}

type nowDefault struct{}

// ForeignKey declares a reference to another table's column.
type ForeignKey struct {
	Table    string
	Column   string
	OnDelete string // "", "CASCADE", "SET NULL"
}

// Column declares one column of an entity table.
type Column struct {
	Name       string
	Type       ColumnType
	PrimaryKey bool
	NotNull    bool
	Unique     bool
	Default    any // nil means no default; Now means CURRENT_TIMESTAMP
	References *ForeignKey
}

// Required reports whether an insert must supply a value for this column:
// NOT NULL, no declared default, and not the auto-assigned primary key.
func (c Column) Required() bool {
	return c.NotNull && c.Default == nil && !c.PrimaryKey
}

// Table declares one entity table.
type Table struct {
	Name    string
	Columns []Column
}

// Column returns the declared column with the given name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ProvisionError reports a declaration that cannot be translated to storage.
// Table is always set; Column is empty for table-level failures.
type ProvisionError struct {
	Table  string
	Column string
	Reason string
}

func (e *ProvisionError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("schema: table %q column %q: %s", e.Table, e.Column, e.Reason)
	}
	return fmt.Sprintf("schema: table %q: %s", e.Table, e.Reason)
}

// Registry holds the declared entity tables. The application owns the
// declarations; the harness only reads them.
type Registry struct {
	mu     sync.RWMutex
	tables []Table
	index  map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Declare adds a table to the registry. Re-declaring a table name is an error;
// drift is corrected by changing the declaration, not by adding a second one.
func (r *Registry) Declare(t Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.Name == "" {
		return &ProvisionError{Table: t.Name, Reason: "table name is empty"}
	}
	if _, exists := r.index[t.Name]; exists {
		return &ProvisionError{Table: t.Name, Reason: "table declared twice"}
	}
	r.index[t.Name] = len(r.tables)
	r.tables = append(r.tables, t)
	return nil
}

// MustDeclare is Declare for package-level registry construction.
func (r *Registry) MustDeclare(t Table) {
	if err := r.Declare(t); err != nil {
		panic(err)
	}
}

// Tables returns a copy of the declared tables in declaration order.
func (r *Registry) Tables() []Table {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Table, len(r.tables))
	copy(out, r.tables)
	return out
}

// Snapshot is the complete set of table definitions translated from a
// registry at one point in time, plus the rendered DDL. Snapshots are
// immutable; a new one is generated by every Provision call.
type Snapshot struct {
	tables    []Table
	index     map[string]int
	ddl       []string
	generated time.Time
}

// Provision validates the registry's declarations and renders a fresh
// snapshot. It never reuses a previous result: every call re-reads the
// declarations so that a newly added column is always reflected.
//
// If any declaration cannot be translated, Provision returns a
// *ProvisionError naming the table and column; no partial snapshot is
// produced.
func Provision(reg *Registry) (*Snapshot, error) {
	declared := reg.Tables()
	if len(declared) == 0 {
		return nil, &ProvisionError{Table: "", Reason: "registry has no table declarations"}
	}

	byName := make(map[string]Table, len(declared))
	for _, t := range declared {
		byName[t.Name] = t
	}

	for _, t := range declared {
		if err := validateTable(t, byName); err != nil {
			return nil, err
		}
	}

	ordered, err := creationOrder(declared, byName)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		tables:    ordered,
		index:     make(map[string]int, len(ordered)),
		generated: time.Now(),
	}
	for i, t := range ordered {
		snap.index[t.Name] = i
		stmt, err := renderCreateTable(t)
		if err != nil {
			return nil, err
		}
		snap.ddl = append(snap.ddl, stmt)
	}
	return snap, nil
}

// Tables returns the snapshot's tables in creation order (referenced tables
// before referencing ones).
func (s *Snapshot) Tables() []Table {
	out := make([]Table, len(s.tables))
	copy(out, s.tables)
	return out
}

// Table looks up a table definition by name.
func (s *Snapshot) Table(name string) (Table, bool) {
	i, ok := s.index[name]
	if !ok {
		return Table{}, false
	}
	return s.tables[i], true
}

// DDL returns the CREATE TABLE statements in creation order.
func (s *Snapshot) DDL() []string {
	out := make([]string, len(s.ddl))
	copy(out, s.ddl)
	return out
}

// TruncateOrder returns table names in an order safe for deleting all rows:
// referencing tables before the tables they reference.
func (s *Snapshot) TruncateOrder() []string {
	names := make([]string, len(s.tables))
	for i, t := range s.tables {
		names[len(s.tables)-1-i] = t.Name
	}
	return names
}

// GeneratedAt returns when this snapshot was provisioned.
func (s *Snapshot) GeneratedAt() time.Time {
	return s.generated
}

func validateTable(t Table, byName map[string]Table) error {
	if len(t.Columns) == 0 {
		return &ProvisionError{Table: t.Name, Reason: "table has no columns"}
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			return &ProvisionError{Table: t.Name, Reason: "column with empty name"}
		}
		if seen[c.Name] {
			return &ProvisionError{Table: t.Name, Column: c.Name, Reason: "column declared twice"}
		}
		seen[c.Name] = true

		if _, ok := sqlType(c.Type); !ok {
			return &ProvisionError{Table: t.Name, Column: c.Name, Reason: fmt.Sprintf("unsupported column type %q", c.Type)}
		}
		if c.Default != nil {
			if _, err := renderDefault(c.Default); err != nil {
				return &ProvisionError{Table: t.Name, Column: c.Name, Reason: err.Error()}
			}
		}
		if ref := c.References; ref != nil {
			target, ok := byName[ref.Table]
			if !ok {
				return &ProvisionError{Table: t.Name, Column: c.Name, Reason: fmt.Sprintf("references unknown table %q", ref.Table)}
			}
			if _, ok := target.Column(ref.Column); !ok {
				return &ProvisionError{Table: t.Name, Column: c.Name, Reason: fmt.Sprintf("references unknown column %q.%q", ref.Table, ref.Column)}
			}
		}
	}
	return nil
}

// creationOrder topologically sorts tables so every table appears after the
// tables it references. A reference cycle cannot be created in order and is
// reported rather than silently broken.
func creationOrder(declared []Table, byName map[string]Table) ([]Table, error) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(declared))
	ordered := make([]Table, 0, len(declared))

	var visit func(t Table) error
	visit = func(t Table) error {
		switch state[t.Name] {
		case done:
			return nil
		case visiting:
			return &ProvisionError{Table: t.Name, Reason: "circular foreign-key reference"}
		}
		state[t.Name] = visiting
		refs := referencedTables(t)
		for _, name := range refs {
			if name == t.Name {
				continue // self-reference is fine for creation order
			}
			if err := visit(byName[name]); err != nil {
				return err
			}
		}
		state[t.Name] = done
		ordered = append(ordered, t)
		return nil
	}

	for _, t := range declared {
		if err := visit(t); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

func referencedTables(t Table) []string {
	set := make(map[string]bool)
	for _, c := range t.Columns {
		if c.References != nil {
			set[c.References.Table] = true
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sqlType(t ColumnType) (string, bool) {
	switch t {
	case TypeInteger:
		return "INTEGER", true
	case TypeReal:
		return "REAL", true
	case TypeText:
		return "TEXT", true
	case TypeBoolean:
		return "BOOLEAN", true
	case TypeTimestamp:
		return "TIMESTAMP", true
	case TypeJSON:
		return "TEXT", true
	default:
		return "", false
	}
}

func renderDefault(v any) (string, error) {
	switch d := v.(type) {
	case nowDefault:
		return "CURRENT_TIMESTAMP", nil
	case bool:
		if d {
			return "1", nil
		}
		return "0", nil
	case int:
		return fmt.Sprintf("%d", d), nil
	case int64:
		return fmt.Sprintf("%d", d), nil
	case float64:
		return fmt.Sprintf("%g", d), nil
	case string:
		return "'" + strings.ReplaceAll(d, "'", "''") + "'", nil
	default:
		return "", fmt.Errorf("unsupported default value of type %T", v)
	}
}

func renderCreateTable(t Table) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", t.Name)

	for i, c := range t.Columns {
		typ, ok := sqlType(c.Type)
		if !ok {
			return "", &ProvisionError{Table: t.Name, Column: c.Name, Reason: fmt.Sprintf("unsupported column type %q", c.Type)}
		}
		fmt.Fprintf(&b, "\t%s %s", c.Name, typ)
		if c.PrimaryKey {
			b.WriteString(" PRIMARY KEY AUTOINCREMENT")
		}
		if c.NotNull && !c.PrimaryKey {
			b.WriteString(" NOT NULL")
		}
		if c.Unique {
			b.WriteString(" UNIQUE")
		}
		if c.Default != nil {
			def, err := renderDefault(c.Default)
			if err != nil {
				return "", &ProvisionError{Table: t.Name, Column: c.Name, Reason: err.Error()}
			}
			b.WriteString(" DEFAULT " + def)
		}
		if ref := c.References; ref != nil {
			fmt.Fprintf(&b, " REFERENCES %s(%s)", ref.Table, ref.Column)
			if ref.OnDelete != "" {
				b.WriteString(" ON DELETE " + ref.OnDelete)
			}
		}
		if i < len(t.Columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String(), nil
}
