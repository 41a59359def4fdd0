package logsim

// An ID is the interned form of a name. IDs are stable for the lifetime of
// the Table that issued them, so identity checks on devices and ports are
// integer comparisons.
type ID int

// NoID marks the absence of a port or name, e.g. the implicit output of a
// single-output device.
const NoID ID = -1

// A Table interns names to IDs. Every stage of a parse session shares one
// table; a new session gets a fresh one.
type Table struct {
	ids   map[string]ID
	names []string
}

// NewTable returns an empty symbol table.
func NewTable() *Table {
	return &Table{ids: make(map[string]ID)}
}

// Lookup returns the ID for name, interning it first if needed.
func (t *Table) Lookup(name string) ID {
	if id, ok := t.ids[name]; ok {
		return id
	}
	id := ID(len(t.names))
	t.names = append(t.names, name)
	t.ids[name] = id
	return id
}

// Query returns the ID for name, or NoID if it has never been interned.
func (t *Table) Query(name string) ID {
	if id, ok := t.ids[name]; ok {
		return id
	}
	return NoID
}

// Name returns the name string for id, or "" if id was not issued by t.
func (t *Table) Name(id ID) string {
	if id < 0 || int(id) >= len(t.names) {
		return ""
	}
	return t.names[id]
}

// Len returns the number of interned names.
func (t *Table) Len() int { return len(t.names) }
