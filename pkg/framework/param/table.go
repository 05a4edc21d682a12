package param

import "fmt"

// Table is the descriptor table of a plugin: the automatable parameters in
// host order plus the non-automated fields. The table itself never changes
// after NewTable returns, so every thread may read it without locking.
type Table struct {
	params     []*Descriptor
	index      map[uint32]int
	fields     []*Field
	fieldIndex map[uint32]int
}

// NewTable validates the descriptors and fields and indexes them by id.
func NewTable(params []*Descriptor, fields ...*Field) (*Table, error) {
	if len(params) == 0 {
		return nil, ErrNoParameters
	}

	t := &Table{
		params:     make([]*Descriptor, 0, len(params)),
		index:      make(map[uint32]int, len(params)),
		fields:     make([]*Field, 0, len(fields)),
		fieldIndex: make(map[uint32]int, len(fields)),
	}

	for _, d := range params {
		if d == nil {
			return nil, fmt.Errorf("param: nil descriptor at index %d", len(t.params))
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := t.index[d.ID]; exists {
			return nil, fmt.Errorf("%w: %d (%q)", ErrDuplicateID, d.ID, d.Name)
		}
		t.index[d.ID] = len(t.params)
		t.params = append(t.params, d)
	}

	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("param: nil field at index %d", len(t.fields))
		}
		if err := f.validate(); err != nil {
			return nil, err
		}
		_, dupParam := t.index[f.ID]
		_, dupField := t.fieldIndex[f.ID]
		if dupParam || dupField {
			return nil, fmt.Errorf("%w: %d (%q)", ErrDuplicateID, f.ID, f.Name)
		}
		t.fieldIndex[f.ID] = len(t.fields)
		t.fields = append(t.fields, f)
	}

	return t, nil
}

// Len returns the number of automatable parameters.
func (t *Table) Len() int {
	return len(t.params)
}

// At returns the descriptor at a host index, or nil.
func (t *Table) At(index int) *Descriptor {
	if index < 0 || index >= len(t.params) {
		return nil
	}
	return t.params[index]
}

// Get returns the descriptor for an id, or nil.
func (t *Table) Get(id uint32) *Descriptor {
	if i, ok := t.index[id]; ok {
		return t.params[i]
	}
	return nil
}

// Index returns the dense index for a parameter id.
func (t *Table) Index(id uint32) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

// All returns the descriptors in host order. The slice must not be modified.
func (t *Table) All() []*Descriptor {
	return t.params
}

// FieldCount returns the number of non-automated fields.
func (t *Table) FieldCount() int {
	return len(t.fields)
}

// FieldAt returns the field at an index, or nil.
func (t *Table) FieldAt(index int) *Field {
	if index < 0 || index >= len(t.fields) {
		return nil
	}
	return t.fields[index]
}

// Field returns the field for an id, or nil.
func (t *Table) Field(id uint32) *Field {
	if i, ok := t.fieldIndex[id]; ok {
		return t.fields[i]
	}
	return nil
}

// FieldIndex returns the dense index for a field id.
func (t *Table) FieldIndex(id uint32) (int, bool) {
	i, ok := t.fieldIndex[id]
	return i, ok
}

// Fields returns the fields in declaration order. The slice must not be modified.
func (t *Table) Fields() []*Field {
	return t.fields
}
