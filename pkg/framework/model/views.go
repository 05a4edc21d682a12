package model

import "github.com/justyntemme/paramsync/pkg/framework/param"

// Views holds the per-sample values of one processing block: one slice per
// parameter and one per field, each exactly Frames() long. The slices point
// into storage owned by the model and are overwritten by the next block.
type Views struct {
	table  *param.Table
	frames int
	params [][]float64
	fields [][]float64
}

// Frames returns the block length.
func (v *Views) Frames() int {
	return v.frames
}

// Param returns the view for a parameter id, or nil for unknown ids.
func (v *Views) Param(id uint32) []float64 {
	if i, ok := v.table.Index(id); ok {
		return v.params[i]
	}
	return nil
}

// ParamAt returns the view for a parameter index.
func (v *Views) ParamAt(index int) []float64 {
	if index < 0 || index >= len(v.params) {
		return nil
	}
	return v.params[index]
}

// Field returns the view for a field id, or nil for unknown ids.
func (v *Views) Field(id uint32) []float64 {
	if i, ok := v.table.FieldIndex(id); ok {
		return v.fields[i]
	}
	return nil
}
