package param

// Origin tags where a parameter edit came from.
type Origin uint8

const (
	// OriginHost marks host automation.
	OriginHost Origin = iota
	// OriginUI marks an edit made in the plugin's own editor.
	OriginUI
	// OriginProgram marks values restored from saved state or presets.
	OriginProgram
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginHost:
		return "Host"
	case OriginUI:
		return "UI"
	case OriginProgram:
		return "Program"
	default:
		return "Unknown"
	}
}

// Snapshot is one parameter edit in transit between threads.
type Snapshot struct {
	ID         uint32
	Normalized float64
	Plain      float64
	Origin     Origin
}
