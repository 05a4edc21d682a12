package plugin

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidInfo is returned for incomplete plugin metadata.
var ErrInvalidInfo = errors.New("plugin: invalid info")

// Info contains plugin metadata
type Info struct {
	ID       string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Plugin category (e.g., "Fx", "Instrument")
}

// uidNamespace seeds UID so plugin ids never collide with other name-based
// UUIDs derived from the same strings.
var uidNamespace = uuid.UUID{
	0x70, 0x61, 0x72, 0x61, 0x6d, 0x73, 0x79, 0x6e,
	0x63, 0x2e, 0x70, 0x6c, 0x75, 0x67, 0x69, 0x6e,
}

// UID derives a stable class id from ID as a version 5 UUID.
func (i Info) UID() uuid.UUID {
	return uuid.NewSHA1(uidNamespace, []byte(i.ID))
}

// Validate checks the fields a host binding needs.
func (i Info) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidInfo)
	}
	if i.Name == "" {
		return fmt.Errorf("%w: empty name for %s", ErrInvalidInfo, i.ID)
	}
	return nil
}
