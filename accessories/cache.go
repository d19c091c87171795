package accessories

import (
	"github.com/google/uuid"

	"github.com/jrsteele09/smartrent-bridge/devices"
)

// CachedAccessory is the persisted form of a published accessory.
type CachedAccessory struct {
	ID     uuid.UUID      `json:"id"`
	Name   string         `json:"name"`
	Kind   Kind           `json:"kind"`
	Device devices.Device `json:"device"`
}

// Cache persists the published accessories between runs so that restarts
// restore them instead of adding them again. Load returns an empty list when
// nothing was cached.
type Cache interface {
	Load() ([]CachedAccessory, error)
	Save(accessories []CachedAccessory) error
}
