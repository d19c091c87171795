package accessories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/smartrent-bridge/devices"
	"github.com/jrsteele09/smartrent-bridge/internal/errors"
)

// Reconciliation reports the accessory names affected by a discovery pass.
type Reconciliation struct {
	Added    []string `json:"added"`
	Restored []string `json:"restored"`
	Removed  []string `json:"removed"`
	Skipped  []string `json:"skipped"`
}

// Registry holds the published accessories.
type Registry struct {
	api      devices.API
	cache    Cache
	unitName string
	logger   zerolog.Logger

	mu          sync.RWMutex
	accessories map[uuid.UUID]*Accessory
}

type RegistryOption func(*Registry)

// WithCache persists the accessory set after every reconciliation.
func WithCache(cache Cache) RegistryOption {
	return func(r *Registry) {
		r.cache = cache
	}
}

// WithUnitName selects the unit to discover devices in. The first unit on the
// account is used when empty.
func WithUnitName(unitName string) RegistryOption {
	return func(r *Registry) {
		r.unitName = unitName
	}
}

func NewRegistry(api devices.API, logger zerolog.Logger, options ...RegistryOption) (*Registry, error) {
	if api == nil {
		return nil, errors.New("[NewRegistry] device API is required")
	}
	r := &Registry{
		api:         api,
		logger:      logger.With().Str("component", "accessories").Logger(),
		accessories: make(map[uuid.UUID]*Accessory),
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// Restore loads cached accessories. They are published immediately and
// updated or removed by the next Reconcile.
func (r *Registry) Restore() error {
	if r.cache == nil {
		return nil
	}
	cached, err := r.cache.Load()
	if err != nil {
		return errors.Wrapf(err, "load accessory cache")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range cached {
		r.logger.Info().Str("name", c.Name).Msg("Loading accessory from cache")
		r.accessories[c.ID] = &Accessory{
			ID:      c.ID,
			Name:    c.Name,
			Kind:    c.Kind,
			Serial:  c.Device.Serial(),
			Device:  c.Device,
			handler: newHandler(r.api, c.Kind, c.Device),
		}
	}
	return nil
}

// Reconcile discovers devices and brings the accessory set in line with them:
// new devices are added, known ones restored with fresh device data, and
// accessories whose device disappeared are removed.
func (r *Registry) Reconcile(ctx context.Context) (Reconciliation, error) {
	found, err := r.api.DiscoverDevices(ctx, r.unitName)
	if err != nil {
		return Reconciliation{}, errors.Wrapf(err, "discover devices")
	}

	var result Reconciliation
	seen := make(map[uuid.UUID]bool, len(found))

	r.mu.Lock()
	for _, d := range found {
		id := AccessoryID(d.ID)
		kind, ok := KindFor(d)
		if !ok {
			r.logger.Error().Str("type", string(d.Type)).Str("name", d.Name).Msg("Unknown device type")
			result.Skipped = append(result.Skipped, d.Name)
			continue
		}
		seen[id] = true

		if existing, ok := r.accessories[id]; ok {
			r.logger.Info().Str("name", existing.Name).Msg("Restoring existing accessory from cache")
			existing.Device = d
			existing.Kind = kind
			existing.Serial = d.Serial()
			existing.handler = newHandler(r.api, kind, d)
			result.Restored = append(result.Restored, existing.Name)
			continue
		}

		r.logger.Info().Str("name", d.Name).Str("kind", string(kind)).Msg("Adding new accessory")
		r.accessories[id] = &Accessory{
			ID:      id,
			Name:    d.Name,
			Kind:    kind,
			Serial:  d.Serial(),
			Device:  d,
			handler: newHandler(r.api, kind, d),
		}
		result.Added = append(result.Added, d.Name)
	}

	for id, a := range r.accessories {
		if !seen[id] {
			r.logger.Info().Str("name", a.Name).Msg("Removing existing accessory from cache")
			delete(r.accessories, id)
			result.Removed = append(result.Removed, a.Name)
		}
	}
	snapshot := r.cachedLocked()
	r.mu.Unlock()

	if r.cache != nil {
		if err := r.cache.Save(snapshot); err != nil {
			r.logger.Error().Err(err).Msg("Failed to save accessory cache")
			return result, errors.Wrapf(err, "save accessory cache")
		}
	}
	return result, nil
}

// List returns the published accessories ordered by name.
func (r *Registry) List() []Accessory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Accessory, 0, len(r.accessories))
	for _, a := range r.accessories {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Get returns the accessory with the given ID.
func (r *Registry) Get(id uuid.UUID) (Accessory, error) {
	a, err := r.lookup(id)
	if err != nil {
		return Accessory{}, err
	}
	return *a, nil
}

// GetValue reads a characteristic. Current-state characteristics are read
// from the device.
func (r *Registry) GetValue(ctx context.Context, id uuid.UUID, characteristic string) (int, error) {
	a, err := r.lookup(id)
	if err != nil {
		return 0, err
	}
	r.logger.Debug().Str("name", a.Name).Str("characteristic", characteristic).Msg("Triggered GET")
	return a.handler.get(ctx, characteristic)
}

// SetValue writes a characteristic to the device.
func (r *Registry) SetValue(ctx context.Context, id uuid.UUID, characteristic string, value int) error {
	a, err := r.lookup(id)
	if err != nil {
		return err
	}
	r.logger.Debug().Str("name", a.Name).Str("characteristic", characteristic).Int("value", value).Msg("Triggered SET")
	return a.handler.set(ctx, characteristic, value)
}

func (r *Registry) lookup(id uuid.UUID) (*Accessory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accessories[id]
	if !ok || a.handler == nil {
		return nil, fmt.Errorf("accessory %s: %w", id, errors.ErrAccessoryNotFound)
	}
	return a, nil
}

func (r *Registry) cachedLocked() []CachedAccessory {
	out := make([]CachedAccessory, 0, len(r.accessories))
	for _, a := range r.accessories {
		out = append(out, CachedAccessory{ID: a.ID, Name: a.Name, Kind: a.Kind, Device: a.Device})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}
