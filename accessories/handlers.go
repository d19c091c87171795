package accessories

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/smartrent-bridge/devices"
	"github.com/jrsteele09/smartrent-bridge/internal/errors"
)

// Characteristic names exposed by accessories
const (
	CharLockCurrentState = "LockCurrentState"
	CharLockTargetState  = "LockTargetState"
	CharOn               = "On"
	CharLeakDetected     = "LeakDetected"
)

// Characteristic values
const (
	LockUnsecured = 0
	LockSecured   = 1

	LeakNotDetected = 0
	LeakIsDetected  = 1

	Off = 0
	On  = 1
)

// Device attribute keys
const (
	attrLocked = "locked"
	attrOn     = "on"
	attrLeak   = "leak"
)

// handler serves the characteristics of one accessory kind. Reads of current
// state always go to the device API; target values are cached.
type handler interface {
	characteristics() []string
	get(ctx context.Context, characteristic string) (int, error)
	set(ctx context.Context, characteristic string, value int) error
}

// deviceState is the shared addressing and cached values of a handler.
type deviceState struct {
	api      devices.API
	hubID    int
	deviceID int

	mu      sync.Mutex
	current int
	target  int
}

func (s *deviceState) fetch(ctx context.Context, key string) (bool, error) {
	attrs, err := s.api.GetState(ctx, s.hubID, s.deviceID)
	if err != nil {
		return false, err
	}
	return attrBool(attrs, key)
}

func (s *deviceState) update(ctx context.Context, key string, value bool) (bool, error) {
	attrs, err := s.api.SetState(ctx, s.hubID, s.deviceID, devices.Attributes{key: value})
	if err != nil {
		return false, err
	}
	return attrBool(attrs, key)
}

func (s *deviceState) record(current int) {
	s.mu.Lock()
	s.current = current
	s.mu.Unlock()
}

func attrBool(attrs devices.Attributes, key string) (bool, error) {
	v, ok := attrs.Bool(key)
	if !ok {
		return false, fmt.Errorf("attribute %q: %w", key, errors.ErrMalformedResponse)
	}
	return v, nil
}

func boolValue(b bool, yes, no int) int {
	if b {
		return yes
	}
	return no
}

func unknownCharacteristic(characteristic string) error {
	return fmt.Errorf("characteristic %q: %w", characteristic, errors.ErrUnsupportedDevice)
}

type lockHandler struct {
	deviceState
}

func newLockHandler(api devices.API, d devices.Device) *lockHandler {
	h := &lockHandler{deviceState{api: api, hubID: d.HubID(), deviceID: d.ID, current: LockUnsecured, target: LockUnsecured}}
	return h
}

func (h *lockHandler) characteristics() []string {
	return []string{CharLockCurrentState, CharLockTargetState}
}

func (h *lockHandler) get(ctx context.Context, characteristic string) (int, error) {
	switch characteristic {
	case CharLockCurrentState:
		locked, err := h.fetch(ctx, attrLocked)
		if err != nil {
			return 0, err
		}
		current := boolValue(locked, LockSecured, LockUnsecured)
		h.record(current)
		return current, nil
	case CharLockTargetState:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.target, nil
	}
	return 0, unknownCharacteristic(characteristic)
}

func (h *lockHandler) set(ctx context.Context, characteristic string, value int) error {
	switch characteristic {
	case CharLockTargetState:
		h.mu.Lock()
		h.target = value
		h.mu.Unlock()
		locked, err := h.update(ctx, attrLocked, value != 0)
		if err != nil {
			return err
		}
		h.record(boolValue(locked, LockSecured, LockUnsecured))
		return nil
	case CharLockCurrentState:
		return fmt.Errorf("%s: %w", characteristic, errors.ErrReadOnly)
	}
	return unknownCharacteristic(characteristic)
}

type switchHandler struct {
	deviceState
}

func newSwitchHandler(api devices.API, d devices.Device) *switchHandler {
	return &switchHandler{deviceState{api: api, hubID: d.HubID(), deviceID: d.ID, current: Off, target: Off}}
}

func (h *switchHandler) characteristics() []string {
	return []string{CharOn}
}

func (h *switchHandler) get(ctx context.Context, characteristic string) (int, error) {
	if characteristic != CharOn {
		return 0, unknownCharacteristic(characteristic)
	}
	on, err := h.fetch(ctx, attrOn)
	if err != nil {
		return 0, err
	}
	current := boolValue(on, On, Off)
	h.record(current)
	return current, nil
}

func (h *switchHandler) set(ctx context.Context, characteristic string, value int) error {
	if characteristic != CharOn {
		return unknownCharacteristic(characteristic)
	}
	h.mu.Lock()
	h.target = value
	h.mu.Unlock()
	on, err := h.update(ctx, attrOn, value != 0)
	if err != nil {
		return err
	}
	h.record(boolValue(on, On, Off))
	return nil
}

type leakSensorHandler struct {
	deviceState
}

func newLeakSensorHandler(api devices.API, d devices.Device) *leakSensorHandler {
	return &leakSensorHandler{deviceState{api: api, hubID: d.HubID(), deviceID: d.ID, current: LeakNotDetected}}
}

func (h *leakSensorHandler) characteristics() []string {
	return []string{CharLeakDetected}
}

func (h *leakSensorHandler) get(ctx context.Context, characteristic string) (int, error) {
	if characteristic != CharLeakDetected {
		return 0, unknownCharacteristic(characteristic)
	}
	leak, err := h.fetch(ctx, attrLeak)
	if err != nil {
		return 0, err
	}
	current := boolValue(leak, LeakIsDetected, LeakNotDetected)
	h.record(current)
	return current, nil
}

func (h *leakSensorHandler) set(_ context.Context, characteristic string, _ int) error {
	if characteristic != CharLeakDetected {
		return unknownCharacteristic(characteristic)
	}
	return fmt.Errorf("%s: %w", characteristic, errors.ErrReadOnly)
}
