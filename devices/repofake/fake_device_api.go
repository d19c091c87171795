package repofake

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/jrsteele09/smartrent-bridge/devices"
	"github.com/jrsteele09/smartrent-bridge/internal/errors"
)

var _ devices.API = (*FakeDeviceAPI)(nil)

// FakeDeviceAPI serves a fixed device list and keeps per-device attributes in
// memory. SetState merges the update into the stored attributes.
type FakeDeviceAPI struct {
	lock    sync.Mutex
	devices []devices.Device
	state   map[int]devices.Attributes

	DiscoverErr error
	StateErr    error

	SetCalls []SetCall
}

// SetCall records one SetState request.
type SetCall struct {
	HubID    int
	DeviceID int
	Attrs    devices.Attributes
}

func NewFakeDeviceAPI(list ...devices.Device) *FakeDeviceAPI {
	f := &FakeDeviceAPI{state: make(map[int]devices.Attributes)}
	f.SetDevices(list...)
	return f
}

// SetDevices replaces the device list returned by discovery.
func (f *FakeDeviceAPI) SetDevices(list ...devices.Device) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.devices = list
	for _, d := range list {
		if _, ok := f.state[d.ID]; !ok {
			f.state[d.ID] = maps.Clone(d.Attributes)
		}
	}
}

func (f *FakeDeviceAPI) Units(context.Context) ([]devices.Unit, error) {
	return []devices.Unit{{ID: 1, MarketingName: "Unit 1", HasHub: true, HubID: 1}}, nil
}

func (f *FakeDeviceAPI) Rooms(context.Context, int) ([]devices.Room, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	return []devices.Room{{ID: 1, Name: "Home", Devices: append([]devices.Device(nil), f.devices...)}}, nil
}

func (f *FakeDeviceAPI) DiscoverDevices(context.Context, string) ([]devices.Device, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.DiscoverErr != nil {
		return nil, f.DiscoverErr
	}
	return append([]devices.Device(nil), f.devices...), nil
}

func (f *FakeDeviceAPI) GetState(_ context.Context, _ int, deviceID int) (devices.Attributes, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.StateErr != nil {
		return nil, f.StateErr
	}
	attrs, ok := f.state[deviceID]
	if !ok {
		return nil, &errors.RequestError{Op: devices.OpGetState, Status: 404}
	}
	return maps.Clone(attrs), nil
}

func (f *FakeDeviceAPI) SetState(_ context.Context, hubID, deviceID int, attrs devices.Attributes) (devices.Attributes, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.SetCalls = append(f.SetCalls, SetCall{HubID: hubID, DeviceID: deviceID, Attrs: maps.Clone(attrs)})
	if f.StateErr != nil {
		return nil, f.StateErr
	}
	current, ok := f.state[deviceID]
	if !ok {
		return nil, fmt.Errorf("device %d: %w", deviceID, &errors.RequestError{Op: devices.OpSetState, Status: 404})
	}
	maps.Copy(current, attrs)
	return maps.Clone(current), nil
}

// SetAttribute changes a device attribute as if it changed on the device.
func (f *FakeDeviceAPI) SetAttribute(deviceID int, key string, value any) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.state[deviceID] == nil {
		f.state[deviceID] = devices.Attributes{}
	}
	f.state[deviceID][key] = value
}
