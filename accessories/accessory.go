// Package accessories maps SmartRent devices to home automation accessories
// (lock, switch, leak sensor) and keeps the set of published accessories in
// step with what the device API reports.
package accessories

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/jrsteele09/smartrent-bridge/devices"
)

// Kind is the accessory service a device is published as.
type Kind string

const (
	KindLock       Kind = "lock"
	KindSwitch     Kind = "switch"
	KindLeakSensor Kind = "leak_sensor"
)

// accessoryNamespace scopes accessory IDs so they are stable across restarts.
var accessoryNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("smartrent-bridge.accessory"))

// AccessoryID derives the stable accessory identifier for a device.
func AccessoryID(deviceID int) uuid.UUID {
	return uuid.NewSHA1(accessoryNamespace, []byte(strconv.Itoa(deviceID)))
}

// KindFor returns the accessory kind for a device. Notification sensors are
// only supported when they report a leak attribute.
func KindFor(d devices.Device) (Kind, bool) {
	switch d.Type {
	case devices.TypeEntryControl:
		return KindLock, true
	case devices.TypeSwitchBinary:
		return KindSwitch, true
	case devices.TypeSensorNotification:
		if d.Attributes.Has(attrLeak) {
			return KindLeakSensor, true
		}
	}
	return "", false
}

// Accessory is a published device.
type Accessory struct {
	ID     uuid.UUID      `json:"id"`
	Name   string         `json:"name"`
	Kind   Kind           `json:"kind"`
	Serial string         `json:"serial"`
	Device devices.Device `json:"device"`

	handler handler
}

// Characteristics lists the characteristic names the accessory serves.
func (a *Accessory) Characteristics() []string {
	if a.handler == nil {
		return nil
	}
	return a.handler.characteristics()
}

func newHandler(api devices.API, kind Kind, d devices.Device) handler {
	switch kind {
	case KindLock:
		return newLockHandler(api, d)
	case KindSwitch:
		return newSwitchHandler(api, d)
	case KindLeakSensor:
		return newLeakSensorHandler(api, d)
	}
	return nil
}
