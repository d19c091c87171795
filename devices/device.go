// Package devices talks to the SmartRent device API: it discovers the devices
// in a unit and reads or writes their attributes.
package devices

import (
	"strconv"
)

// DeviceType is the SmartRent device type string.
type DeviceType string

const (
	TypeEntryControl       DeviceType = "entry_control"
	TypeSwitchBinary       DeviceType = "switch_binary"
	TypeSensorNotification DeviceType = "sensor_notification"
)

// Attributes are a device's reported state. Values are strings, numbers,
// booleans or null, as sent by the API.
type Attributes map[string]any

// Bool returns the attribute as a boolean. ok is false when the key is absent
// or not a boolean.
func (a Attributes) Bool(key string) (value bool, ok bool) {
	v, present := a[key]
	if !present {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Has reports whether the attribute key is present, even with a null value.
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Unit is a rental unit the account has access to.
type Unit struct {
	ID            int    `json:"id"`
	MarketingName string `json:"marketing_name"`
	UnitCode      string `json:"unit_code"`
	HasHub        bool   `json:"has_hub"`
	HubID         int    `json:"hub_id"`
	Timezone      string `json:"timezone"`
}

// Room groups the devices attached to a hub.
type Room struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Icon    *string  `json:"icon"`
	Devices []Device `json:"devices"`
}

// DeviceRoom is the room summary embedded in each device.
type DeviceRoom struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	HubID int    `json:"hub_id"`
}

type Device struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Type           DeviceType `json:"type"`
	Online         bool       `json:"online"`
	PendingUpdate  bool       `json:"pending_update"`
	Warning        bool       `json:"warning"`
	BatteryPowered bool       `json:"battery_powered"`
	BatteryLevel   *int       `json:"battery_level"`
	Attributes     Attributes `json:"attributes"`
	Room           DeviceRoom `json:"room"`
}

// HubID returns the hub that controls the device.
func (d Device) HubID() int {
	return d.Room.HubID
}

// Serial is the identifier reported as the accessory serial number.
func (d Device) Serial() string {
	return strconv.Itoa(d.ID)
}
