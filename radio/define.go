// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package radio

import "fmt"

// Kind coarse category of a radio
type Kind int

const (
	KindOther Kind = iota
	KindWiFi
	KindMobileBroadband
	KindBluetooth
	KindFM
)

func (k Kind) String() string {
	switch k {
	case KindOther:
		return "Other"
	case KindWiFi:
		return "WiFi"
	case KindMobileBroadband:
		return "MobileBroadband"
	case KindBluetooth:
		return "Bluetooth"
	case KindFM:
		return "FM"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// State power state of a radio
type State int

const (
	StateUnknown State = iota
	StateOn
	StateOff
	// StateDisabled radio is switched off by hardware or firmware and
	// cant be turned on by software
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "Unknown"
	case StateOn:
		return "On"
	case StateOff:
		return "Off"
	case StateDisabled:
		return "Disabled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// AccessStatus outcome of a privileged attempt to change radio state
type AccessStatus int

const (
	AccessUnspecified AccessStatus = iota
	AccessAllowed
	AccessDeniedByUser
	AccessDeniedBySystem
)

func (a AccessStatus) String() string {
	switch a {
	case AccessUnspecified:
		return "Unspecified"
	case AccessAllowed:
		return "Allowed"
	case AccessDeniedByUser:
		return "DeniedByUser"
	case AccessDeniedBySystem:
		return "DeniedBySystem"
	}
	return fmt.Sprintf("AccessStatus(%d)", int(a))
}

// Operation handle of a submitted state change
type Operation interface {
	// Wait block until the change is finished
	Wait() (AccessStatus, error)
}

// Radio read only view of an enumerated radio
type Radio interface {
	Name() string
	Kind() Kind
	// State snapshot taken when the radio was enumerated
	State() State
	// SetStateAsync submit a state change, error means the change
	// could not be submitted at all
	SetStateAsync(state State) (Operation, error)
}

// Enumerator list radios of system
type Enumerator interface {
	Radios() ([]Radio, error)
}
