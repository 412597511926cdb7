// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package rfkill

import (
	"fmt"

	"github.com/linuxdeepin/radioctl/radio"
	"golang.org/x/xerrors"
)

// rfkillType include/uapi/linux/rfkill.h
type rfkillType uint8

const (
	rfkillTypeAll rfkillType = iota
	rfkillTypeWifi
	rfkillTypeBT
	rfkillTypeUWB
	rfkillTypeWIMAX
	rfkillTypeWWAN
	rfkillTypeGPS
	rfkillTypeFM
	rfkillTypeNFC
)

func (typ rfkillType) String() string {
	switch typ {
	case rfkillTypeAll:
		return "all"
	case rfkillTypeWifi:
		return "wlan"
	case rfkillTypeBT:
		return "bluetooth"
	case rfkillTypeUWB:
		return "uwb"
	case rfkillTypeWIMAX:
		return "wimax"
	case rfkillTypeWWAN:
		return "wwan"
	case rfkillTypeGPS:
		return "gps"
	case rfkillTypeFM:
		return "fm"
	case rfkillTypeNFC:
		return "nfc"
	}
	return fmt.Sprintf("type(%d)", uint8(typ))
}

// ToKind convert to radio kind, types without a match are other
func (typ rfkillType) ToKind() radio.Kind {
	switch typ {
	case rfkillTypeWifi:
		return radio.KindWiFi
	case rfkillTypeBT:
		return radio.KindBluetooth
	case rfkillTypeWWAN:
		return radio.KindMobileBroadband
	case rfkillTypeFM:
		return radio.KindFM
	}
	return radio.KindOther
}

// rfkillOp include/uapi/linux/rfkill.h
type rfkillOp uint8

const (
	rfkillOpAdd rfkillOp = iota
	rfkillOpDel
	rfkillOpChange
	rfkillOpChangeAll
)

// rfkillState soft or hard block state
type rfkillState uint8

const (
	rfkillStateUnblock rfkillState = iota
	rfkillStateBlock
)

// Event rfkill_event, V1 layout
type Event struct {
	Index uint32
	Typ   rfkillType
	Op    rfkillOp
	Soft  rfkillState
	Hard  rfkillState
}

// eventSize size of V1 event, kernel truncate newer events to reader size
const eventSize = 8

// ToState convert block state to radio state, hard block wins.
func (ev Event) ToState() radio.State {
	if ev.Hard != rfkillStateUnblock {
		return radio.StateDisabled
	}
	if ev.Soft != rfkillStateUnblock {
		return radio.StateOff
	}
	return radio.StateOn
}

// toSoftState radio target state to soft block state
func toSoftState(state radio.State) (rfkillState, error) {
	switch state {
	case radio.StateOn:
		return rfkillStateUnblock, nil
	case radio.StateOff:
		return rfkillStateBlock, nil
	}
	return 0, xerrors.Errorf("%w: %v", ErrUnsupportedState, state)
}
