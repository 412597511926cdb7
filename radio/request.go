// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package radio

import (
	"errors"

	"golang.org/x/xerrors"
)

var ErrUnknownRequest = errors.New("unknown requested state")

const (
	tokenOn    = "on"
	tokenOff   = "off"
	tokenOffOn = "offon"
)

// Request requested operation, either a single target state or a power cycle
type Request struct {
	powerCycle bool
	target     State
}

// SetState request radios to be switched to target, target is StateOn or StateOff
func SetState(target State) Request {
	return Request{target: target}
}

// PowerCycle request radios to be switched off and then on
func PowerCycle() Request {
	return Request{powerCycle: true}
}

func (req Request) IsPowerCycle() bool {
	return req.powerCycle
}

// Target return target state of a single state request
func (req Request) Target() (State, bool) {
	if req.powerCycle {
		return StateUnknown, false
	}
	return req.target, true
}

// String command line token of request
func (req Request) String() string {
	if req.powerCycle {
		return tokenOffOn
	}
	switch req.target {
	case StateOn:
		return tokenOn
	case StateOff:
		return tokenOff
	}
	return req.target.String()
}

// ParseRequest convert command line token to request
func ParseRequest(token string) (Request, error) {
	switch token {
	case tokenOn:
		return SetState(StateOn), nil
	case tokenOff:
		return SetState(StateOff), nil
	case tokenOffOn:
		return PowerCycle(), nil
	}
	return Request{}, xerrors.Errorf("%w: %q", ErrUnknownRequest, token)
}
