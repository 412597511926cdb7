// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package radio

import (
	"errors"

	"golang.org/x/xerrors"
)

var ErrUnknownKind = errors.New("unknown radio kind")

// ParseKind convert command line token to radio kind
func ParseKind(token string) (Kind, error) {
	switch token {
	case "w":
		return KindWiFi, nil
	case "b":
		return KindBluetooth, nil
	}
	return KindOther, xerrors.Errorf("%w: %q", ErrUnknownKind, token)
}

// Select return radios of kind, keep enumeration order
func Select(radios []Radio, kind Kind) []Radio {
	var ret []Radio
	for _, r := range radios {
		if r.Kind() != kind {
			continue
		}
		ret = append(ret, r)
	}
	return ret
}
