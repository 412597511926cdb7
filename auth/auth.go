// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"

	"github.com/godbus/dbus/v5"
	polkit "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.policykit1"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/radioctl/radio"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("radioctl/auth")

// SetLogLevel set level of package logger
func SetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
}

// ActionIdSetState polkit action of changing radio state, see misc/polkit-action
const ActionIdSetState = "org.deepin.dde.radioctl1.set-state"

const detailDismissed = "polkit.dismissed"

// Authority ask polkit whether this process may run an action
type Authority struct {
	actionId  string
	busName   string
	authority polkit.Authority
}

// NewSystemAuthority connect to system bus, the unique name of the
// connection is the subject of every check.
func NewSystemAuthority(actionId string) (*Authority, error) {
	systemBus, err := dbus.SystemBus()
	if err != nil {
		return nil, xerrors.Errorf("connect system bus: %w", err)
	}
	names := systemBus.Names()
	if len(names) == 0 {
		return nil, errors.New("system bus connection has no unique name")
	}
	return &Authority{
		actionId:  actionId,
		busName:   names[0],
		authority: polkit.NewAuthority(systemBus),
	}, nil
}

// CheckAuthorization check action, interaction is allowed so an agent may prompt the user
func (a *Authority) CheckAuthorization() (radio.AccessStatus, error) {
	subject := polkit.MakeSubject(polkit.SubjectKindSystemBusName)
	subject.SetDetail("name", a.busName)

	ret, err := a.authority.CheckAuthorization(0, subject, a.actionId,
		nil, polkit.CheckAuthorizationFlagsAllowUserInteraction, "")
	if err != nil {
		logger.Warningf("call check auth failed, err: %v", err)
		return radio.AccessUnspecified, xerrors.Errorf("check authorization of %s: %w", a.actionId, err)
	}
	logger.Debugf("call check auth success, ret: %v", ret)
	return toAccessStatus(ret), nil
}

// toAccessStatus map polkit verdict, a non empty polkit.dismissed detail
// means the user closed the agent dialog
func toAccessStatus(ret polkit.AuthorizationResult) radio.AccessStatus {
	if ret.IsAuthorized {
		return radio.AccessAllowed
	}
	if v, ok := ret.Details[detailDismissed]; ok {
		if dismissed, _ := v.Value().(string); dismissed != "" {
			return radio.AccessDeniedByUser
		}
	}
	return radio.AccessDeniedBySystem
}
