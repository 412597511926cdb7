// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package rfkill

import (
	"encoding/binary"
	"os"

	"github.com/linuxdeepin/radioctl/radio"
	"golang.org/x/xerrors"
)

// Radio one rfkill device
type Radio struct {
	dev   *Device
	index uint32
	typ   rfkillType
	name  string
	state radio.State
}

func (r *Radio) Name() string {
	return r.name
}

func (r *Radio) Kind() radio.Kind {
	return r.typ.ToKind()
}

func (r *Radio) State() radio.State {
	return r.state
}

// Index rfkill index of device
func (r *Radio) Index() uint32 {
	return r.index
}

// Type rfkill type name, such as wlan
func (r *Radio) Type() string {
	return r.typ.String()
}

// SetStateAsync open rfkill and change soft block state of this device in background.
// A device we are not permitted to open is reported as denied by system.
func (r *Radio) SetStateAsync(state radio.State) (radio.Operation, error) {
	soft, err := toSoftState(state)
	if err != nil {
		return nil, err
	}
	file, err := r.dev.open(os.O_RDWR)
	if err != nil {
		if xerrors.Is(err, os.ErrPermission) {
			logger.Warningf("no permission to open rfkill, err: %v", err)
			return finishedOperation(radio.AccessDeniedBySystem, nil), nil
		}
		logger.Warningf("cant open rfkill, err: %v", err)
		return nil, xerrors.Errorf("open rfkill: %w", err)
	}

	op := newOperation()
	go func() {
		status, err := r.change(file, state, soft)
		closeErr := file.Close()
		if err == nil && closeErr != nil {
			logger.Warningf("close rfkill failed, err: %v", closeErr)
		}
		if err == nil && status == radio.AccessAllowed {
			status = r.dev.verify(r.index, state)
		}
		op.finish(status, err)
	}()
	return op, nil
}

// change ask authorizer and write change event.
// Allowed means event is written and still needs to be verified.
func (r *Radio) change(file *os.File, state radio.State, soft rfkillState) (radio.AccessStatus, error) {
	if r.dev.Authorizer != nil {
		status, err := r.dev.Authorizer.CheckAuthorization()
		if err != nil {
			// polkit is not available, kernel permission is the only check left
			logger.Warningf("check authorization failed, err: %v", err)
		} else if status != radio.AccessAllowed {
			logger.Infof("change %s to %v is not authorized: %v", r.name, state, status)
			return status, nil
		}
	}

	event := &Event{
		Index: r.index,
		Typ:   r.typ,
		Op:    rfkillOpChange,
		Soft:  soft,
	}
	err := binary.Write(file, hostByteOrder, event)
	if err != nil {
		logger.Warningf("set rfkill state failed, index: %d, state: %v, err: %v", r.index, state, err)
		return radio.AccessUnspecified, xerrors.Errorf("write rfkill event: %w", err)
	}
	logger.Infof("set rfkill state success, index: %d, state: %v", r.index, state)
	return radio.AccessAllowed, nil
}

type operation struct {
	done   chan struct{}
	status radio.AccessStatus
	err    error
}

func newOperation() *operation {
	return &operation{done: make(chan struct{})}
}

func finishedOperation(status radio.AccessStatus, err error) *operation {
	op := newOperation()
	op.finish(status, err)
	return op
}

func (op *operation) finish(status radio.AccessStatus, err error) {
	op.status = status
	op.err = err
	close(op.done)
}

func (op *operation) Wait() (radio.AccessStatus, error) {
	<-op.done
	return op.status, op.err
}
