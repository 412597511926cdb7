// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package rfkill

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/linuxdeepin/radioctl/radio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

type sysfsDevice struct {
	name string
	soft string
	hard string
}

// newTestDevice write events as the queued content of a fake rfkill device
// and create the sysfs dir of devices.
func newTestDevice(t *testing.T, events []Event, sysfs map[uint32]sysfsDevice) *Device {
	dir := t.TempDir()
	var buf bytes.Buffer
	for _, ev := range events {
		require.NoError(t, binary.Write(&buf, hostByteOrder, ev))
	}
	devicePath := filepath.Join(dir, "rfkill")
	require.NoError(t, os.WriteFile(devicePath, buf.Bytes(), 0644))

	sysfsDir := filepath.Join(dir, "class")
	for idx, dev := range sysfs {
		writeSysfs(t, sysfsDir, idx, dev)
	}
	return &Device{DevicePath: devicePath, SysfsDir: sysfsDir}
}

func writeSysfs(t *testing.T, sysfsDir string, index uint32, dev sysfsDevice) {
	d := (&Device{SysfsDir: sysfsDir}).deviceDir(index)
	require.NoError(t, os.MkdirAll(d, 0755))
	files := map[string]string{"name": dev.name, "soft": dev.soft, "hard": dev.hard}
	for file, content := range files {
		if content == "" {
			continue
		}
		require.NoError(t, os.WriteFile(filepath.Join(d, file), []byte(content+"\n"), 0644))
	}
}

func readWrittenEvent(t *testing.T, d *Device) Event {
	content, err := os.ReadFile(d.DevicePath)
	require.NoError(t, err)
	var ev Event
	require.NoError(t, binary.Read(bytes.NewReader(content), hostByteOrder, &ev))
	return ev
}

type fakeAuthorizer struct {
	status radio.AccessStatus
	err    error
	calls  int
}

func (a *fakeAuthorizer) CheckAuthorization() (radio.AccessStatus, error) {
	a.calls++
	return a.status, a.err
}

func TestEventSize(t *testing.T) {
	assert.Equal(t, eventSize, binary.Size(Event{}))
}

func TestEvent_ToState(t *testing.T) {
	assert.Equal(t, radio.StateOn, Event{}.ToState())
	assert.Equal(t, radio.StateOff, Event{Soft: rfkillStateBlock}.ToState())
	assert.Equal(t, radio.StateDisabled, Event{Hard: rfkillStateBlock}.ToState())
	assert.Equal(t, radio.StateDisabled, Event{Soft: rfkillStateBlock, Hard: rfkillStateBlock}.ToState())
}

func TestRfkillType_ToKind(t *testing.T) {
	assert.Equal(t, radio.KindWiFi, rfkillTypeWifi.ToKind())
	assert.Equal(t, radio.KindBluetooth, rfkillTypeBT.ToKind())
	assert.Equal(t, radio.KindMobileBroadband, rfkillTypeWWAN.ToKind())
	assert.Equal(t, radio.KindFM, rfkillTypeFM.ToKind())
	assert.Equal(t, radio.KindOther, rfkillTypeNFC.ToKind())
	assert.Equal(t, radio.KindOther, rfkillType(42).ToKind())
	assert.Equal(t, "type(42)", rfkillType(42).String())
}

func Test_collectDevices(t *testing.T) {
	events := []Event{
		{Index: 3, Typ: rfkillTypeBT, Op: rfkillOpAdd},
		{Index: 1, Typ: rfkillTypeWifi, Op: rfkillOpAdd},
		{Index: 5, Typ: rfkillTypeWWAN, Op: rfkillOpAdd},
		{Index: 1, Typ: rfkillTypeWifi, Op: rfkillOpChange, Soft: rfkillStateBlock},
		{Index: 5, Op: rfkillOpDel},
		{Index: 0, Op: rfkillOpChangeAll},
		{Index: 5, Typ: rfkillTypeWWAN, Op: rfkillOpDel},
	}
	got := collectDevices(events)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(3), got[0].Index)
	assert.Equal(t, uint32(1), got[1].Index)
	assert.Equal(t, rfkillStateBlock, got[1].Soft)
}

func Test_collectDevicesReAdded(t *testing.T) {
	events := []Event{
		{Index: 2, Typ: rfkillTypeBT, Op: rfkillOpAdd},
		{Index: 2, Op: rfkillOpDel},
		{Index: 2, Typ: rfkillTypeBT, Op: rfkillOpAdd, Soft: rfkillStateBlock},
	}
	got := collectDevices(events)
	require.Len(t, got, 1)
	assert.Equal(t, rfkillStateBlock, got[0].Soft)
}

func Test_decodeEventsTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, hostByteOrder, Event{Index: 1}))
	buf.Write([]byte{1, 2, 3})
	_, err := decodeEvents(&buf)
	assert.Error(t, err)
}

func TestDevice_Radios(t *testing.T) {
	d := newTestDevice(t, []Event{
		{Index: 0, Typ: rfkillTypeWifi, Op: rfkillOpAdd},
		{Index: 1, Typ: rfkillTypeBT, Op: rfkillOpAdd, Soft: rfkillStateBlock},
		{Index: 2, Typ: rfkillTypeFM, Op: rfkillOpAdd, Hard: rfkillStateBlock},
	}, map[uint32]sysfsDevice{
		0: {name: "phy0"},
		1: {name: "hci0"},
	})

	radios, err := d.Radios()
	require.NoError(t, err)
	require.Len(t, radios, 3)

	assert.Equal(t, "phy0", radios[0].Name())
	assert.Equal(t, radio.KindWiFi, radios[0].Kind())
	assert.Equal(t, radio.StateOn, radios[0].State())

	assert.Equal(t, "hci0", radios[1].Name())
	assert.Equal(t, radio.KindBluetooth, radios[1].Kind())
	assert.Equal(t, radio.StateOff, radios[1].State())

	// no sysfs entry
	assert.Equal(t, "rfkill2", radios[2].Name())
	assert.Equal(t, radio.KindFM, radios[2].Kind())
	assert.Equal(t, radio.StateDisabled, radios[2].State())

	r := radios[1].(*Radio)
	assert.Equal(t, uint32(1), r.Index())
	assert.Equal(t, "bluetooth", r.Type())
}

func TestDevice_RadiosNoDevice(t *testing.T) {
	d := &Device{DevicePath: filepath.Join(t.TempDir(), "missing")}
	_, err := d.Radios()
	assert.True(t, xerrors.Is(err, os.ErrNotExist))
}

func TestRadio_SetStateAsync(t *testing.T) {
	d := newTestDevice(t, []Event{
		{Index: 4, Typ: rfkillTypeWifi, Op: rfkillOpAdd, Soft: rfkillStateBlock},
	}, nil)
	radios, err := d.Radios()
	require.NoError(t, err)
	require.Len(t, radios, 1)

	// state kernel reports after the change
	writeSysfs(t, d.SysfsDir, 4, sysfsDevice{name: "phy0", soft: "0", hard: "0"})

	op, err := radios[0].SetStateAsync(radio.StateOn)
	require.NoError(t, err)
	status, err := op.Wait()
	require.NoError(t, err)
	assert.Equal(t, radio.AccessAllowed, status)

	ev := readWrittenEvent(t, d)
	assert.Equal(t, Event{Index: 4, Typ: rfkillTypeWifi, Op: rfkillOpChange, Soft: rfkillStateUnblock}, ev)
}

func TestRadio_SetStateAsyncHardBlocked(t *testing.T) {
	d := newTestDevice(t, []Event{
		{Index: 0, Typ: rfkillTypeBT, Op: rfkillOpAdd, Hard: rfkillStateBlock},
	}, map[uint32]sysfsDevice{
		0: {name: "hci0", soft: "0", hard: "1"},
	})
	radios, err := d.Radios()
	require.NoError(t, err)

	op, err := radios[0].SetStateAsync(radio.StateOn)
	require.NoError(t, err)
	status, err := op.Wait()
	require.NoError(t, err)
	assert.Equal(t, radio.AccessDeniedBySystem, status)
}

func TestRadio_SetStateAsyncNoSysfs(t *testing.T) {
	d := newTestDevice(t, []Event{
		{Index: 0, Typ: rfkillTypeWifi, Op: rfkillOpAdd},
	}, nil)
	radios, err := d.Radios()
	require.NoError(t, err)

	op, err := radios[0].SetStateAsync(radio.StateOff)
	require.NoError(t, err)
	status, err := op.Wait()
	require.NoError(t, err)
	assert.Equal(t, radio.AccessUnspecified, status)

	ev := readWrittenEvent(t, d)
	assert.Equal(t, rfkillStateBlock, ev.Soft)
}

func TestRadio_SetStateAsyncUnsupported(t *testing.T) {
	r := &Radio{dev: &Device{}, typ: rfkillTypeWifi}
	_, err := r.SetStateAsync(radio.StateDisabled)
	assert.True(t, xerrors.Is(err, ErrUnsupportedState))
}

func TestRadio_SetStateAsyncDeviceGone(t *testing.T) {
	d := newTestDevice(t, []Event{
		{Index: 0, Typ: rfkillTypeWifi, Op: rfkillOpAdd},
	}, nil)
	radios, err := d.Radios()
	require.NoError(t, err)
	require.NoError(t, os.Remove(d.DevicePath))

	_, err = radios[0].SetStateAsync(radio.StateOff)
	assert.True(t, xerrors.Is(err, os.ErrNotExist))
}

func TestRadio_SetStateAsyncPermissionDenied(t *testing.T) {
	d := newTestDevice(t, []Event{
		{Index: 0, Typ: rfkillTypeWifi, Op: rfkillOpAdd},
	}, nil)
	radios, err := d.Radios()
	require.NoError(t, err)

	authorizer := &fakeAuthorizer{status: radio.AccessAllowed}
	d.Authorizer = authorizer
	d.openFile = func(name string, flag int, perm os.FileMode) (*os.File, error) {
		return nil, &os.PathError{Op: "open", Path: name, Err: syscall.EACCES}
	}

	op, err := radios[0].SetStateAsync(radio.StateOff)
	require.NoError(t, err)
	status, err := op.Wait()
	require.NoError(t, err)
	assert.Equal(t, radio.AccessDeniedBySystem, status)
	assert.Equal(t, 0, authorizer.calls)
}

func TestDevice_Check(t *testing.T) {
	d := newTestDevice(t, nil, nil)
	assert.NoError(t, d.Check())

	d = &Device{DevicePath: filepath.Join(t.TempDir(), "missing")}
	assert.True(t, xerrors.Is(d.Check(), os.ErrNotExist))
}

func TestRadio_SetStateAsyncAuthorizer(t *testing.T) {
	tests := []struct {
		name       string
		authorizer *fakeAuthorizer
		want       radio.AccessStatus
		written    bool
	}{
		{
			name:       "dismissed by user",
			authorizer: &fakeAuthorizer{status: radio.AccessDeniedByUser},
			want:       radio.AccessDeniedByUser,
		},
		{
			name:       "refused by policy",
			authorizer: &fakeAuthorizer{status: radio.AccessDeniedBySystem},
			want:       radio.AccessDeniedBySystem,
		},
		{
			name:       "authorized",
			authorizer: &fakeAuthorizer{status: radio.AccessAllowed},
			want:       radio.AccessAllowed,
			written:    true,
		},
		{
			name:       "polkit unavailable",
			authorizer: &fakeAuthorizer{err: errors.New("no polkit")},
			want:       radio.AccessAllowed,
			written:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDevice(t, []Event{
				{Index: 0, Typ: rfkillTypeBT, Op: rfkillOpAdd},
			}, map[uint32]sysfsDevice{
				0: {name: "hci0", soft: "1", hard: "0"},
			})
			radios, err := d.Radios()
			require.NoError(t, err)
			d.Authorizer = tt.authorizer
			before, err := os.ReadFile(d.DevicePath)
			require.NoError(t, err)

			op, err := radios[0].SetStateAsync(radio.StateOff)
			require.NoError(t, err)
			status, err := op.Wait()
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
			assert.Equal(t, 1, tt.authorizer.calls)

			after, err := os.ReadFile(d.DevicePath)
			require.NoError(t, err)
			if tt.written {
				assert.Equal(t, rfkillOpChange, readWrittenEvent(t, d).Op)
			} else {
				assert.Equal(t, before, after)
			}
		})
	}
}

func Test_classify(t *testing.T) {
	tests := []struct {
		name   string
		target radio.State
		ev     Event
		want   radio.AccessStatus
	}{
		{"on applied", radio.StateOn, Event{}, radio.AccessAllowed},
		{"on hard blocked", radio.StateOn, Event{Hard: rfkillStateBlock}, radio.AccessDeniedBySystem},
		{"on still soft blocked", radio.StateOn, Event{Soft: rfkillStateBlock}, radio.AccessUnspecified},
		{"off applied", radio.StateOff, Event{Soft: rfkillStateBlock}, radio.AccessAllowed},
		{"off applied hard blocked", radio.StateOff, Event{Soft: rfkillStateBlock, Hard: rfkillStateBlock}, radio.AccessAllowed},
		{"off not applied", radio.StateOff, Event{}, radio.AccessUnspecified},
		{"unknown target", radio.StateUnknown, Event{}, radio.AccessUnspecified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.target, tt.ev))
		})
	}
}

func Test_toSoftState(t *testing.T) {
	soft, err := toSoftState(radio.StateOn)
	require.NoError(t, err)
	assert.Equal(t, rfkillStateUnblock, soft)

	soft, err = toSoftState(radio.StateOff)
	require.NoError(t, err)
	assert.Equal(t, rfkillStateBlock, soft)

	_, err = toSoftState(radio.StateUnknown)
	assert.Error(t, err)
}
