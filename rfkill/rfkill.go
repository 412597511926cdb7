// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package rfkill

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/radioctl/radio"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("radioctl/rfkill")

// SetLogLevel set level of package logger
func SetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
}

var ErrUnsupportedState = errors.New("unsupported target state")

const (
	defaultDevicePath = "/dev/rfkill"
	defaultSysfsDir   = "/sys/class/rfkill"
)

// Authorizer check whether the caller may change radio state
type Authorizer interface {
	CheckAuthorization() (radio.AccessStatus, error)
}

// Device rfkill control device and its sysfs view
type Device struct {
	// DevicePath rfkill character device, /dev/rfkill if empty
	DevicePath string
	// SysfsDir rfkill class dir, /sys/class/rfkill if empty
	SysfsDir string
	// Authorizer is consulted before every change if not nil
	Authorizer Authorizer

	openFile func(name string, flag int, perm os.FileMode) (*os.File, error)
}

func NewDevice(authorizer Authorizer) *Device {
	return &Device{
		DevicePath: defaultDevicePath,
		SysfsDir:   defaultSysfsDir,
		Authorizer: authorizer,
	}
}

func (d *Device) devicePath() string {
	if d.DevicePath == "" {
		return defaultDevicePath
	}
	return d.DevicePath
}

// open rfkill device, permission is checked by kernel here and not on write
func (d *Device) open(flag int) (*os.File, error) {
	openFile := d.openFile
	if openFile == nil {
		openFile = os.OpenFile
	}
	return openFile(d.devicePath(), flag, 0)
}

// Check make sure rfkill device exists, kernel without rfkill has no node
func (d *Device) Check() error {
	_, err := os.Stat(d.devicePath())
	if err != nil {
		return xerrors.Errorf("rfkill not available: %w", err)
	}
	return nil
}

func (d *Device) sysfsDir() string {
	if d.SysfsDir == "" {
		return defaultSysfsDir
	}
	return d.SysfsDir
}

// Radios list all rfkill radios in kernel order
func (d *Device) Radios() ([]radio.Radio, error) {
	events, err := d.readEvents()
	if err != nil {
		return nil, err
	}
	radios := make([]radio.Radio, 0, len(events))
	for _, ev := range events {
		radios = append(radios, &Radio{
			dev:   d,
			index: ev.Index,
			typ:   ev.Typ,
			name:  d.radioName(ev.Index),
			state: ev.ToState(),
		})
	}
	return radios, nil
}

// readEvents read the add events kernel queues for every device on open
func (d *Device) readEvents() ([]Event, error) {
	file, err := d.open(os.O_RDONLY)
	if err != nil {
		logger.Warningf("cant open rfkill, err: %v", err)
		return nil, xerrors.Errorf("open rfkill: %w", err)
	}
	defer file.Close()

	reader, err := newEventReader(file)
	if err != nil {
		return nil, err
	}
	events, err := decodeEvents(reader)
	if err != nil {
		logger.Warningf("read rfkill failed, err: %v", err)
		return nil, xerrors.Errorf("read rfkill: %w", err)
	}
	return collectDevices(events), nil
}

// newEventReader return a reader stops at the end of queued events.
// The character device is switched to non-block and EAGAIN means end.
func newEventReader(file *os.File) (io.Reader, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, xerrors.Errorf("stat rfkill: %w", err)
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		return file, nil
	}
	fd := int(file.Fd())
	err = syscall.SetNonblock(fd, true)
	if err != nil {
		logger.Warningf("cant set non-block, err: %v", err)
		return nil, xerrors.Errorf("set rfkill non-block: %w", err)
	}
	return nonblockReader(fd), nil
}

type nonblockReader int

func (fd nonblockReader) Read(buf []byte) (int, error) {
	n, err := syscall.Read(int(fd), buf)
	if err != nil {
		if err == syscall.EAGAIN {
			return 0, io.EOF
		}
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func decodeEvents(r io.Reader) ([]Event, error) {
	var events []Event
	for {
		var ev Event
		err := binary.Read(r, hostByteOrder, &ev)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// collectDevices fold events to the latest state of each device,
// keeping the order devices first showed up in.
func collectDevices(events []Event) []Event {
	var order []uint32
	devices := make(map[uint32]Event)
	for _, ev := range events {
		switch ev.Op {
		case rfkillOpAdd, rfkillOpChange:
			if _, ok := devices[ev.Index]; !ok {
				order = append(order, ev.Index)
			}
			devices[ev.Index] = ev
		case rfkillOpDel:
			delete(devices, ev.Index)
		default:
			logger.Debugf("ignore rfkill event: %+v", ev)
		}
	}
	var ret []Event
	for _, idx := range order {
		ev, ok := devices[idx]
		if !ok {
			continue
		}
		ret = append(ret, ev)
		// a device deleted and added again must only appear once
		delete(devices, idx)
	}
	return ret
}

func (d *Device) deviceDir(index uint32) string {
	return filepath.Join(d.sysfsDir(), fmt.Sprintf("rfkill%d", index))
}

// readAttr read a sysfs attribute of rfkill device
func (d *Device) readAttr(index uint32, attr string) (string, error) {
	content, err := os.ReadFile(filepath.Join(d.deviceDir(index), attr))
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(content)), nil
}

func (d *Device) radioName(index uint32) string {
	name, err := d.readAttr(index, "name")
	if err != nil || name == "" {
		logger.Debugf("cant read name of rfkill%d, err: %v", index, err)
		return fmt.Sprintf("rfkill%d", index)
	}
	return name
}

func (d *Device) readBlockState(index uint32, which string) (rfkillState, error) {
	content, err := d.readAttr(index, which)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(content, 10, 8)
	if err != nil {
		return 0, err
	}
	if value != 0 {
		return rfkillStateBlock, nil
	}
	return rfkillStateUnblock, nil
}

// verify read back block state after a change was written
func (d *Device) verify(index uint32, target radio.State) radio.AccessStatus {
	soft, err := d.readBlockState(index, "soft")
	if err != nil {
		logger.Warningf("read soft state of rfkill%d failed, err: %v", index, err)
		return radio.AccessUnspecified
	}
	hard, err := d.readBlockState(index, "hard")
	if err != nil {
		logger.Warningf("read hard state of rfkill%d failed, err: %v", index, err)
		return radio.AccessUnspecified
	}
	return classify(target, Event{Index: index, Soft: soft, Hard: hard})
}

// classify outcome of a change from block state read after it
func classify(target radio.State, ev Event) radio.AccessStatus {
	switch target {
	case radio.StateOn:
		if ev.Hard != rfkillStateUnblock {
			return radio.AccessDeniedBySystem
		}
		if ev.Soft == rfkillStateUnblock {
			return radio.AccessAllowed
		}
	case radio.StateOff:
		if ev.Soft != rfkillStateUnblock {
			return radio.AccessAllowed
		}
	}
	return radio.AccessUnspecified
}
