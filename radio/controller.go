// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package radio

import (
	"fmt"
	"io"

	"github.com/linuxdeepin/go-lib/gettext"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("radioctl/radio")

// SetLogLevel set level of package logger
func SetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
}

// Controller apply requests to radios and report every outcome to out
type Controller struct {
	out io.Writer
}

func NewController(out io.Writer) *Controller {
	return &Controller{out: out}
}

// Run apply req to every radio of kind in order.
// The first failed submission aborts the remaining radios.
func (c *Controller) Run(radios []Radio, kind Kind, req Request) error {
	selected := Select(radios, kind)
	logger.Debugf("%d of %d radios are %v", len(selected), len(radios), kind)
	for _, r := range selected {
		err := c.Apply(r, req)
		if err != nil {
			return err
		}
	}
	return nil
}

// Apply run req on a single radio
func (c *Controller) Apply(r Radio, req Request) error {
	if req.IsPowerCycle() {
		return c.powerCycle(r)
	}
	target, _ := req.Target()
	return c.setState(r, target, req.String())
}

func (c *Controller) setState(r Radio, target State, token string) error {
	if r.State() == target {
		c.printf(gettext.Tr("No change of the state of radio %s is needed"), r.Name())
		return nil
	}
	c.printf(gettext.Tr("Change state of radio %s to %s"), r.Name(), token)
	status, err := c.change(r, target)
	if err != nil {
		return err
	}
	c.printf(gettext.Tr("Access result of the change is %s"), status)
	return nil
}

// powerCycle always switch off and then on, whatever the current state is.
// A failure after off leaves the radio off.
func (c *Controller) powerCycle(r Radio) error {
	c.printf(gettext.Tr("Doing powercycle of the radio %s"), r.Name())

	c.println(gettext.Tr("Turning radio off"))
	offStatus, err := c.change(r, StateOff)
	if err != nil {
		return err
	}

	c.println(gettext.Tr("Turning radio on"))
	onStatus, err := c.change(r, StateOn)
	if err != nil {
		return err
	}

	c.printf(gettext.Tr("Access result of the change is %s for off and %s for on"), offStatus, onStatus)
	return nil
}

// change submit one state change and wait for it
func (c *Controller) change(r Radio, target State) (AccessStatus, error) {
	op, err := r.SetStateAsync(target)
	if err != nil {
		c.printf(gettext.Tr("Error changing state: %v"), err)
		return AccessUnspecified, xerrors.Errorf("submit state %v for radio %q: %w", target, r.Name(), err)
	}
	c.println(gettext.Tr("Done"))

	status, err := op.Wait()
	if err != nil {
		c.printf(gettext.Tr("Error changing state: %v"), err)
		return AccessUnspecified, xerrors.Errorf("wait state %v for radio %q: %w", target, r.Name(), err)
	}
	logger.Debugf("radio %q access result for %v: %v", r.Name(), target, status)
	return status, nil
}

func (c *Controller) printf(format string, args ...interface{}) {
	c.println(fmt.Sprintf(format, args...))
}

func (c *Controller) println(line string) {
	_, err := fmt.Fprintln(c.out, line)
	if err != nil {
		logger.Warning("write report failed:", err)
	}
}
