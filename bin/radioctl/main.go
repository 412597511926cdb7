// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/linuxdeepin/go-lib/gettext"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/radioctl/auth"
	"github.com/linuxdeepin/radioctl/radio"
	"github.com/linuxdeepin/radioctl/rfkill"
)

const envLogLevel = "RADIOCTL_LOG_LEVEL"

const (
	exitOK = iota
	// exitFailed bad arguments or an aborted state change
	exitFailed
	// exitFatal radios cant be enumerated
	exitFatal
)

var logger = log.NewLogger("radioctl")

var logLevels = map[string]log.Priority{
	"":      log.LevelWarning,
	"error": log.LevelError,
	"warn":  log.LevelWarning,
	"info":  log.LevelInfo,
	"debug": log.LevelDebug,
	"no":    log.LevelDisable,
}

// toLogLevel parse RADIOCTL_LOG_LEVEL, unknown names fall back to warn
func toLogLevel(name string) (log.Priority, error) {
	level, ok := logLevels[strings.ToLower(name)]
	if !ok {
		return log.LevelWarning, fmt.Errorf("log level %q is not supported", name)
	}
	return level, nil
}

func usage(out io.Writer) {
	fmt.Fprintln(out, gettext.Tr("Not enough arguments to run the app. Please specify such parameters:"))
	fmt.Fprintln(out, gettext.Tr("<exefile> <radio kind: w for wifi and b for bluetooth> <new state: on or off or offon>"))
}

// openRfkill rfkill device gated by polkit, root needs no authorization
func openRfkill() (radio.Enumerator, error) {
	var authorizer rfkill.Authorizer
	if os.Geteuid() != 0 {
		authority, err := auth.NewSystemAuthority(auth.ActionIdSetState)
		if err != nil {
			logger.Warning("polkit is not available:", err)
		} else {
			authorizer = authority
		}
	}
	dev := rfkill.NewDevice(authorizer)
	err := dev.Check()
	if err != nil {
		return nil, err
	}
	return dev, nil
}

// run validate args, then enumerate radios and apply the request.
// Nothing is opened before args are valid.
func run(args []string, out io.Writer, open func() (radio.Enumerator, error)) int {
	logger.Debugf("command line parameters are: %s", spew.Sdump(args))

	if len(args) != 3 {
		usage(out)
		return exitFailed
	}

	kind, err := radio.ParseKind(args[1])
	if err != nil {
		fmt.Fprintf(out, gettext.Tr("Requested kind parameter is unknown: '%s'")+"\n", args[1])
		return exitFailed
	}

	req, err := radio.ParseRequest(args[2])
	if err != nil {
		fmt.Fprintf(out, gettext.Tr("Requested state parameter is unknown: '%s'")+"\n", args[2])
		return exitFailed
	}

	enumerator, err := open()
	if err == nil {
		var radios []radio.Radio
		radios, err = enumerator.Radios()
		if err == nil {
			return apply(radios, kind, req, out)
		}
	}
	logger.Error("failed to get list of radios:", err)
	fmt.Fprintf(out, gettext.Tr("Error during getting a list of radios: %v")+"\n", err)
	return exitFatal
}

func apply(radios []radio.Radio, kind radio.Kind, req radio.Request, out io.Writer) int {
	for _, r := range radios {
		logger.Debugf("found a radio instance: name=%s, kind=%v, state=%v", r.Name(), r.Kind(), r.State())
	}
	err := radio.NewController(out).Run(radios, kind, req)
	if err != nil {
		logger.Warning(err)
		return exitFailed
	}
	return exitOK
}

func main() {
	gettext.InitI18n()
	gettext.Textdomain("dde-radioctl")

	logLevel, err := toLogLevel(os.Getenv(envLogLevel))
	if err != nil {
		logger.Warning("failed to parse loglevel:", err)
	}
	logger.SetLogLevel(logLevel)
	radio.SetLogLevel(logLevel)
	rfkill.SetLogLevel(logLevel)
	auth.SetLogLevel(logLevel)

	os.Exit(run(os.Args, os.Stdout, openRfkill))
}
