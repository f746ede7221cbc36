// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/log"

	"github.com/misha-armatura/TouchScreenDriver/touchscreen"
)

var logger = log.NewLogger("touchscreen-daemon")

var (
	devicePath  = flag.String("device", "", "input device node; empty means auto-detect")
	enableMitm  = flag.Bool("mitm", false, "republish the calibrated stream through uinput")
	grabSource  = flag.Bool("grab", true, "grab the source device exclusively in mitm mode")
	calibration = flag.String("calibration", "", "calibration file to load at startup")
	verbose     = flag.Bool("verbose", false, "debug logging")
)

func main() {
	flag.Parse()
	if *verbose {
		logger.SetLogLevel(log.LevelDebug)
	}

	service, err := dbusutil.NewSessionService()
	if err != nil {
		logger.Fatal("failed to connect to session bus:", err)
	}

	manager := touchscreen.NewManager(service)
	reader := manager.Reader()

	if *calibration != "" {
		if err := reader.LoadCalibration(*calibration); err != nil {
			logger.Warning("load calibration:", err)
		}
	}

	if *devicePath != "" {
		err = reader.Start(*devicePath)
	} else {
		err = reader.StartAuto()
	}
	if err != nil {
		logger.Warning("no device yet:", err)
	}

	if *enableMitm {
		if err := reader.EnableMitm(true, *grabSource); err != nil {
			logger.Error("enable mitm:", err)
			reader.Stop()
			os.Exit(1)
		}
	}

	if err := manager.Export(); err != nil {
		logger.Fatal("failed to export service:", err)
	}

	stopWatch, err := manager.WatchHotplug()
	if err != nil {
		logger.Warning("hotplug watch unavailable:", err)
	} else {
		defer stopWatch()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		manager.Destroy()
		os.Exit(0)
	}()

	service.Wait()
}
