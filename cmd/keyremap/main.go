//go:build linux

// Command keyremap remaps a keyboard's keys and axes according to a
// TOML configuration file: dual-role keys, chorded remaps, and
// direction-filtered/scaled axis rules, written through a synthetic
// uinput device.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func newLogger() *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(os.Getenv("KEYREMAP_LOG"))
	if err != nil {
		level = logrus.InfoLevel
	}

	log.SetLevel(level)

	return log
}

func newApp() *cli.App {
	log := newLogger()

	return &cli.App{
		Name:  "keyremap",
		Usage: "remap evdev keyboard keys and axes through a synthetic uinput device",
		Commands: []*cli.Command{
			{
				Name:   "list-devices",
				Usage:  "list /dev/input devices and their names/phys",
				Action: listDevicesAction(log),
			},
			{
				Name:   "list-keys",
				Usage:  "list every KEY_*/BTN_* name the config grammar accepts",
				Action: listKeysAction(log),
			},
			{
				Name:      "remap",
				Usage:     "run the remapper against a config file",
				ArgsUsage: "<config.toml>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "delay",
						Value: 2,
						Usage: "startup grace delay in seconds before grabbing the device",
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "wait (with backoff) for the configured device to appear",
					},
				},
				Action: remapAction(log),
			},
			{
				Name:      "listen",
				Usage:     "stream a device's raw events without grabbing or remapping",
				ArgsUsage: "<device-name> [phys]",
				Action:    listenAction(log),
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "keyremap:", err)
		os.Exit(1)
	}
}
