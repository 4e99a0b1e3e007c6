//go:build linux

package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/thorio/keyremap"
	"github.com/thorio/keyremap/internal/config"
	"github.com/thorio/keyremap/internal/deviceinfo"
	"github.com/thorio/keyremap/internal/engine"
	"github.com/thorio/keyremap/linux/evdev"
)

func listDevicesAction(log *logrus.Logger) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		infos, err := deviceinfo.Scan()
		if err != nil {
			return fmt.Errorf("list-devices: %w", err)
		}

		for _, info := range infos {
			fmt.Printf("%s\tname=%q\tphys=%q\n", info.Path, info.Name, info.Phys)
		}

		return nil
	}
}

func listKeysAction(log *logrus.Logger) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		for _, name := range evdev.KeyNames() {
			fmt.Println(name)
		}

		return nil
	}
}

func remapAction(log *logrus.Logger) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		path := ctx.Args().Get(0)
		if path == "" {
			return fmt.Errorf("remap: a config file path is required")
		}

		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("remap: %w", err)
		}

		info, err := locateDevice(cfg, ctx.Bool("wait"))
		if err != nil {
			return fmt.Errorf("remap: %w", err)
		}

		delay := time.Duration(ctx.Int("delay")) * time.Second
		log.Infof("sleeping %s before grabbing %s", delay, info.Path)
		time.Sleep(delay)

		device, err := evdev.OpenRemapDevice(info.Path, cfg.Table)
		if err != nil {
			return fmt.Errorf("remap: %w", err)
		}
		defer device.Close()

		eng := engine.New(device, cfg.Table, log)

		return eng.Run()
	}
}

func locateDevice(cfg config.Config, wait bool) (deviceinfo.Info, error) {
	if wait {
		return deviceinfo.Wait(cfg.DeviceName, cfg.Phys, time.Second)
	}

	info, ok, err := deviceinfo.Find(cfg.DeviceName, cfg.Phys)
	if err != nil {
		return deviceinfo.Info{}, err
	}

	if !ok {
		return deviceinfo.Info{}, fmt.Errorf("no device named %q found", cfg.DeviceName)
	}

	return info, nil
}

func listenAction(log *logrus.Logger) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		name := ctx.Args().Get(0)
		if name == "" {
			return fmt.Errorf("listen: a device name is required")
		}

		phys := ctx.Args().Get(1)

		info, ok, err := deviceinfo.Find(name, phys)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}

		if !ok {
			return fmt.Errorf("listen: no device named %q found", name)
		}

		device, err := evdev.Open(info.Path)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		defer device.Close()

		log.Infof("listening on %s (%s)", info.Path, info.Name)

		for {
			event, status, err := device.ReadEvent()
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}

			if status != engine.StatusOK {
				return fmt.Errorf("listen: event queue overflowed, resync required")
			}

			log.Infof("family=%v code=%d value=%d", familyName(event.Code.Family), event.Code.Code, event.Value)
		}
	}
}

func familyName(family keyremap.EventFamily) string {
	switch family {
	case keyremap.FamilySyn:
		return "SYN"
	case keyremap.FamilyKey:
		return "KEY"
	case keyremap.FamilyRel:
		return "REL"
	case keyremap.FamilyAbs:
		return "ABS"
	case keyremap.FamilyMsc:
		return "MSC"
	case keyremap.FamilySw:
		return "SW"
	case keyremap.FamilyLed:
		return "LED"
	case keyremap.FamilySnd:
		return "SND"
	case keyremap.FamilyRep:
		return "REP"
	default:
		return "UNKNOWN"
	}
}
