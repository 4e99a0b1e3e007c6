//go:build linux

// Package deviceinfo locates a physical evdev device by name (and,
// optionally, its phys topology string) among /dev/input/eventN nodes,
// with an optional capped-linear backoff for devices that appear after
// this process starts (e.g. a keyboard plugged in after boot).
package deviceinfo

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/thorio/keyremap/linux/evdev"
)

// MaxWaitAttempts bounds Wait's retry loop.
const MaxWaitAttempts = 30

// Info is what a scan needs from each candidate device to match it
// against a configured name/phys.
type Info struct {
	Path string
	Name string
	Phys string
}

// Scan opens every /dev/input/eventN node, reads its name and phys,
// and returns the results sorted by path. Devices that fail to open
// (a permissions race, a node disappearing mid-scan) are skipped
// rather than aborting the whole scan.
func Scan() ([]Info, error) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("deviceinfo.Scan: %w", err)
	}

	sort.Strings(paths)

	infos := make([]Info, 0, len(paths))

	for _, path := range paths {
		info, err := readInfo(path)
		if err != nil {
			continue
		}

		infos = append(infos, info)
	}

	return infos, nil
}

func readInfo(path string) (Info, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer dev.Close()

	name, err := dev.Name()
	if err != nil {
		return Info{}, err
	}

	phys, err := dev.Phys()
	if err != nil {
		return Info{}, err
	}

	return Info{Path: path, Name: name, Phys: phys}, nil
}

// Find scans once and returns the first device whose name matches,
// disambiguating by phys when phys is non-empty.
func Find(name, phys string) (Info, bool, error) {
	infos, err := Scan()
	if err != nil {
		return Info{}, false, err
	}

	for _, info := range infos {
		if info.Name != name {
			continue
		}

		if phys != "" && info.Phys != phys {
			continue
		}

		return info, true, nil
	}

	return Info{}, false, nil
}

// Wait retries Find with a capped-linear backoff — the Nth attempt
// waits N*delay — until it succeeds or MaxWaitAttempts is exhausted,
// at which point it returns an error. A delay of 0 still performs at
// least one attempt.
func Wait(name, phys string, delay time.Duration) (Info, error) {
	for attempt := 1; attempt <= MaxWaitAttempts; attempt++ {
		info, ok, err := Find(name, phys)
		if err != nil {
			return Info{}, fmt.Errorf("deviceinfo.Wait: %w", err)
		}

		if ok {
			return info, nil
		}

		if attempt == MaxWaitAttempts {
			break
		}

		time.Sleep(delay * time.Duration(attempt))
	}

	return Info{}, fmt.Errorf("deviceinfo.Wait: no device named %q found after %d attempts", name, MaxWaitAttempts)
}
