package main

import (
	"fmt"
	"os"
	"strings"
)

// triState is the auto|on|off value shared by --color and --ui.
type triState string

const (
	stateAuto triState = "auto"
	stateOn   triState = "on"
	stateOff  triState = "off"
)

func readTriState(flag, value string) (triState, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return stateAuto, nil
	case "on", "always":
		return stateOn, nil
	case "off", "never":
		return stateOff, nil
	default:
		return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
}

func readColorMode(value string) (triState, error) { return readTriState("color", value) }

func readUIMode(value string) (triState, error) { return readTriState("ui", value) }

// resolve turns auto into a terminal check on f.
func (s triState) resolve(f *os.File) bool {
	switch s {
	case stateOn:
		return true
	case stateOff:
		return false
	default:
		return isTerminal(f)
	}
}

func shouldColor(mode triState) bool { return mode.resolve(os.Stdout) }

func shouldUseTUI(mode triState) bool { return mode.resolve(os.Stdout) }
