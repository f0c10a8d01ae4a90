package dispatch

import (
	"fmt"
	"log"
	"os/exec"
	"strings"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

// Navigator performs one global navigation action on the device.
type Navigator interface {
	Navigate(kind model.ActionKind) error
}

// Android key codes for the global navigation actions.
const (
	keycodeBack      = "KEYCODE_BACK"
	keycodeHome      = "KEYCODE_HOME"
	keycodeAppSwitch = "KEYCODE_APP_SWITCH"
)

func keycodeFor(kind model.ActionKind) (string, error) {
	switch kind {
	case model.ActionBack:
		return keycodeBack, nil
	case model.ActionHome:
		return keycodeHome, nil
	case model.ActionRecents:
		return keycodeAppSwitch, nil
	}
	return "", fmt.Errorf("unknown action kind %q", kind)
}

// AdbNavigator injects key events through the adb shell.
type AdbNavigator struct {
	AdbPath string // defaults to "adb" on PATH
	Serial  string // optional device serial for multi-device hosts
}

// Navigate runs `adb [-s serial] shell input keyevent <code>`.
func (n *AdbNavigator) Navigate(kind model.ActionKind) error {
	code, err := keycodeFor(kind)
	if err != nil {
		return err
	}

	adb := n.AdbPath
	if adb == "" {
		adb = "adb"
	}
	args := make([]string, 0, 6)
	if n.Serial != "" {
		args = append(args, "-s", n.Serial)
	}
	args = append(args, "shell", "input", "keyevent", code)

	out, err := exec.Command(adb, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("adb keyevent %s: %w (%s)", code, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// NopNavigator logs the action instead of performing it. Used in dry-run
// mode to tune heuristics against live traffic without touching the device.
type NopNavigator struct{}

func (NopNavigator) Navigate(kind model.ActionKind) error {
	log.Printf("dispatch: dry-run, would press %s", kind)
	return nil
}
