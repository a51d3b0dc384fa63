package params

import (
	"fmt"
	"strings"
)

// Mode is the operator's workflow phase.
type Mode int

const (
	ModeCollect Mode = iota
	ModeTrain
	ModeRun
)

func (m Mode) String() string {
	switch m {
	case ModeCollect:
		return "Collect"
	case ModeTrain:
		return "Train"
	case ModeRun:
		return "Run"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts a menu name in any case.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "collect":
		return ModeCollect, nil
	case "train":
		return ModeTrain, nil
	case "run":
		return ModeRun, nil
	default:
		return ModeCollect, fmt.Errorf("unknown mode: %q", name)
	}
}

func modeNames() []string {
	return []string{ModeCollect.String(), ModeTrain.String(), ModeRun.String()}
}
