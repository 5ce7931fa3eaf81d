package clips

import (
	"fmt"
	"strings"
)

// Mode selects where clips are loaded from.
type Mode int

const (
	// ModeBundled loads clips from the sounds shipped with the host.
	ModeBundled Mode = iota
	// ModeCustom loads clips from the user data directory.
	ModeCustom
	// ModeDisabled loads nothing.
	ModeDisabled
)

// String returns the text form of the mode.
func (m Mode) String() string {
	switch m {
	case ModeBundled:
		return "bundled"
	case ModeCustom:
		return "custom"
	case ModeDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bundled", "":
		return ModeBundled, nil
	case "custom":
		return ModeCustom, nil
	case "disabled":
		return ModeDisabled, nil
	}
	return ModeBundled, fmt.Errorf("invalid mode %q: must be one of bundled, custom, disabled", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	switch m {
	case ModeBundled, ModeCustom, ModeDisabled:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("invalid mode %d", int(m))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
