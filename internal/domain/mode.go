package domain

import "fmt"

// Mode gates which decision branches of a session are active.
type Mode int

const (
	// ModeBuyOnly enables only the buy branches.
	ModeBuyOnly Mode = iota
	// ModeSellOnly enables only the sell branches.
	ModeSellOnly
	// ModeMixed enables both buy and sell branches.
	ModeMixed
)

const (
	modeStringBuyOnly  = "buy"
	modeStringSellOnly = "sell"
	modeStringMixed    = "mixed"
)

// ParseMode converts a config string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case modeStringBuyOnly:
		return ModeBuyOnly, nil
	case modeStringSellOnly:
		return ModeSellOnly, nil
	case modeStringMixed:
		return ModeMixed, nil
	default:
		return 0, fmt.Errorf("unknown trade mode: %q (want buy, sell or mixed)", s)
	}
}

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeBuyOnly:
		return modeStringBuyOnly
	case ModeSellOnly:
		return modeStringSellOnly
	case ModeMixed:
		return modeStringMixed
	default:
		return "unknown"
	}
}

// AllowsBuy reports whether buy branches are active in this mode.
func (m Mode) AllowsBuy() bool {
	return m == ModeBuyOnly || m == ModeMixed
}

// AllowsSell reports whether sell branches are active in this mode.
func (m Mode) AllowsSell() bool {
	return m == ModeSellOnly || m == ModeMixed
}
