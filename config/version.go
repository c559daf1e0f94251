package config

import "github.com/pkg/errors"

// PlasmaVersion selects the engine generation the pages are built for.
type PlasmaVersion int

const (
	PVUnknown PlasmaVersion = iota
	PVPrime                 // ages beyond Uru ABM
	PVPots                  // Path of the Shell / Complete Chronicles
	PVMoul                  // Myst Online: Uru Live
)

func (v PlasmaVersion) String() string {
	switch v {
	case PVPrime:
		return "prime"
	case PVPots:
		return "pots"
	case PVMoul:
		return "moul"
	}
	return "unknown"
}

func ParseVersion(s string) (PlasmaVersion, error) {
	switch s {
	case "prime":
		return PVPrime, nil
	case "pots":
		return PVPots, nil
	case "moul":
		return PVMoul, nil
	}
	return PVUnknown, errors.Errorf("unknown plasma version %q (prime, pots, moul)", s)
}
