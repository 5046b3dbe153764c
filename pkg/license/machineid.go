package license

import (
	"github.com/denisbrodbeck/machineid"
)

// MachineID fetches a stable identifier for this host. It both keys the
// license check and tags saved brain state so snapshots can be traced back
// to the instance that trained them.
func MachineID() (string, error) {
	return machineid.ID()
}
