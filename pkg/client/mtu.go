package client

import (
	"fmt"
	"net"

	"github.com/Wa4h1h/tftp-client/pkg/types"
)

// headerOverhead is the size of the IPv4, UDP and TFTP DATA headers.
const headerOverhead = 20 + 8 + types.HeaderSize

// MaxBlockSize is the largest DATA payload that fits the smallest MTU among
// the interfaces that are up.
func MaxBlockSize() (int, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return 0, fmt.Errorf("error while listing network interfaces: %w", err)
	}

	return blockSizeLimit(ifaces), nil
}

func blockSizeLimit(ifaces []net.Interface) int {
	smallest := 0

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.MTU <= 0 {
			continue
		}

		if smallest == 0 || iface.MTU < smallest {
			smallest = iface.MTU
		}
	}

	if smallest == 0 {
		return types.MaxBlockSize
	}

	return min(max(smallest-headerOverhead, types.MinBlockSize), types.MaxBlockSize)
}

// clampBlockSize limits requested to limit and reports whether it had to.
func clampBlockSize(requested, limit int) (int, bool) {
	if requested > limit {
		return limit, true
	}

	return requested, false
}
