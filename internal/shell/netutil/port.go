// Package netutil holds host networking helpers.
package netutil

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// ErrNoFreePort is returned when every port of a range is taken.
var ErrNoFreePort = errors.New("no free port")

// FreePort returns the first port in [from, to) that can be bound on all
// interfaces.
func FreePort(from, to int) (int, error) {
	for port := from; port < to; port++ {
		l, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
		if err != nil {
			continue
		}
		l.Close()
		return port, nil
	}
	return 0, fmt.Errorf("%w in range [%d, %d)", ErrNoFreePort, from, to)
}
