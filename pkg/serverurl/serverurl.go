// Package serverurl turns the resolved host address into the URL peers
// open or scan.
package serverurl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyAddress = errors.New("address must not be empty")
	ErrInvalidPort  = errors.New("port must be between 1 and 65535")
)

// Build returns http://address:port/.
func Build(address string, port int) (string, error) {
	if strings.TrimSpace(address) == "" {
		return "", ErrEmptyAddress
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	return fmt.Sprintf("http://%s:%d/", address, port), nil
}
