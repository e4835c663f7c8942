package netaddr

import (
	"context"
	"fmt"
	"regexp"

	"github.com/fawa-io/lanshare/pkg/fwlog"
)

// inet lines of ifconfig ("inet 10.0.0.2", "inet addr:10.0.0.2") and ip addr
// ("inet 10.0.0.2/24").
var inetPattern = regexp.MustCompile(`\binet\s+(?:addr:)?(\d{1,3}(?:\.\d{1,3}){3})\b`)

// PosixInterfaceScan reads ifconfig output, or ip addr output when ifconfig
// is missing or fails.
type PosixInterfaceScan struct {
	Runner CommandRunner
}

func (s *PosixInterfaceScan) Name() string { return "posix-interface-scan" }

func (s *PosixInterfaceScan) Discover(ctx context.Context) (string, error) {
	out, err := s.Runner.Run(ctx, "ifconfig")
	if err != nil {
		fwlog.Debugf("ifconfig failed, trying ip addr: %v", err)
		out, err = s.Runner.Run(ctx, "ip", "addr")
		if err != nil {
			return "", err
		}
	}
	return ParseInet(string(out))
}

// ParseInet returns the first private, non-loopback address of an inet
// entry in output.
func ParseInet(output string) (string, error) {
	for _, m := range inetPattern.FindAllStringSubmatch(output, -1) {
		ip := parseIPv4(m[1])
		if ip == nil || ip.IsLoopback() || !posixPrivate(ip) {
			continue
		}
		return ip.String(), nil
	}
	return "", fmt.Errorf("inet scan: %w", ErrNoMatch)
}
