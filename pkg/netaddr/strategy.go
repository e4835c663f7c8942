package netaddr

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/fawa-io/lanshare/pkg/fwlog"
)

// Loopback is returned when no strategy finds a LAN address.
const Loopback = "127.0.0.1"

// Strategy is one way of finding the LAN address of this host.
type Strategy interface {
	Name() string
	Discover(ctx context.Context) (string, error)
}

// Resolver tries its strategies in order and returns the first usable
// address. It never fails.
type Resolver struct {
	strategies []Strategy
	timeout    time.Duration
}

// NewResolver builds a Resolver. A positive timeout bounds every strategy.
func NewResolver(timeout time.Duration, strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies, timeout: timeout}
}

func (r *Resolver) Resolve(ctx context.Context) string {
	for _, s := range r.strategies {
		addr, err := r.attempt(ctx, s)
		if err != nil {
			fwlog.Debugf("Address strategy %s failed: %v", s.Name(), err)
			continue
		}
		fwlog.Debugf("Address strategy %s found %s", s.Name(), addr)
		return addr
	}
	fwlog.Warnf("No address strategy succeeded, using %s", Loopback)
	return Loopback
}

func (r *Resolver) attempt(ctx context.Context, s Strategy) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	addr, err := s.Discover(ctx)
	if err != nil {
		return "", err
	}
	if !ValidHostAddress(addr) {
		return "", fmt.Errorf("%w: %q is not a usable IPv4 address", ErrNoMatch, addr)
	}
	return addr, nil
}

// ValidHostAddress reports whether s is a dotted-quad IPv4 literal other
// than 0.0.0.0.
func ValidHostAddress(s string) bool {
	if strings.Count(s, ".") != 3 || strings.Contains(s, ":") {
		return false
	}
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil && !ip.IsUnspecified()
}

// Options configures DefaultStrategies.
type Options struct {
	Runner       CommandRunner
	Labels       AdapterLabels
	ProbeTargets []string
	UseGateway   bool
}

// DefaultStrategies returns the chain for goos: the platform scan, the
// gateway scan when enabled, the socket probe, then loopback.
func DefaultStrategies(goos string, opts Options) []Strategy {
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{Timeout: 3 * time.Second}
	}

	var chain []Strategy
	if goos == "windows" {
		chain = append(chain, &WindowsAdapterScan{Runner: runner, Labels: opts.Labels})
	} else {
		chain = append(chain, &PosixInterfaceScan{Runner: runner})
	}
	if opts.UseGateway {
		chain = append(chain, &GatewaySubnetScan{})
	}
	chain = append(chain,
		&SocketProbe{Targets: opts.ProbeTargets},
		LoopbackFallback{},
	)
	return chain
}

// LoopbackFallback always yields 127.0.0.1.
type LoopbackFallback struct{}

func (LoopbackFallback) Name() string { return "loopback" }

func (LoopbackFallback) Discover(context.Context) (string, error) {
	return Loopback, nil
}
