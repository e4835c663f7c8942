package netaddr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// DialFunc matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// SocketProbe "connects" a UDP socket to each target in turn and reads the
// local address the OS picked for the route. Nothing is sent.
type SocketProbe struct {
	Targets []string
	Dial    DialFunc
}

func (p *SocketProbe) Name() string { return "socket-probe" }

func (p *SocketProbe) Discover(ctx context.Context) (string, error) {
	dial := p.Dial
	if dial == nil {
		var d net.Dialer
		dial = d.DialContext
	}
	if len(p.Targets) == 0 {
		return "", fmt.Errorf("%w: no probe targets", ErrSocketUnreachable)
	}

	var errs []error
	for _, target := range p.Targets {
		addr, err := probe(ctx, dial, target)
		if err == nil {
			return addr, nil
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf("%w: %w", ErrSocketUnreachable, errors.Join(errs...))
}

func probe(ctx context.Context, dial DialFunc, target string) (string, error) {
	conn, err := dial(ctx, "udp4", target)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	udp, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || udp.IP.To4() == nil || udp.IP.IsUnspecified() {
		return "", fmt.Errorf("no usable local address towards %s", target)
	}
	return udp.IP.To4().String(), nil
}
