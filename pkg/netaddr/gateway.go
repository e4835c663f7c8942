package netaddr

import (
	"context"
	"fmt"
	"net"

	"github.com/jackpal/gateway"
)

// GatewaySubnetScan picks the address of the interface whose subnet holds
// the default gateway. The lookup funcs default to the real system.
type GatewaySubnetScan struct {
	DiscoverGateway func() (net.IP, error)
	InterfaceNets   func() ([]*net.IPNet, error)
}

func (s *GatewaySubnetScan) Name() string { return "gateway-subnet-scan" }

func (s *GatewaySubnetScan) Discover(ctx context.Context) (string, error) {
	discover := s.DiscoverGateway
	if discover == nil {
		discover = gateway.DiscoverGateway
	}
	nets := s.InterfaceNets
	if nets == nil {
		nets = upInterfaceNets
	}

	type result struct {
		ip  net.IP
		err error
	}
	// Buffered so the lookup can finish and exit after ctx gives up on it.
	ch := make(chan result, 1)
	go func() {
		ip, err := discover()
		ch <- result{ip, err}
	}()

	var gw net.IP
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("gateway discovery: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("failed to discover gateway: %w", r.err)
		}
		gw = r.ip
	}

	ipnets, err := nets()
	if err != nil {
		return "", fmt.Errorf("failed to retrieve network interfaces: %w", err)
	}
	return addrForGateway(gw, ipnets)
}

func addrForGateway(gw net.IP, ipnets []*net.IPNet) (string, error) {
	for _, n := range ipnets {
		ipv4 := n.IP.To4()
		if ipv4 == nil || !ipv4.IsGlobalUnicast() || ipv4.IsLoopback() {
			continue
		}
		if n.Contains(gw) {
			return ipv4.String(), nil
		}
	}
	return "", fmt.Errorf("%w: no local IPv4 address in the subnet of gateway %s", ErrNoMatch, gw)
}

func upInterfaceNets() ([]*net.IPNet, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var out []*net.IPNet
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok {
				out = append(out, ipnet)
			}
		}
	}
	return out, nil
}
