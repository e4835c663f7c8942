package netaddr

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	net.Conn
	local  net.Addr
	closed *int
}

func (c fakeConn) LocalAddr() net.Addr { return c.local }

func (c fakeConn) Close() error {
	*c.closed++
	return nil
}

func dialReturning(ip string, closed *int) DialFunc {
	return func(_ context.Context, network, _ string) (net.Conn, error) {
		if network != "udp4" {
			return nil, errors.New("unexpected network " + network)
		}
		return fakeConn{local: &net.UDPAddr{IP: net.ParseIP(ip), Port: 50000}, closed: closed}, nil
	}
}

func failingDial(_ context.Context, _, address string) (net.Conn, error) {
	return nil, &net.OpError{Op: "dial", Net: "udp4", Err: errors.New("network is unreachable " + address)}
}

func TestSocketProbe(t *testing.T) {
	var closed int
	p := &SocketProbe{Targets: []string{"8.8.8.8:1"}, Dial: dialReturning("192.168.7.9", &closed)}

	got, err := p.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "192.168.7.9", got)
	assert.Equal(t, 1, closed)
}

func TestSocketProbe_SecondTarget(t *testing.T) {
	var closed int
	calls := 0
	p := &SocketProbe{
		Targets: []string{"8.8.8.8:1", "192.168.1.1:1"},
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			calls++
			if address == "8.8.8.8:1" {
				return failingDial(ctx, network, address)
			}
			return dialReturning("10.0.0.3", &closed)(ctx, network, address)
		},
	}

	got, err := p.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.3", got)
	assert.Equal(t, 2, calls)
}

func TestSocketProbe_UnspecifiedIsClosedAndRejected(t *testing.T) {
	var closed int
	p := &SocketProbe{Targets: []string{"8.8.8.8:1"}, Dial: dialReturning("0.0.0.0", &closed)}

	_, err := p.Discover(context.Background())
	assert.ErrorIs(t, err, ErrSocketUnreachable)
	assert.Equal(t, 1, closed)
}

func TestSocketProbe_Unreachable(t *testing.T) {
	p := &SocketProbe{Targets: []string{"8.8.8.8:1"}, Dial: failingDial}
	_, err := p.Discover(context.Background())
	assert.ErrorIs(t, err, ErrSocketUnreachable)

	_, err = (&SocketProbe{}).Discover(context.Background())
	assert.ErrorIs(t, err, ErrSocketUnreachable)
}
