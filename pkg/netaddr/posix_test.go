package netaddr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInet(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{"loopback skipped", "inet 127.0.0.1\ninet 192.168.1.42\n", "192.168.1.42", false},
		{"ifconfig", ifconfigLinux, "192.168.1.42", false},
		{"legacy net-tools", ifconfigLegacy, "172.20.0.5", false},
		{"ip addr skips 172.15", ipAddrOutput, "10.0.5.17", false},
		{"class b lower bound", "inet 172.16.0.1", "172.16.0.1", false},
		{"class b upper bound", "inet 172.31.255.254", "172.31.255.254", false},
		{"class b out of range", "inet 172.32.0.1\ninet 172.15.9.9", "", true},
		{"public only", "inet 8.8.4.4 netmask 255.255.255.0", "", true},
		{"inet6 ignored", "inet6 fe80::1 prefixlen 64", "", true},
		{"bad octet", "inet 192.168.1.300", "", true},
		{"only loopback", "inet 127.0.0.1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInet(tt.output)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoMatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPosixInterfaceScan(t *testing.T) {
	t.Run("ifconfig", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{
			"ifconfig": ifconfigLinux,
			"ip addr":  ipAddrOutput,
		}}
		got, err := (&PosixInterfaceScan{Runner: runner}).Discover(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "192.168.1.42", got)
		assert.Equal(t, []string{"ifconfig"}, runner.calls)
	})

	t.Run("ip addr when ifconfig is missing", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{"ip addr": ipAddrOutput}}
		got, err := (&PosixInterfaceScan{Runner: runner}).Discover(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "10.0.5.17", got)
		assert.Equal(t, []string{"ifconfig", "ip addr"}, runner.calls)
	})

	t.Run("ip addr when ifconfig fails", func(t *testing.T) {
		runner := &fakeRunner{
			outputs: map[string]string{"ip addr": ipAddrOutput},
			errs:    map[string]error{"ifconfig": errors.New("exit status 1")},
		}
		got, err := (&PosixInterfaceScan{Runner: runner}).Discover(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "10.0.5.17", got)
	})

	t.Run("both unavailable", func(t *testing.T) {
		_, err := (&PosixInterfaceScan{Runner: &fakeRunner{}}).Discover(context.Background())
		assert.ErrorIs(t, err, ErrCommandUnavailable)
	})

	t.Run("no private address", func(t *testing.T) {
		runner := &fakeRunner{outputs: map[string]string{"ifconfig": "inet 127.0.0.1"}}
		_, err := (&PosixInterfaceScan{Runner: runner}).Discover(context.Background())
		assert.ErrorIs(t, err, ErrNoMatch)
		assert.Equal(t, []string{"ifconfig"}, runner.calls)
	})
}
