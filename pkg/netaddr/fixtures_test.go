package netaddr

import (
	"context"
	"strings"
	"sync"
)

type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()

	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if out, ok := f.outputs[key]; ok {
		return []byte(out), nil
	}
	return nil, ErrCommandUnavailable
}

// English ipconfig, CRLF line endings as produced by Windows.
const ipconfigWirelessAndEthernet = "\r\n" +
	"Windows IP Configuration\r\n" +
	"\r\n" +
	"\r\n" +
	"Ethernet adapter Ethernet:\r\n" +
	"\r\n" +
	"   Connection-specific DNS Suffix  . : corp.example\r\n" +
	"   Link-local IPv6 Address . . . . . : fe80::1c2b:3a4d:5e6f:7a8b%12\r\n" +
	"   IPv4 Address. . . . . . . . . . . : 10.20.30.40\r\n" +
	"   Subnet Mask . . . . . . . . . . . : 255.255.255.0\r\n" +
	"   Default Gateway . . . . . . . . . : 10.20.30.1\r\n" +
	"\r\n" +
	"Wireless LAN adapter Wi-Fi:\r\n" +
	"\r\n" +
	"   Connection-specific DNS Suffix  . : home\r\n" +
	"   IPv4 Address. . . . . . . . . . . : 192.168.1.23(Preferred)\r\n" +
	"   Subnet Mask . . . . . . . . . . . : 255.255.255.0\r\n" +
	"   Default Gateway . . . . . . . . . : 192.168.1.1\r\n"

// The wireless adapter has no address; the VPN adapter that follows it
// must not be attributed to it.
const ipconfigDisconnectedWireless = `
Windows IP Configuration

Wireless LAN adapter Wi-Fi:

   Media State . . . . . . . . . . . : Media disconnected
   Connection-specific DNS Suffix  . :

PPP adapter Office VPN:

   IPv4 Address. . . . . . . . . . . : 192.168.56.1
   Subnet Mask . . . . . . . . . . . : 255.255.255.0

Ethernet adapter Ethernet:

   IPv4 Address. . . . . . . . . . . : 10.0.0.7
   Subnet Mask . . . . . . . . . . . : 255.255.255.0
`

const ipconfigOnlyPPP = `
Windows IP Configuration

PPP adapter Office VPN:

   Autoconfiguration IPv4 Address. . : 169.254.10.10
   IPv4 Address. . . . . . . . . . . : 10.8.0.2
`

const ipconfigGerman = `
Windows-IP-Konfiguration

Ethernet-Adapter Ethernet:

   IPv4-Adresse  . . . . . . . . . . : 10.1.1.5

Drahtlos-LAN-Adapter WLAN:

   IPv4-Adresse  . . . . . . . . . . : 192.168.178.20
`

const ifconfigLinux = `lo: flags=73<UP,LOOPBACK,RUNNING>  mtu 65536
        inet 127.0.0.1  netmask 255.0.0.0
        inet6 ::1  prefixlen 128  scopeid 0x10<host>

wlp2s0: flags=4163<UP,BROADCAST,RUNNING,MULTICAST>  mtu 1500
        inet 192.168.1.42  netmask 255.255.255.0  broadcast 192.168.1.255
        inet6 fe80::a00:27ff:fe4e:66a1  prefixlen 64  scopeid 0x20<link>
`

const ifconfigLegacy = `eth0      Link encap:Ethernet  HWaddr 08:00:27:4e:66:a1
          inet addr:172.20.0.5  Bcast:172.20.255.255  Mask:255.255.0.0

lo        Link encap:Local Loopback
          inet addr:127.0.0.1  Mask:255.0.0.0
`

const ipAddrOutput = `1: lo: <LOOPBACK,UP,LOWER_UP> mtu 65536 qdisc noqueue state UNKNOWN group default qlen 1000
    inet 127.0.0.1/8 scope host lo
2: docker0: <NO-CARRIER,BROADCAST,MULTICAST,UP> mtu 1500 qdisc noqueue state DOWN group default
    inet 172.15.0.1/16 brd 172.15.255.255 scope global docker0
3: enp3s0: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500 qdisc fq_codel state UP group default qlen 1000
    inet 10.0.5.17/24 brd 10.0.5.255 scope global dynamic enp3s0
`
