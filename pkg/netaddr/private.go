package netaddr

import (
	"net"
	"regexp"
)

var ipv4Pattern = regexp.MustCompile(`\b(\d{1,3}(?:\.\d{1,3}){3})\b`)

var (
	class10  = mustCIDR("10.0.0.0/8")
	class172 = mustCIDR("172.16.0.0/12")
	class192 = mustCIDR("192.168.0.0/16")
)

func mustCIDR(s string) *net.IPNet {
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return n
}

func parseIPv4(s string) net.IP {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil
	}
	return ip.To4()
}

// windowsPrivate is what ipconfig scanning accepts: 192.168/16 and 10/8.
func windowsPrivate(ip net.IP) bool {
	return class192.Contains(ip) || class10.Contains(ip)
}

// posixPrivate additionally accepts 172.16/12.
func posixPrivate(ip net.IP) bool {
	return windowsPrivate(ip) || class172.Contains(ip)
}
