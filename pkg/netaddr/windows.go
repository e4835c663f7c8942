package netaddr

import (
	"context"
	"fmt"
	"strings"
)

// AdapterLabels names the ipconfig section headers and the IPv4 line label.
// The defaults match English Windows builds; localized systems need their
// own strings.
type AdapterLabels struct {
	Wireless []string
	Ethernet []string
	IPv4     string
}

// DefaultAdapterLabels are the English ipconfig labels.
var DefaultAdapterLabels = AdapterLabels{
	Wireless: []string{"Wireless LAN adapter"},
	Ethernet: []string{"Ethernet adapter"},
	IPv4:     "IPv4 Address",
}

func (l AdapterLabels) withDefaults() AdapterLabels {
	if len(l.Wireless) == 0 {
		l.Wireless = DefaultAdapterLabels.Wireless
	}
	if len(l.Ethernet) == 0 {
		l.Ethernet = DefaultAdapterLabels.Ethernet
	}
	if l.IPv4 == "" {
		l.IPv4 = DefaultAdapterLabels.IPv4
	}
	return l
}

// WindowsAdapterScan reads ipconfig output, preferring wireless adapters
// over wired ones.
type WindowsAdapterScan struct {
	Runner CommandRunner
	Labels AdapterLabels
}

func (s *WindowsAdapterScan) Name() string { return "windows-adapter-scan" }

func (s *WindowsAdapterScan) Discover(ctx context.Context) (string, error) {
	out, err := s.Runner.Run(ctx, "ipconfig")
	if err != nil {
		return "", err
	}
	return ParseIpconfig(string(out), s.Labels)
}

type adapterSection struct {
	header string
	lines  []string
}

// splitSections cuts ipconfig output at every non-indented line. Each
// adapter block becomes one section so matches cannot cross adapters.
func splitSections(output string) []adapterSection {
	var sections []adapterSection
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			sections = append(sections, adapterSection{header: line})
			continue
		}
		if len(sections) == 0 {
			sections = append(sections, adapterSection{})
		}
		last := &sections[len(sections)-1]
		last.lines = append(last.lines, line)
	}
	return sections
}

// ParseIpconfig returns the first private IPv4 address of a wireless
// adapter, else of an ethernet adapter, else of any adapter.
func ParseIpconfig(output string, labels AdapterLabels) (string, error) {
	labels = labels.withDefaults()
	sections := splitSections(output)

	for _, group := range [][]string{labels.Wireless, labels.Ethernet} {
		for _, sec := range sections {
			if !headerMatches(sec.header, group) {
				continue
			}
			if addr, ok := firstIPv4Line(sec.lines, labels.IPv4); ok {
				return addr, nil
			}
		}
	}

	for _, sec := range sections {
		if addr, ok := firstIPv4Line(sec.lines, labels.IPv4); ok {
			return addr, nil
		}
	}
	return "", fmt.Errorf("ipconfig: %w", ErrNoMatch)
}

func headerMatches(header string, labels []string) bool {
	h := strings.ToLower(header)
	for _, l := range labels {
		if l != "" && strings.Contains(h, strings.ToLower(l)) {
			return true
		}
	}
	return false
}

// firstIPv4Line finds "<label> . . . : a.b.c.d" lines and returns the first
// address in 192.168/16 or 10/8.
func firstIPv4Line(lines []string, label string) (string, bool) {
	label = strings.ToLower(label)
	for _, line := range lines {
		lower := strings.ToLower(line)
		i := strings.Index(lower, label)
		if i < 0 {
			continue
		}
		rest := line[i+len(label):]
		colon := strings.Index(rest, ":")
		if colon < 0 {
			continue
		}
		m := ipv4Pattern.FindStringSubmatch(rest[colon+1:])
		if m == nil {
			continue
		}
		if ip := parseIPv4(m[1]); ip != nil && windowsPrivate(ip) {
			return ip.String(), true
		}
	}
	return "", false
}
