// Package privacy keeps personal data out of logs, spans and audit events.
package privacy

import "net/netip"

// AnonymizeIP zeroes the host part of a client address: IPv4 keeps its /24,
// IPv6 its /48. Empty input yields "unknown" and garbage yields "invalid".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap().WithZone("")

	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
