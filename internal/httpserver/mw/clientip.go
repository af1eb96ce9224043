package mw

import (
	"net/http"
	"net/netip"
	"strings"
)

// proxyHeaders are consulted in order when the server sits behind a
// trusted reverse proxy or tunnel.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// clientAddr resolves the address a request came from. Proxy headers are
// only read when trustProxy is set, otherwise any client could spoof them.
func clientAddr(r *http.Request, trustProxy bool) netip.Addr {
	if trustProxy {
		for _, h := range proxyHeaders {
			// X-Forwarded-For lists hops left to right, the client first.
			first, _, _ := strings.Cut(r.Header.Get(h), ",")
			if a, ok := parseAddr(first); ok {
				return a
			}
		}
	}
	a, _ := parseAddr(r.RemoteAddr)
	return a
}

// clientIP is clientAddr as a string, "unknown" when nothing parsed.
func clientIP(r *http.Request, trustProxy bool) string {
	if a := clientAddr(r, trustProxy); a.IsValid() {
		return a.String()
	}
	return "unknown"
}

// parseAddr accepts "ip", "ip:port", "[v6]" and "[v6]:port".
func parseAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap(), true
	}
	a, err := netip.ParseAddr(strings.Trim(s, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return a.Unmap(), true
}

// cidrList is an allow-list of prefixes. A bare IP is a single-address prefix.
type cidrList []netip.Prefix

// parseCIDRs returns the prefixes in list and the entries it could not read.
func parseCIDRs(list []string) (cidrList, []string) {
	var (
		out     cidrList
		invalid []string
	)
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, ok := parseAddr(s); ok {
			out = append(out, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		invalid = append(invalid, s)
	}
	return out, invalid
}

func (c cidrList) contains(a netip.Addr) bool {
	if !a.IsValid() {
		return false
	}
	for _, p := range c {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
