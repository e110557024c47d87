package xhttp

import (
	"net"
	"net/http"
	"strings"
)

// GetRequestIP returns the address of the connection peer. X-Forwarded-For
// is client controlled and is only read through GetForwardedIP.
func GetRequestIP(r *http.Request) string {
	return stripPort(r.RemoteAddr)
}

// GetForwardedIP returns the client address recorded by the nearest
// trustedHops proxies, counting X-Forwarded-For entries from the right.
// With no trusted proxies or no header it returns the connection peer.
func GetForwardedIP(r *http.Request, trustedHops int) string {
	if trustedHops <= 0 {
		return GetRequestIP(r)
	}

	var hops []string
	for _, v := range r.Header.Values(XForwardedFor) {
		for hop := range strings.SplitSeq(v, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	if len(hops) == 0 {
		return GetRequestIP(r)
	}

	return stripPort(hops[max(len(hops)-trustedHops, 0)])
}

func stripPort(addr string) string {
	if ip, _, err := net.SplitHostPort(addr); err == nil {
		return ip
	}
	return addr
}
