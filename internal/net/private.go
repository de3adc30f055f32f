// Package net provides networking utilities for Zeku.
package net

import (
	"net"
	"net/url"
	"strings"
)

// IsPrivateNetwork returns true if host is a loopback, link-local or private address.
// host may be a bare host, host:port, or a URL. Names other than localhost are
// resolved.
func IsPrivateNetwork(host string) bool {
	h := hostOnly(host)
	if h == "" {
		return false
	}
	if strings.EqualFold(h, "localhost") {
		return true
	}

	if ip := net.ParseIP(h); ip != nil {
		return IsPrivateIP(ip)
	}

	ips, err := net.LookupIP(h)
	if err != nil || len(ips) == 0 {
		return false
	}
	for _, ip := range ips {
		if !IsPrivateIP(ip) {
			return false
		}
	}
	return true
}

// IsPrivateIP checks if ip is in a loopback, link-local or private range.
func IsPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

// IsUnspecified reports whether a listen address binds every interface.
func IsUnspecified(addr string) bool {
	h := hostOnly(addr)
	if h == "" {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsUnspecified()
}

func hostOnly(host string) string {
	host = strings.TrimSpace(host)
	if strings.Contains(host, "://") {
		if u, err := url.Parse(host); err == nil {
			return u.Hostname()
		}
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}
