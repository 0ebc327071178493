package utils

import "net"

// ParseHostNoPort returns the host part (no port) from strings like "host:port", "[v6]:port", or "host".
func ParseHostNoPort(s string) string {
	if s == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return s
}
