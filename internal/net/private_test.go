package net_test

import (
	"testing"

	znet "zeku/internal/net"
)

func TestIsPrivateNetwork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want bool
	}{
		{"127.0.0.1:8585", true},
		{"localhost", true},
		{"http://192.168.1.20:8080/api", true},
		{"10.1.2.3", true},
		{"172.20.0.1", true},
		{"[::1]:8585", true},
		{"fe80::1", true},
		{"8.8.8.8:53", false},
		{"172.32.0.1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := znet.IsPrivateNetwork(tt.host); got != tt.want {
			t.Errorf("IsPrivateNetwork(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestIsUnspecified(t *testing.T) {
	t.Parallel()

	for _, addr := range []string{":8585", "0.0.0.0:8585", "[::]:80"} {
		if !znet.IsUnspecified(addr) {
			t.Errorf("IsUnspecified(%q) = false", addr)
		}
	}
	if znet.IsUnspecified("127.0.0.1:8585") {
		t.Error("IsUnspecified(127.0.0.1:8585) = true")
	}
}
