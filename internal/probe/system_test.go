package probe

import (
	"testing"
	"time"

	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/stretchr/testify/assert"
)

func TestEndpoint_PortZeroIsAbsent(t *testing.T) {
	tests := []struct {
		name string
		addr psnet.Addr
		want Endpoint
	}{
		{"unspecified ipv4 peer", psnet.Addr{IP: "0.0.0.0", Port: 0}, Endpoint{}},
		{"unspecified ipv6 peer", psnet.Addr{IP: "::", Port: 0}, Endpoint{}},
		{"empty", psnet.Addr{}, Endpoint{}},
		{"connected peer", psnet.Addr{IP: "10.0.0.7", Port: 443}, Endpoint{IP: "10.0.0.7", Port: 443}},
		{"wildcard listener", psnet.Addr{IP: "0.0.0.0", Port: 22}, Endpoint{IP: "0.0.0.0", Port: 22}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := endpoint(tt.addr)
			assert.Equal(t, tt.want, got)
			if tt.want.IP == "" {
				assert.Empty(t, formatEndpoint(got))
			}
		})
	}
}

func TestSessionStart(t *testing.T) {
	assert.True(t, sessionStart(0).IsZero())
	assert.True(t, sessionStart(-1).IsZero())
	assert.Equal(t, time.Unix(1760000000, 0), sessionStart(1760000000))
}
