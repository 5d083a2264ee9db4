package probe

import (
	"context"
	"time"
)

// HostFacts is the platform identity reported by a Source. Empty fields are
// replaced with placeholders by the probe.
type HostFacts struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	KernelArch      string
	BootTime        time.Time
}

type User struct {
	Name     string
	Terminal string
	Host     string
	Started  time.Time
}

type Interface struct {
	Name string
	// Addrs are CIDR strings such as "192.168.1.10/24" or "fe80::1/64".
	Addrs []string
}

type Endpoint struct {
	IP   string
	Port uint32
}

type Connection struct {
	Local  Endpoint
	Remote Endpoint
	Status string
	PID    int32
}

// Process is a handle to a live process. Every accessor may fail when the
// process exits or access is denied.
type Process interface {
	PID() int32
	Name(ctx context.Context) (string, error)
	Username(ctx context.Context) (string, error)
	RSS(ctx context.Context) (uint64, error)
}

// Source enumerates OS state for the probes.
type Source interface {
	Host(ctx context.Context) (HostFacts, error)
	Users(ctx context.Context) ([]User, error)
	Interfaces(ctx context.Context) ([]Interface, error)
	Connections(ctx context.Context) ([]Connection, error)
	Processes(ctx context.Context) ([]Process, error)
}
