package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// SystemSource reads the local machine through gopsutil.
type SystemSource struct{}

func NewSystemSource() *SystemSource { return &SystemSource{} }

func (SystemSource) Host(ctx context.Context) (HostFacts, error) {
	info, err := host.InfoWithContext(ctx)
	if info == nil {
		if err == nil {
			err = fmt.Errorf("no host information returned")
		}
		return HostFacts{}, fmt.Errorf("read host info: %w", err)
	}

	facts := HostFacts{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
		KernelArch:      info.KernelArch,
	}
	if info.BootTime > 0 {
		facts.BootTime = time.Unix(int64(info.BootTime), 0)
	}
	// gopsutil returns partial info together with an error when a single
	// field cannot be read; keep what we have.
	if err != nil {
		return facts, fmt.Errorf("read host info: %w", err)
	}
	return facts, nil
}

func (SystemSource) Users(ctx context.Context) ([]User, error) {
	stats, err := host.UsersWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]User, 0, len(stats))
	for _, u := range stats {
		users = append(users, User{
			Name:     u.User,
			Terminal: u.Terminal,
			Host:     u.Host,
			Started:  sessionStart(u.Started),
		})
	}
	return users, nil
}

// sessionStart converts a login time in Unix seconds. Zero means the
// terminal did not record one.
func sessionStart(sec int) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(sec), 0)
}

func (SystemSource) Interfaces(ctx context.Context) ([]Interface, error) {
	stats, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	ifaces := make([]Interface, 0, len(stats))
	for _, st := range stats {
		iface := Interface{Name: st.Name}
		for _, a := range st.Addrs {
			iface.Addrs = append(iface.Addrs, a.Addr)
		}
		ifaces = append(ifaces, iface)
	}
	return ifaces, nil
}

func (SystemSource) Connections(ctx context.Context) ([]Connection, error) {
	stats, err := psnet.ConnectionsWithContext(ctx, "inet")
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	conns := make([]Connection, 0, len(stats))
	for _, c := range stats {
		conns = append(conns, Connection{
			Local:  endpoint(c.Laddr),
			Remote: endpoint(c.Raddr),
			Status: c.Status,
			PID:    c.Pid,
		})
	}
	return conns, nil
}

// endpoint maps a gopsutil address to an Endpoint. Sockets without a peer are
// reported as 0.0.0.0:0 (or [::]:0) on Linux; port 0 means absent.
func endpoint(a psnet.Addr) Endpoint {
	if a.Port == 0 {
		return Endpoint{}
	}
	return Endpoint{IP: a.IP, Port: a.Port}
}

func (SystemSource) Processes(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		out = append(out, systemProcess{p: p})
	}
	return out, nil
}

type systemProcess struct {
	p *process.Process
}

func (s systemProcess) PID() int32 { return s.p.Pid }

func (s systemProcess) Name(ctx context.Context) (string, error) {
	return s.p.NameWithContext(ctx)
}

func (s systemProcess) Username(ctx context.Context) (string, error) {
	return s.p.UsernameWithContext(ctx)
}

func (s systemProcess) RSS(ctx context.Context) (uint64, error) {
	mem, err := s.p.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, err
	}
	if mem == nil {
		return 0, fmt.Errorf("no memory info for pid %d", s.p.Pid)
	}
	return mem.RSS, nil
}
