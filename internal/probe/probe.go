// Package probe gathers best-effort host, network and process evidence. Every
// probe returns a Result; none of them return errors or panic past their
// boundary, so one failing probe never stops the others.
package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/K0NGR3SS/triagekit/internal/models"
	"github.com/K0NGR3SS/triagekit/internal/syscmd"
	"github.com/pterm/pterm"
)

const (
	DefaultConnectionLimit = 200
	DefaultProcessLimit    = 30

	placeholder = "unknown"
)

type Prober struct {
	Source   Source
	Commands syscmd.Source
	Logger   *pterm.Logger
}

func New(src Source, cmds syscmd.Source, logger *pterm.Logger) *Prober {
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled).WithWriter(io.Discard)
	}
	return &Prober{Source: src, Commands: cmds, Logger: logger}
}

// guard turns a panic inside a data source into a degraded result.
func guard[T any](name string, fallback T, out *Result[T]) {
	if r := recover(); r != nil {
		*out = Degraded(fallback, fmt.Sprintf("%s probe panicked: %v", name, r))
	}
}

// HostIdentity reports platform facts. Unavailable fields are filled with
// placeholders; the result is degraded but still complete.
func (p *Prober) HostIdentity(ctx context.Context) (res Result[models.HostInfo]) {
	info := models.HostInfo{
		System:  runtime.GOOS,
		Machine: runtime.GOARCH,
		Users:   []models.UserSession{},
		Runtime: runtime.Version(),
	}
	defer guard("host", withHostname(info), &res)

	var reasons []string
	facts, err := p.Source.Host(ctx)
	if err != nil {
		reasons = append(reasons, err.Error())
	}

	info.Hostname = facts.Hostname
	if facts.OS != "" {
		info.System = facts.OS
	}
	if facts.KernelArch != "" {
		info.Machine = facts.KernelArch
	}
	info.Release = orPlaceholder(facts.KernelVersion)
	info.Version = orPlaceholder(joinNonEmpty(" ", facts.Platform, facts.PlatformVersion))
	info.Platform = joinNonEmpty("-", info.System, facts.KernelVersion, info.Machine)
	if !facts.BootTime.IsZero() {
		info.BootTime = facts.BootTime.Format(time.RFC3339)
	}
	info = withHostname(info)

	users, err := p.Source.Users(ctx)
	if err != nil {
		reasons = append(reasons, err.Error())
	}
	for _, u := range users {
		session := models.UserSession{User: u.Name, Terminal: u.Terminal, Host: u.Host}
		if !u.Started.IsZero() {
			session.Started = u.Started.Format(time.RFC3339)
		}
		info.Users = append(info.Users, session)
	}

	if len(reasons) > 0 {
		return Degraded(info, joinNonEmpty("; ", reasons...))
	}
	return Ok(info)
}

func withHostname(info models.HostInfo) models.HostInfo {
	if info.Hostname != "" {
		return info
	}
	if name, err := os.Hostname(); err == nil && name != "" {
		info.Hostname = name
		return info
	}
	info.Hostname = placeholder
	return info
}

// NetworkInterfaces lists every IPv4 address bound to every interface. IPv6
// and link-layer addresses are left out.
func (p *Prober) NetworkInterfaces(ctx context.Context) (res Result[[]models.NetworkInterfaceRecord]) {
	records := []models.NetworkInterfaceRecord{}
	defer guard("interfaces", records, &res)

	ifaces, err := p.Source.Interfaces(ctx)
	if err != nil {
		return Degraded(records, err.Error())
	}
	for _, iface := range ifaces {
		for _, addr := range iface.Addrs {
			rec, ok := ipv4Record(iface.Name, addr)
			if ok {
				records = append(records, rec)
			}
		}
	}
	return Ok(records)
}

func ipv4Record(name, addr string) (models.NetworkInterfaceRecord, bool) {
	prefix, err := netip.ParsePrefix(addr)
	if err != nil {
		// some platforms report bare addresses
		ip, perr := netip.ParseAddr(addr)
		if perr != nil {
			return models.NetworkInterfaceRecord{}, false
		}
		prefix = netip.PrefixFrom(ip, ip.BitLen())
	}
	bits := prefix.Bits()
	if prefix.Addr().Is4In6() {
		bits -= 96
	}
	ip := prefix.Addr().Unmap()
	if !ip.Is4() || bits < 0 {
		return models.NetworkInterfaceRecord{}, false
	}
	return models.NetworkInterfaceRecord{
		InterfaceName: name,
		IPAddress:     ip.String(),
		Netmask:       net.IP(net.CIDRMask(bits, 32)).String(),
	}, true
}

func (p *Prober) RoutingTable(ctx context.Context) (res Result[string]) {
	defer guard("routes", "ERROR: route probe failed", &res)

	out := p.Commands.Routes(ctx)
	if !out.OK {
		return Degraded(out.Text, out.Text)
	}
	return Ok(out.Text)
}

func (p *Prober) DNSConfiguration(ctx context.Context) (res Result[string]) {
	defer guard("dns", "ERROR: dns probe failed", &res)

	out := p.Commands.DNS(ctx)
	if !out.OK {
		return Degraded(out.Text, out.Text)
	}
	return Ok(out.Text)
}

// ConnectionsSnapshot returns at most limit connections in enumeration order.
// If the table cannot be read at all, the result holds a single record whose
// Error field explains why, so "no connections" stays distinguishable from
// "could not enumerate". A limit <= 0 disables the cap.
func (p *Prober) ConnectionsSnapshot(ctx context.Context, limit int) (res Result[[]models.ConnectionRecord]) {
	defer func() {
		if r := recover(); r != nil {
			reason := fmt.Sprintf("connections probe panicked: %v", r)
			res = Degraded([]models.ConnectionRecord{{Error: reason}}, reason)
		}
	}()

	conns, err := p.Source.Connections(ctx)
	if err != nil {
		return Degraded([]models.ConnectionRecord{{Error: err.Error()}}, err.Error())
	}
	if limit > 0 && len(conns) > limit {
		p.Logger.Debug("truncating connection list", p.Logger.Args("total", len(conns), "limit", limit))
		conns = conns[:limit]
	}

	records := make([]models.ConnectionRecord, 0, len(conns))
	for _, c := range conns {
		records = append(records, models.ConnectionRecord{
			LocalAddress:  formatEndpoint(c.Local),
			RemoteAddress: formatEndpoint(c.Remote),
			Status:        c.Status,
			OwningPID:     c.PID,
		})
	}
	return Ok(records)
}

func formatEndpoint(e Endpoint) string {
	if e.IP == "" {
		return ""
	}
	return net.JoinHostPort(e.IP, strconv.FormatUint(uint64(e.Port), 10))
}

// TopProcesses returns the limit processes with the largest resident set,
// largest first. Processes that vanish or deny access while being inspected
// are skipped silently.
func (p *Prober) TopProcesses(ctx context.Context, limit int) (res Result[[]models.ProcessRecord]) {
	records := []models.ProcessRecord{}
	defer guard("processes", records, &res)

	procs, err := p.Source.Processes(ctx)
	if err != nil {
		return Degraded(records, err.Error())
	}

	skipped := 0
	for _, proc := range procs {
		rec, ok := inspect(ctx, proc)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		p.Logger.Debug("skipped processes during inspection", p.Logger.Args("count", skipped))
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ResidentMemoryBytes > records[j].ResidentMemoryBytes
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return Ok(records)
}

// inspect reads one process. A failing username lookup leaves the field
// empty; a failing name or memory read drops the process.
func inspect(ctx context.Context, proc Process) (rec models.ProcessRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	name, err := proc.Name(ctx)
	if err != nil {
		return rec, false
	}
	rss, err := proc.RSS(ctx)
	if err != nil {
		return rec, false
	}
	user, _ := proc.Username(ctx)

	return models.ProcessRecord{
		PID:                 proc.PID(),
		Name:                name,
		Username:            user,
		ResidentMemoryBytes: rss,
	}, true
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += part
	}
	return out
}
