package collector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/K0NGR3SS/triagekit/internal/metrics"
	"github.com/K0NGR3SS/triagekit/internal/models"
	"github.com/K0NGR3SS/triagekit/internal/probe"
	"github.com/K0NGR3SS/triagekit/internal/probe/probetest"
	"github.com/K0NGR3SS/triagekit/internal/syscmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func healthySource() *probetest.Source {
	return &probetest.Source{
		HostFacts: probe.HostFacts{Hostname: "ws-042", OS: "linux", KernelVersion: "6.8.0", KernelArch: "x86_64"},
		InterfaceList: []probe.Interface{
			{Name: "eth0", Addrs: []string{"10.0.0.4/24"}},
		},
		ConnectionList: []probe.Connection{
			{Local: probe.Endpoint{IP: "0.0.0.0", Port: 22}, Status: "LISTEN", PID: 900},
			{Local: probe.Endpoint{IP: "0.0.0.0", Port: 80}, Status: "LISTEN", PID: 901},
			{Local: probe.Endpoint{IP: "0.0.0.0", Port: 443}, Status: "LISTEN", PID: 902},
		},
		ProcessList: []probe.Process{
			probetest.Process{Pid: 1, Cmd: "init", User: "root", Memory: 10},
			probetest.Process{Pid: 2, Cmd: "java", User: "app", Memory: 500},
		},
	}
}

var healthyCommands = probetest.Commands{
	RouteOutput: syscmd.Output{Text: "default via 10.0.0.1", OK: true},
	DNSOutput:   syscmd.Output{Text: "nameserver 10.0.0.2", OK: true},
}

func newCollector(src *probetest.Source, cmds probetest.Commands) *Collector {
	c := New(probe.New(src, cmds, nil), nil)
	c.Clock = func() time.Time { return fixedNow }
	return c
}

func defaultOptions() Options {
	return Options{ConnectionLimit: 2, ProcessLimit: 30, SecurityNotes: []string{"Isolate first."}}
}

func TestCollect_AssemblesReport(t *testing.T) {
	c := newCollector(healthySource(), healthyCommands)

	r := c.Collect(context.Background(), defaultOptions(), nil)

	assert.Equal(t, fixedNow, r.Timestamp)
	assert.Equal(t, "ws-042", r.Host.Hostname)
	assert.Nil(t, r.Host.Cloud)
	assert.Equal(t, []models.NetworkInterfaceRecord{{InterfaceName: "eth0", IPAddress: "10.0.0.4", Netmask: "255.255.255.0"}}, r.Network.Interfaces)
	assert.Equal(t, "default via 10.0.0.1", r.Network.Routes)
	assert.Equal(t, "nameserver 10.0.0.2", r.Network.DNS)
	assert.Len(t, r.Network.Connections, 2)
	require.Len(t, r.Processes, 2)
	assert.Equal(t, "java", r.Processes[0].Name)
	assert.Equal(t, []string{"Isolate first."}, r.SecurityNotes)
	assert.Nil(t, r.Hashes)
}

func TestCollect_OneFailingProbeDoesNotAbort(t *testing.T) {
	src := healthySource()
	src.ProcessesErr = errors.New("list processes: access denied")
	src.PanicOn = "Interfaces"
	cmds := probetest.Commands{
		RouteOutput: syscmd.Output{Text: "ERROR running ip route: timed out after 15s"},
		DNSOutput:   healthyCommands.DNSOutput,
	}
	rec := metrics.NewRecorder()
	c := newCollector(src, cmds)
	c.Metrics = rec

	r := c.Collect(context.Background(), defaultOptions(), nil)

	assert.Equal(t, "ws-042", r.Host.Hostname)
	assert.NotNil(t, r.Network.Interfaces)
	assert.Empty(t, r.Network.Interfaces)
	assert.Equal(t, "ERROR running ip route: timed out after 15s", r.Network.Routes)
	assert.Equal(t, "nameserver 10.0.0.2", r.Network.DNS)
	assert.Len(t, r.Network.Connections, 2)
	assert.NotNil(t, r.Processes)
	assert.Empty(t, r.Processes)

	path := filepath.Join(t.TempDir(), "run.prom")
	require.NoError(t, rec.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `triagekit_probe_degraded{probe="processes"} 1`)
	assert.Contains(t, string(data), `triagekit_probe_degraded{probe="dns"} 0`)
}

func TestCollect_HashFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "sample.bin")
	require.NoError(t, os.WriteFile(target, []byte("abc"), 0o600))

	opts := defaultOptions()
	opts.HashFile = target
	r := newCollector(healthySource(), healthyCommands).Collect(context.Background(), opts, nil)

	require.NotNil(t, r.Hashes)
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", r.Hashes.MD5)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", r.Hashes.SHA256)
	assert.Len(t, r.Hashes.MD5, 32)
	assert.Len(t, r.Hashes.SHA256, 64)
	assert.Equal(t, target, r.Hashes.File)
	assert.Empty(t, r.Hashes.Error)
}

func TestCollect_HashFileMissing(t *testing.T) {
	opts := defaultOptions()
	opts.HashFile = filepath.Join(t.TempDir(), "gone.bin")
	r := newCollector(healthySource(), healthyCommands).Collect(context.Background(), opts, nil)

	require.NotNil(t, r.Hashes)
	assert.Empty(t, r.Hashes.MD5)
	assert.Empty(t, r.Hashes.SHA256)
	assert.Contains(t, r.Hashes.Error, "gone.bin")
	assert.Equal(t, "ws-042", r.Host.Hostname)
}

type fakeCloud struct {
	id  *models.CloudIdentity
	err error
}

func (f fakeCloud) InstanceIdentity(context.Context) (*models.CloudIdentity, error) {
	return f.id, f.err
}

func TestCollect_CloudIdentity(t *testing.T) {
	c := newCollector(healthySource(), healthyCommands)
	c.Cloud = fakeCloud{id: &models.CloudIdentity{Provider: "aws", InstanceID: "i-0abc"}}
	r := c.Collect(context.Background(), defaultOptions(), nil)
	require.NotNil(t, r.Host.Cloud)
	assert.Equal(t, "i-0abc", r.Host.Cloud.InstanceID)

	c.Cloud = fakeCloud{err: errors.New("not on ec2")}
	r = c.Collect(context.Background(), defaultOptions(), nil)
	assert.Nil(t, r.Host.Cloud)
	assert.Equal(t, "ws-042", r.Host.Hostname)
}
