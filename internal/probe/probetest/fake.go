// Package probetest provides an in-memory probe.Source for tests.
package probetest

import (
	"context"
	"errors"

	"github.com/K0NGR3SS/triagekit/internal/probe"
	"github.com/K0NGR3SS/triagekit/internal/syscmd"
)

// Source returns canned data. Any *Err field makes the matching method fail.
type Source struct {
	HostFacts probe.HostFacts
	HostErr   error

	UserList []probe.User
	UsersErr error

	InterfaceList []probe.Interface
	InterfacesErr error

	ConnectionList []probe.Connection
	ConnectionsErr error

	ProcessList  []probe.Process
	ProcessesErr error

	// PanicOn names a method that panics instead of returning.
	PanicOn string
}

func (s *Source) maybePanic(method string) {
	if s.PanicOn == method {
		panic(method + " exploded")
	}
}

func (s *Source) Host(context.Context) (probe.HostFacts, error) {
	s.maybePanic("Host")
	return s.HostFacts, s.HostErr
}

func (s *Source) Users(context.Context) ([]probe.User, error) {
	s.maybePanic("Users")
	return s.UserList, s.UsersErr
}

func (s *Source) Interfaces(context.Context) ([]probe.Interface, error) {
	s.maybePanic("Interfaces")
	return s.InterfaceList, s.InterfacesErr
}

func (s *Source) Connections(context.Context) ([]probe.Connection, error) {
	s.maybePanic("Connections")
	return s.ConnectionList, s.ConnectionsErr
}

func (s *Source) Processes(context.Context) ([]probe.Process, error) {
	s.maybePanic("Processes")
	return s.ProcessList, s.ProcessesErr
}

// ErrGone mimics a process that exited between enumeration and inspection.
var ErrGone = errors.New("process does not exist")

// Process is a canned process handle.
type Process struct {
	Pid     int32
	Cmd     string
	User    string
	Memory  uint64
	NameErr error
	UserErr error
	RSSErr  error
}

func (p Process) PID() int32 { return p.Pid }

func (p Process) Name(context.Context) (string, error) { return p.Cmd, p.NameErr }

func (p Process) Username(context.Context) (string, error) { return p.User, p.UserErr }

func (p Process) RSS(context.Context) (uint64, error) { return p.Memory, p.RSSErr }

// Commands is a syscmd.Source with fixed output.
type Commands struct {
	RouteOutput syscmd.Output
	DNSOutput   syscmd.Output
}

func (c Commands) Routes(context.Context) syscmd.Output { return c.RouteOutput }

func (c Commands) DNS(context.Context) syscmd.Output { return c.DNSOutput }
