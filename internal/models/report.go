package models

import "time"

// Report is a single triage snapshot. It is assembled once and then only read.
type Report struct {
	Timestamp     time.Time       `json:"timestamp"`
	Host          HostInfo        `json:"host"`
	Network       NetworkInfo     `json:"network"`
	Processes     []ProcessRecord `json:"processes"`
	SecurityNotes []string        `json:"security_notes"`
	Hashes        *HashResult     `json:"hashes,omitempty"`
}

type HostInfo struct {
	Hostname string         `json:"hostname"`
	Platform string         `json:"platform"`
	System   string         `json:"system"`
	Release  string         `json:"release"`
	Version  string         `json:"version"`
	Machine  string         `json:"machine"`
	BootTime string         `json:"boot_time"`
	Users    []UserSession  `json:"users"`
	Runtime  string         `json:"runtime"`
	Cloud    *CloudIdentity `json:"cloud,omitempty"`
}

type UserSession struct {
	User     string `json:"user"`
	Terminal string `json:"terminal"`
	Host     string `json:"host"`
	Started  string `json:"started"`
}

// CloudIdentity is only filled in when the instance metadata probe was enabled.
type CloudIdentity struct {
	Provider         string `json:"provider"`
	InstanceID       string `json:"instance_id"`
	InstanceType     string `json:"instance_type,omitempty"`
	Region           string `json:"region,omitempty"`
	AvailabilityZone string `json:"availability_zone,omitempty"`
	AccountID        string `json:"account_id,omitempty"`
	ImageID          string `json:"image_id,omitempty"`
	PrivateIP        string `json:"private_ip,omitempty"`
}

type NetworkInfo struct {
	Interfaces  []NetworkInterfaceRecord `json:"interfaces"`
	Routes      string                   `json:"routes"`
	DNS         string                   `json:"dns"`
	Connections []ConnectionRecord       `json:"connections"`
}

// NetworkInterfaceRecord describes one IPv4 address bound to an interface.
// An interface with several addresses produces several records.
type NetworkInterfaceRecord struct {
	InterfaceName string `json:"interface_name"`
	IPAddress     string `json:"ip_address"`
	Netmask       string `json:"netmask"`
}

// ConnectionRecord is a socket entry. Addresses are "ip:port" or empty when the
// endpoint is absent (listening sockets). A record with only Error set means
// the connection table could not be enumerated at all.
type ConnectionRecord struct {
	LocalAddress  string `json:"local_address"`
	RemoteAddress string `json:"remote_address"`
	Status        string `json:"status"`
	OwningPID     int32  `json:"owning_pid"`
	Error         string `json:"error,omitempty"`
}

type ProcessRecord struct {
	PID                 int32  `json:"pid"`
	Name                string `json:"name"`
	Username            string `json:"username"`
	ResidentMemoryBytes uint64 `json:"resident_memory_bytes"`
}

// HashResult holds either the digests of the target file or the error that
// prevented hashing it.
type HashResult struct {
	File   string `json:"file,omitempty"`
	MD5    string `json:"md5,omitempty"`
	SHA256 string `json:"sha256,omitempty"`
	Error  string `json:"error,omitempty"`
}
