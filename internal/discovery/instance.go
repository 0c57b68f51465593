package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Instance is a loanform web server found on the local network
type Instance struct {
	// Name is the advertised instance name (e.g., "loanform")
	Name string

	// Hostname is the mDNS hostname (e.g., "desk-01.local.")
	Hostname string

	// IP is the first advertised address, IPv4 preferred
	IP string

	// Port is the HTTP port the form is served on
	Port int

	// Version is the server version from the TXT record, if present
	Version string

	// Metadata contains the remaining TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the instance was seen
	DiscoveredAt time.Time
}

// String returns a human-readable summary of the instance
func (i *Instance) String() string {
	v := i.Version
	if v == "" {
		v = "unknown"
	}
	return fmt.Sprintf("%s (%s) at %s [version %s]", i.Name, i.Hostname, i.BaseURL(), v)
}

// BaseURL returns the HTTP base URL of the web form
func (i *Instance) BaseURL() string {
	path := i.GetMetadata("path")
	return "http://" + net.JoinHostPort(i.IP, strconv.Itoa(i.Port)) + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (i *Instance) GetMetadata(key string) string {
	if i.Metadata == nil {
		return ""
	}
	return i.Metadata[key]
}
