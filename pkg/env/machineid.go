// Package env derives identities from the host environment.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves the ID identifying this machine, hashed for appID so
// the raw ID is never exposed. It falls back to the hostname.
func MachineID(appID string) string {
	id, err := machineid.ProtectedID(appID)
	if err == nil {
		return id
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, herr := os.Hostname(); herr == nil {
		return host
	}
	return "unknown"
}

// ClientID builds a stable client ID with prefix, short enough for MQTT
// 3.1 brokers which limit IDs to 23 characters.
func ClientID(prefix string) string {
	return Shorten(prefix+"-"+MachineID(prefix), 23)
}

// Shorten truncates s to at most n bytes.
func Shorten(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
