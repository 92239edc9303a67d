// FILE: devconsole/src/internal/discovery/node.go
package discovery

import (
	"net"
	"os"
	"strconv"
)

// Hostname returns the local hostname, or "localhost" when it cannot be determined
func Hostname() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "localhost"
	}
	return host
}

// NodeName returns the node name of a role on this host, as in "console@devbox"
func NodeName(role string) string {
	return role + "@" + Hostname()
}

// Candidates returns the well-known addresses a console is tried at when the registry has no claim
func Candidates(port int) []string {
	p := strconv.Itoa(port)
	host := Hostname()
	if host == "localhost" {
		return []string{net.JoinHostPort("localhost", p)}
	}
	return []string{
		net.JoinHostPort(host, p),
		net.JoinHostPort("localhost", p),
	}
}

// AdvertiseAddr turns a listen address into one other local processes can dial
func AdvertiseAddr(host string, port int) string {
	switch host {
	case "", "0.0.0.0", "::", "[::]":
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
