// Package netutil has small network helpers for the LAN deployment.
package netutil

import (
	"fmt"
	"net"
	"strconv"
)

// FindFreePort probes TCP ports starting at preferred and returns the first
// one that can be bound. Several kiosks run the server on whatever port is
// free and publish the result through server_info.json.
func FindFreePort(host string, preferred, attempts int) (int, error) {
	for port := preferred; port < preferred+attempts; port++ {
		l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			continue
		}
		l.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port in range %d-%d", preferred, preferred+attempts-1)
}

// LocalIP returns the outward-facing IPv4 address of this host, falling back
// to loopback when the host is offline.
func LocalIP() string {
	conn, err := net.Dial("udp", "192.168.0.1:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}
