package services

import (
	"fmt"
	"net"
	"strconv"
)

// FindAvailableAddr returns the first host:port in the given port range
// that can be bound.
func FindAvailableAddr(host string, startPort, endPort int) (string, error) {
	for port := startPort; port <= endPort; port++ {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return addr, nil
		}
	}
	return "", fmt.Errorf("no available port on %s in range %d-%d", host, startPort, endPort)
}
