package config

import (
	"fmt"
	"net"
)

// MachineIP returns the address this machine uses for outbound traffic.
// Dialing UDP sends no packets; it only asks the kernel to pick a route.
func MachineIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("detect machine ip: %w", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
