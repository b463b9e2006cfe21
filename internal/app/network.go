package app

import (
	"net"
	"net/netip"
)

// addrSource lists the addresses of the machine's usable interfaces
type addrSource interface {
	Addrs() ([]net.Addr, error)
}

type systemInterfaces struct{}

// Addrs returns the addresses of every interface that is up and not loopback
func (systemInterfaces) Addrs() ([]net.Addr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var addrs []net.Addr
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		ifaceAddrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		addrs = append(addrs, ifaceAddrs...)
	}
	return addrs, nil
}

// lanIP returns the address kiosks on the mall network should use.
// Private IPv4 addresses win over public ones; localhost is the fallback.
func lanIP(src addrSource) string {
	addrs, err := src.Addrs()
	if err != nil {
		return "localhost"
	}

	var fallback string
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		addr, ok := netip.AddrFromSlice(ip)
		if !ok {
			continue
		}
		addr = addr.Unmap()
		if !addr.Is4() || addr.IsLoopback() {
			continue
		}
		if addr.IsPrivate() {
			return addr.String()
		}
		if fallback == "" {
			fallback = addr.String()
		}
	}

	if fallback != "" {
		return fallback
	}
	return "localhost"
}
