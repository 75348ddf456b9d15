// Package discovery advertises the viewer on the local network over mDNS
// and finds other running instances.
package discovery

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service type of the viewer.
const ServiceType = "_handgestures._tcp"

// Advertiser answers mDNS queries for the viewer until Shutdown.
type Advertiser struct {
	server *mdns.Server
}

// Advertise registers the viewer listening on port. info is published as TXT records.
func Advertise(port int, info ...string) (*Advertiser, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	if len(info) == 0 {
		info = []string{"hand-gestures viewer"}
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return &Advertiser{server: server}, nil
}

// Shutdown stops answering queries.
func (a *Advertiser) Shutdown() error {
	return a.server.Shutdown()
}

// Instance is a viewer found on the network.
type Instance struct {
	Name string
	Addr string // host:port
	Info []string
}

// URL returns the viewer page URL of the instance.
func (i Instance) URL() string {
	return "http://" + i.Addr
}

// Browse queries the network for timeout and returns the viewers that answered.
func Browse(timeout time.Duration) ([]Instance, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan []Instance)

	go func() {
		var found []Instance
		seen := make(map[string]bool)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			addr := net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port))
			if seen[addr] {
				continue
			}
			seen[addr] = true
			found = append(found, Instance{Name: e.Name, Addr: addr, Info: e.InfoFields})
		}
		done <- found
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	found := <-done
	if err != nil {
		return found, fmt.Errorf("mDNS query failed: %w", err)
	}
	return found, nil
}

// LocalIP returns the first IPv4 address of an interface that is up and not
// loopback, or 127.0.0.1.
func LocalIP() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	return net.IPv4(127, 0, 0, 1)
}

// ViewerURL returns the LAN URL of a viewer listening on port.
func ViewerURL(port int) string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(LocalIP().String(), fmt.Sprint(port)))
}
