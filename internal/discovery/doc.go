// Package discovery provides mDNS-based discovery of hostel API servers.
//
// API servers on a local network (a hostel office LAN, a laptop running the
// API during setup) advertise themselves with the "_hostel-api._tcp" service
// type. Optional TXT records describe how to reach the API:
//
//	path=/v1     API base path appended to the address
//	tls=1        serve over https
//	version=2.3  API version, shown to the user
//
// # Usage Example
//
//	servers, err := discovery.ScanForServers(ctx, 5*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range servers {
//	    fmt.Println(s.Instance, s.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Servers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
