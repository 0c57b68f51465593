// Package discovery announces and finds loanform web servers over mDNS.
//
// A server started with advertising enabled registers itself under the
// "_loanform._tcp" service type with TXT records carrying the form path and
// server version. The discover command browses for that service type and
// prints every instance that answers within the scan timeout.
//
// # Usage Example
//
//	instances, err := discovery.QuickScan(ctx, 3*time.Second)
//	if err != nil {
//	    return err
//	}
//	for _, inst := range instances {
//	    fmt.Println(inst.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Servers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
