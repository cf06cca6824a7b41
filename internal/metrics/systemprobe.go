package metrics

// SystemProbe is the small per-platform capability spec.md §9 calls for:
// the handful of metrics gopsutil cannot portably answer (connection
// counts via Linux netlink vs. Windows enumeration, virtualization
// detection via Linux DMI vs. Windows CPUID hypervisor bit). Each platform
// provides its own implementation; NewSystemProbe picks the right one at
// build time via file-suffix build constraints.
type SystemProbe interface {
	// Virtualization returns a short tag describing the hypervisor/container
	// environment the host is running under, or "none" if bare metal or the
	// platform has no detection implemented.
	Virtualization() string

	// ConnectionCounts returns the host's TCP and UDP socket counts, or
	// (0, 0) if the platform collaborator is unavailable. The Linux
	// implementation counts ESTABLISHED sockets in /proc/net/tcp and every
	// socket in /proc/net/udp; the IPv6 tables are not read.
	ConnectionCounts() (tcp int, udp int)
}
