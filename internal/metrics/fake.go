package metrics

import "strings"

// DiskFilesystemAllowList is the set of filesystem type strings whose usage
// counts toward disk totals, per spec.md §3.
var DiskFilesystemAllowList = map[string]bool{
	"apfs": true, "ext2": true, "ext3": true, "ext4": true, "f2fs": true,
	"reiserfs": true, "jfs": true, "btrfs": true, "fuseblk": true, "zfs": true,
	"simfs": true, "ntfs": true, "fat32": true, "exfat": true, "xfs": true,
	"fuse.rclone": true,
}

// excludedInterfaceSubstrings lists the network interface name fragments
// excluded from counters, per spec.md §3.
var excludedInterfaceSubstrings = []string{"lo", "bridge", "tun", "tap", "docker", "veth"}

func isExcludedInterface(name string) bool {
	lower := strings.ToLower(name)
	for _, frag := range excludedInterfaceSubstrings {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// ApplyFake multiplies every field of a RealTimeInfo by k except CPU usage
// and Message, per spec.md §3's invariant. fake=1.0 is a byte-exact no-op,
// which is exactly the property spec.md §8 tests for.
//
// Note: per spec.md §9's "Open questions", the source applies fake to the
// load averages too, which is semantically odd for a ratio — that behavior
// is preserved here deliberately, not corrected.
func ApplyFake(in RealTimeInfo, k float64) RealTimeInfo {
	out := in
	out.RAMUsed = scaleU64(in.RAMUsed, k)
	out.SwapUsed = scaleU64(in.SwapUsed, k)
	out.DiskUsed = scaleU64(in.DiskUsed, k)
	out.Load1 = in.Load1 * k
	out.Load5 = in.Load5 * k
	out.Load15 = in.Load15 * k
	out.Network.Up = scaleU64(in.Network.Up, k)
	out.Network.Down = scaleU64(in.Network.Down, k)
	out.Network.TotalUp = scaleU64(in.Network.TotalUp, k)
	out.Network.TotalDown = scaleU64(in.Network.TotalDown, k)
	out.TCPConns = scaleInt(in.TCPConns, k)
	out.UDPConns = scaleInt(in.UDPConns, k)
	out.UptimeSec = scaleU64(in.UptimeSec, k)
	out.ProcessCnt = scaleInt(in.ProcessCnt, k)
	return out
}

// ApplyFakeBasic multiplies BasicInfo's numeric byte/count fields by k,
// leaving string fields untouched. CPUCores is a count, not a ratio, so it scales too
// per the "all numeric fields" rule — core count is intentionally included
// since it is not in spec.md's exception list (CPU usage %, timestamps,
// strings).
func ApplyFakeBasic(in BasicInfo, k float64) BasicInfo {
	out := in
	out.DiskTotal = scaleU64(in.DiskTotal, k)
	out.SwapTotal = scaleU64(in.SwapTotal, k)
	out.MemTotal = scaleU64(in.MemTotal, k)
	out.CPUCores = scaleInt(in.CPUCores, k)
	return out
}

func scaleU64(v uint64, k float64) uint64 {
	return uint64(float64(v) * k)
}

func scaleInt(v int, k float64) int {
	return int(float64(v) * k)
}

// NetworkRate computes the up/down byte rate over the configured interval,
// per spec.md §3's invariant: the divisor MUST be the configured target
// interval, not measured elapsed time, so rates stay stable under tick
// jitter.
func NetworkRate(bytesInInterval uint64, intervalMs uint64) uint64 {
	if intervalMs == 0 {
		return 0
	}
	return bytesInInterval * 1000 / intervalMs
}
