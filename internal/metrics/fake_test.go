package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sample() RealTimeInfo {
	return RealTimeInfo{
		CPU:      42.5,
		RAMUsed:  1000,
		SwapUsed: 200,
		DiskUsed: 5000,
		Load1:    1.5, Load5: 1.2, Load15: 0.9,
		Network:    NetworkInfo{Up: 100, Down: 200, TotalUp: 10000, TotalDown: 20000},
		TCPConns:   5,
		UDPConns:   2,
		UptimeSec:  3600,
		ProcessCnt: 120,
		Message:    "hello",
	}
}

func TestApplyFake_Identity(t *testing.T) {
	in := sample()
	out := ApplyFake(in, 1.0)
	require.Equal(t, in, out)
}

func TestApplyFake_LeavesCPUAndMessageUnchanged(t *testing.T) {
	in := sample()
	out := ApplyFake(in, 2.0)
	require.Equal(t, in.CPU, out.CPU)
	require.Equal(t, in.Message, out.Message)
}

func TestApplyFake_ScalesNumericFields(t *testing.T) {
	in := sample()
	out := ApplyFake(in, 2.0)
	require.Equal(t, uint64(2000), out.RAMUsed)
	require.Equal(t, uint64(400), out.SwapUsed)
	require.Equal(t, uint64(10000), out.DiskUsed)
	require.Equal(t, uint64(200), out.Network.Up)
	require.Equal(t, uint64(20000), out.Network.TotalUp)
	require.Equal(t, 10, out.TCPConns)
	require.Equal(t, uint64(7200), out.UptimeSec)
}

func TestNetworkRate_UsesConfiguredIntervalNotElapsed(t *testing.T) {
	// 1000 bytes over a configured 1000ms interval, regardless of how long
	// the tick actually took to sample.
	require.Equal(t, uint64(1000), NetworkRate(1000, 1000))
	require.Equal(t, uint64(500), NetworkRate(1000, 2000))
	require.Equal(t, uint64(0), NetworkRate(1000, 0))
}

func TestDiskFilesystemAllowList(t *testing.T) {
	require.True(t, DiskFilesystemAllowList["ext4"])
	require.True(t, DiskFilesystemAllowList["ntfs"])
	require.False(t, DiskFilesystemAllowList["tmpfs"])
	require.False(t, DiskFilesystemAllowList["proc"])
}

func TestIsExcludedInterface(t *testing.T) {
	require.True(t, isExcludedInterface("lo"))
	require.True(t, isExcludedInterface("docker0"))
	require.True(t, isExcludedInterface("veth1234"))
	require.True(t, isExcludedInterface("bridge0"))
	require.False(t, isExcludedInterface("eth0"))
	require.False(t, isExcludedInterface("wlan0"))
}
