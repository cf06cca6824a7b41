package metrics

import (
	"testing"

	"github.com/shirou/gopsutil/cpu"
	"github.com/stretchr/testify/require"
)

func TestDedupeCPUBrands_CollapsesIdenticalCores(t *testing.T) {
	cores := []cpu.InfoStat{
		{ModelName: "Intel(R) Xeon(R) CPU"},
		{ModelName: "Intel(R) Xeon(R) CPU"},
		{ModelName: "Intel(R) Xeon(R) CPU"},
	}
	require.Equal(t, "Intel(R) Xeon(R) CPU", dedupeCPUBrands(cores))
}

func TestDedupeCPUBrands_KeepsDistinctBrandsInOrder(t *testing.T) {
	cores := []cpu.InfoStat{
		{ModelName: "Performance Core"},
		{ModelName: "Efficiency Core"},
		{ModelName: "Performance Core"},
	}
	require.Equal(t, "Performance Core, Efficiency Core", dedupeCPUBrands(cores))
}

func TestDedupeCPUBrands_EmptyInput(t *testing.T) {
	require.Equal(t, "", dedupeCPUBrands(nil))
}

func TestDiffOrZero_MonotonicIncrease(t *testing.T) {
	require.Equal(t, uint64(30), diffOrZero(100, 70))
}

func TestDiffOrZero_CounterResetYieldsZero(t *testing.T) {
	require.Equal(t, uint64(0), diffOrZero(5, 100))
}

func TestIPProviderURL_KnownAndDefault(t *testing.T) {
	// Must be a dual-stack hostname, not a bare IPv4 literal: this URL is
	// dialed over both tcp4 and tcp6 transports by lookupPublicIPs.
	require.Equal(t, "https://www.cloudflare.com/cdn-cgi/trace", ipProviderURL("cloudflare"))
	require.Equal(t, "https://ipinfo.io/ip", ipProviderURL("ipinfo"))
	require.Equal(t, "https://ipinfo.io/ip", ipProviderURL("unknown"))
}

func TestParseCloudflareTrace_ExtractsIPLine(t *testing.T) {
	body := "fl=1f1\nh=1.1.1.1\nip=203.0.113.7\nts=1690000000.0\n"
	require.Equal(t, "203.0.113.7", parseCloudflareTrace(body))
}

func TestParseCloudflareTrace_NoIPLineReturnsEmpty(t *testing.T) {
	require.Equal(t, "", parseCloudflareTrace("fl=1f1\nh=1.1.1.1\n"))
}
