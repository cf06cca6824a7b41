package metrics

import (
	"context"
	"net"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/load"
	"github.com/shirou/gopsutil/mem"
	gnet "github.com/shirou/gopsutil/net"
)

// Sampler builds BasicInfo and RealTimeInfo snapshots. It is stateless
// across calls except for the previous network counters it needs to derive
// a rate; that state is owned by the supervisor's ticker goroutine only,
// per spec.md §5 ("all metric source handles ... read by the ticker thread
// only").
type Sampler struct {
	probe SystemProbe

	prevNetUp, prevNetDown uint64
	haveNetSample          bool

	ipProvider string
	version    string
}

// New builds a Sampler. ipProvider selects the public-IP lookup service
// ("ipinfo" or "cloudflare"); version is stamped into BasicInfo.
func New(ipProvider, version string) *Sampler {
	return &Sampler{probe: NewSystemProbe(), ipProvider: ipProvider, version: version}
}

// BuildBasic samples the one-shot host descriptor, applying fake and
// resolving public IPs via two concurrent, family-pinned HTTP GETs with a
// 5s timeout each, per spec.md §4.3.
func (s *Sampler) BuildBasic(ctx context.Context, fake float64) BasicInfo {
	info := BasicInfo{
		Arch:           runtime.GOARCH,
		CPUCores:       runtime.NumCPU(),
		GPUName:        "",
		Virtualization: s.probe.Virtualization(),
		AgentVersion:   s.version,
	}

	if cores, err := cpu.Info(); err == nil {
		info.CPUName = dedupeCPUBrands(cores)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemTotal = vm.Total
		info.SwapTotal = vm.SwapTotal
	}

	info.DiskTotal = totalAllowedDiskBytes()

	if h, err := host.Info(); err == nil {
		info.OSName = h.Platform
		info.OSVersion = h.PlatformVersion
		info.KernelVersion = h.KernelVersion
	}

	info.IPv4, info.IPv6 = s.lookupPublicIPs(ctx)

	return ApplyFakeBasic(info, fake)
}

// BuildRealtime samples the per-tick metric snapshot and applies fake,
// per spec.md §4.3. intervalMs is the configured target cadence, used as
// the rate divisor per spec.md §3's invariant (not measured elapsed time).
func (s *Sampler) BuildRealtime(fake float64, intervalMs uint64) RealTimeInfo {
	var out RealTimeInfo

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		out.CPU = pct[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		out.RAMUsed = vm.Used
	}
	if sm, err := mem.SwapMemory(); err == nil {
		out.SwapUsed = sm.Used
	}
	out.DiskUsed = usedAllowedDiskBytes()

	// load.Avg returns ErrNotImplementedError on Windows; treated as the
	// spec's "metric unavailable -> zero", not a fatal error.
	if avg, err := load.Avg(); err == nil {
		out.Load1, out.Load5, out.Load15 = avg.Load1, avg.Load5, avg.Load15
	}

	up, down := s.networkCounters()
	out.Network = s.networkRate(up, down, intervalMs)

	out.TCPConns, out.UDPConns = s.probe.ConnectionCounts()

	if h, err := host.Info(); err == nil {
		out.UptimeSec = h.Uptime
		out.ProcessCnt = int(h.Procs)
	}

	return ApplyFake(out, fake)
}

func (s *Sampler) networkCounters() (up, down uint64) {
	counters, err := gnet.IOCounters(true)
	if err != nil {
		return 0, 0
	}
	for _, c := range counters {
		if isExcludedInterface(c.Name) {
			continue
		}
		up += c.BytesSent
		down += c.BytesRecv
	}
	return up, down
}

func (s *Sampler) networkRate(totalUp, totalDown uint64, intervalMs uint64) NetworkInfo {
	var deltaUp, deltaDown uint64
	if s.haveNetSample {
		deltaUp = diffOrZero(totalUp, s.prevNetUp)
		deltaDown = diffOrZero(totalDown, s.prevNetDown)
	}
	s.prevNetUp, s.prevNetDown = totalUp, totalDown
	s.haveNetSample = true

	return NetworkInfo{
		Up:        NetworkRate(deltaUp, intervalMs),
		Down:      NetworkRate(deltaDown, intervalMs),
		TotalUp:   totalUp,
		TotalDown: totalDown,
	}
}

func diffOrZero(now, prev uint64) uint64 {
	if now < prev {
		return 0
	}
	return now - prev
}

func dedupeCPUBrands(cores []cpu.InfoStat) string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range cores {
		name := strings.TrimSpace(c.ModelName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

func totalAllowedDiskBytes() uint64 {
	var total uint64
	parts, err := disk.Partitions(false)
	if err != nil {
		return 0
	}
	for _, p := range parts {
		if !DiskFilesystemAllowList[strings.ToLower(p.Fstype)] {
			continue
		}
		if u, err := disk.Usage(p.Mountpoint); err == nil {
			total += u.Total
		}
	}
	return total
}

func usedAllowedDiskBytes() uint64 {
	var used uint64
	parts, err := disk.Partitions(false)
	if err != nil {
		return 0
	}
	for _, p := range parts {
		if !DiskFilesystemAllowList[strings.ToLower(p.Fstype)] {
			continue
		}
		if u, err := disk.Usage(p.Mountpoint); err == nil {
			used += u.Used
		}
	}
	return used
}

// lookupPublicIPs runs two concurrent, family-pinned HTTP GETs with a 5s
// timeout each, per spec.md §4.3. Either or both may fail; failures yield
// an empty string for that family, not an error.
func (s *Sampler) lookupPublicIPs(ctx context.Context) (ipv4, ipv6 string) {
	url := ipProviderURL(s.ipProvider)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ipv4 = fetchIP(ctx, url, "tcp4")
	}()
	go func() {
		defer wg.Done()
		ipv6 = fetchIP(ctx, url, "tcp6")
	}()
	wg.Wait()
	return ipv4, ipv6
}

func ipProviderURL(provider string) string {
	switch provider {
	case "cloudflare":
		// www.cloudflare.com resolves to both A and AAAA records, unlike
		// the bare 1.1.1.1 literal, which has no IPv6 address to dial.
		return "https://www.cloudflare.com/cdn-cgi/trace"
	default:
		return "https://ipinfo.io/ip"
	}
}

func fetchIP(ctx context.Context, url, network string) string {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	client := &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, addr string) (net.Conn, error) {
				return dialer.DialContext(ctx, network, addr)
			},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}

	resp, err := client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	buf := make([]byte, 512)
	n, _ := resp.Body.Read(buf)
	body := string(buf[:n])

	if strings.Contains(url, "cloudflare.com") || strings.Contains(url, "cdn-cgi/trace") {
		return parseCloudflareTrace(body)
	}
	return strings.TrimSpace(body)
}

// parseCloudflareTrace extracts the "ip=" line from Cloudflare's
// cdn-cgi/trace response, which is a flat key=value-per-line document
// rather than a bare IP string.
func parseCloudflareTrace(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if ip, ok := strings.CutPrefix(line, "ip="); ok {
			return strings.TrimSpace(ip)
		}
	}
	return ""
}
