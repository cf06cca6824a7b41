package probe

import (
	"context"
	"net"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	icmpIdentifier = 42
	icmpSequence   = 0
	icmpPayloadLen = 56
)

// runICMP resolves target, opens a raw ICMP socket of the matching family,
// sends one Echo Request with the fixed identifier/sequence/payload
// spec.md §4.4 specifies, and waits up to icmpTimeout for the matching
// Echo Reply. Privilege failure (non-root on most POSIX hosts) is reported
// as an error — "cannot create raw socket" — not a negative outcome.
func runICMP(ctx context.Context, target string) (ms int64, ok bool, err error) {
	ipAddr, v6, rerr := resolveTarget(ctx, target)
	if rerr != nil {
		return 0, false, rerr
	}

	network, listenAddr := "ip4:icmp", "0.0.0.0"
	var echoType icmp.Type = ipv4.ICMPTypeEcho
	if v6 {
		network, listenAddr = "ip6:ipv6-icmp", "::"
		echoType = ipv6.ICMPTypeEchoRequest
	}

	conn, lerr := icmp.ListenPacket(network, listenAddr)
	if lerr != nil {
		return 0, false, errCannotCreateRawSocket(lerr)
	}
	defer conn.Close()

	payload := make([]byte, icmpPayloadLen)
	msg := icmp.Message{
		Type: echoType,
		Code: 0,
		Body: &icmp.Echo{
			ID:   icmpIdentifier,
			Seq:  icmpSequence,
			Data: payload,
		},
	}
	wireBytes, merr := msg.Marshal(nil)
	if merr != nil {
		return 0, false, nil
	}

	start := time.Now()
	if _, werr := conn.WriteTo(wireBytes, &net.IPAddr{IP: ipAddr}); werr != nil {
		return 0, false, nil
	}

	deadline := start.Add(icmpTimeout)
	if dl, has := ctx.Deadline(); has && dl.Before(deadline) {
		deadline = dl
	}
	conn.SetReadDeadline(deadline)

	reply := make([]byte, 1500)
	for {
		n, _, rerr2 := conn.ReadFrom(reply)
		if rerr2 != nil {
			return 0, false, nil // timeout or read error: negative outcome
		}

		protoNum := 1
		if v6 {
			protoNum = 58
		}
		parsed, perr := icmp.ParseMessage(protoNum, reply[:n])
		if perr != nil {
			continue
		}

		switch body := parsed.Body.(type) {
		case *icmp.Echo:
			if body.ID == icmpIdentifier && body.Seq == icmpSequence {
				return time.Since(start).Milliseconds(), true, nil
			}
		}
		if time.Now().After(deadline) {
			return 0, false, nil
		}
	}
}

func resolveTarget(ctx context.Context, target string) (net.IP, bool, error) {
	if ip := net.ParseIP(target); ip != nil {
		return ip, ip.To4() == nil, nil
	}

	resolver := net.Resolver{}
	ips, err := resolver.LookupIP(ctx, "ip", target)
	if err != nil || len(ips) == 0 {
		return nil, false, err
	}
	ip := ips[0]
	return ip, ip.To4() == nil, nil
}

type rawSocketError struct{ cause error }

func (e *rawSocketError) Error() string { return "cannot create raw socket: " + e.cause.Error() }
func (e *rawSocketError) Unwrap() error { return e.cause }

func errCannotCreateRawSocket(cause error) error {
	return &rawSocketError{cause: cause}
}
