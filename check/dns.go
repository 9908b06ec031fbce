package check

import (
	"context"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/optimode/deliverkit/types"
)

// DefaultDNSTimeout bounds each DNS lookup.
const DefaultDNSTimeout = 5 * time.Second

// Resolver answers the DNS questions of the pipeline: MX records with
// the RFC 5321 implicit-MX fallback, and the SPF/DMARC TXT lookups.
// All lookups are advisory: timeouts and resolver errors surface as
// empty results, never as errors.
type Resolver struct {
	timeout time.Duration
	// injectable for testability
	lookupMX   func(ctx context.Context, domain string) ([]*net.MX, error)
	lookupHost func(ctx context.Context, host string) ([]string, error)
	lookupTXT  func(ctx context.Context, name string) ([]string, error)
}

// NewResolver creates a resolver with the given per-lookup timeout
// (DefaultDNSTimeout when zero).
func NewResolver(timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultDNSTimeout
	}
	r := &net.Resolver{}
	return &Resolver{
		timeout:    timeout,
		lookupMX:   r.LookupMX,
		lookupHost: r.LookupHost,
		lookupTXT:  r.LookupTXT,
	}
}

// NewResolverWithLookups is a test-oriented constructor that overrides
// the lookup functions.
func NewResolverWithLookups(
	timeout time.Duration,
	lookupMX func(context.Context, string) ([]*net.MX, error),
	lookupHost func(context.Context, string) ([]string, error),
	lookupTXT func(context.Context, string) ([]string, error),
) *Resolver {
	r := NewResolver(timeout)
	if lookupMX != nil {
		r.lookupMX = lookupMX
	}
	if lookupHost != nil {
		r.lookupHost = lookupHost
	}
	if lookupTXT != nil {
		r.lookupTXT = lookupTXT
	}
	return r
}

// CheckDNS resolves the MX records for domain, sorted by ascending
// priority with a stable tie-break. When no MX exists but an A record
// does, the domain itself is synthesized as a priority-0 exchanger.
func (r *Resolver) CheckDNS(ctx context.Context, domain string) types.DNSResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	mxs, err := r.lookupMX(ctx, domain)
	if err == nil && len(mxs) > 0 {
		records := make([]types.MXRecord, 0, len(mxs))
		for _, mx := range mxs {
			host := strings.TrimSuffix(mx.Host, ".")
			if host == "" {
				continue
			}
			records = append(records, types.MXRecord{Exchange: host, Priority: mx.Pref})
		}
		if len(records) > 0 {
			sort.SliceStable(records, func(i, j int) bool {
				return records[i].Priority < records[j].Priority
			})
			return types.DNSResult{MXRecords: records, HasValidDNS: true}
		}
	}

	// RFC 5321 implicit MX: the domain's A record stands in.
	addrs, err := r.lookupHost(ctx, domain)
	if err == nil && len(addrs) > 0 {
		return types.DNSResult{
			MXRecords:   []types.MXRecord{{Exchange: domain, Priority: 0}},
			HasValidDNS: true,
		}
	}

	return types.DNSResult{MXRecords: []types.MXRecord{}, HasValidDNS: false}
}

// CheckSPF reports whether domain publishes an SPF policy: any TXT
// record starting with "v=spf1" (case-insensitive).
func (r *Resolver) CheckSPF(ctx context.Context, domain string) bool {
	return r.hasTXTPrefix(ctx, domain, "v=spf1")
}

// CheckDMARC reports whether domain publishes a DMARC policy: any TXT
// record at _dmarc.<domain> starting with "v=dmarc1" (case-insensitive).
func (r *Resolver) CheckDMARC(ctx context.Context, domain string) bool {
	return r.hasTXTPrefix(ctx, "_dmarc."+domain, "v=dmarc1")
}

func (r *Resolver) hasTXTPrefix(ctx context.Context, name, prefix string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	records, err := r.lookupTXT(ctx, name)
	if err != nil {
		return false
	}
	for _, rec := range records {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(rec)), prefix) {
			return true
		}
	}
	return false
}
