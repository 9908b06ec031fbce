package deliverkit

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/optimode/deliverkit/check"
	"github.com/optimode/deliverkit/internal/parse"
	"github.com/optimode/deliverkit/internal/static"
	"github.com/optimode/deliverkit/internal/throttle"
	"github.com/optimode/deliverkit/internal/ttlcache"
	"github.com/optimode/deliverkit/types"
)

// DNSResolver is the DNS surface the engine consumes.
// *check.Resolver implements it.
type DNSResolver interface {
	CheckDNS(ctx context.Context, domain string) types.DNSResult
	CheckSPF(ctx context.Context, domain string) bool
	CheckDMARC(ctx context.Context, domain string) bool
}

// SMTPProber is the probing surface the engine consumes.
// *check.Prober implements it.
type SMTPProber interface {
	ProbeWithTimingStats(ctx context.Context, hosts []string, recipient string, count int) types.TimingStats
}

// catchAllPrefix is prepended to the local part to synthesize a
// recipient that should not exist. A collision with a real mailbox is
// possible and accepted as negligible.
const catchAllPrefix = "x9x0"

// Engine runs the verification pipeline. It owns the two result caches
// and the per-host throttle, which are shared across calls and safe for
// concurrent use.
type Engine struct {
	emailCache *ttlcache.Cache[types.VerificationResult]
	dnsCache   *ttlcache.Cache[types.DNSResult]
	throttle   *throttle.Throttle
	log        logrus.FieldLogger

	// transport factories, injectable for testability
	resolverFor func(timeout time.Duration) DNSResolver
	proberFor   func(cfg check.SMTPConfig) SMTPProber
}

// New creates an engine with default caches, throttle and transports.
func New() *Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Engine{
		emailCache: ttlcache.New[types.VerificationResult](0, 0),
		dnsCache:   ttlcache.New[types.DNSResult](0, 0),
		throttle:   throttle.New(throttle.DefaultConfig()),
		log:        logger,
		resolverFor: func(timeout time.Duration) DNSResolver {
			return check.NewResolver(timeout)
		},
		proberFor: func(cfg check.SMTPConfig) SMTPProber {
			return check.NewProber(cfg)
		},
	}
}

// NewWithTransport is a test-oriented constructor that overrides the
// resolver and prober factories.
func NewWithTransport(
	resolverFor func(timeout time.Duration) DNSResolver,
	proberFor func(cfg check.SMTPConfig) SMTPProber,
) *Engine {
	e := New()
	if resolverFor != nil {
		e.resolverFor = resolverFor
	}
	if proberFor != nil {
		e.proberFor = proberFor
	}
	return e
}

// WithLogger installs a logger for pipeline debug output.
func (e *Engine) WithLogger(log logrus.FieldLogger) *Engine {
	if log != nil {
		e.log = log
	}
	return e
}

// Verify runs the full pipeline for one address:
// cache → syntax → DNS → throttled SMTP probe → catch-all probe →
// signal analysis → confidence synthesis. Network failures never
// escape; they surface in the result per the statuses in types.
func (e *Engine) Verify(ctx context.Context, email string, opts ...Options) types.VerificationResult {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0].withDefaults()
	}

	addr := parse.NewEmail(email)

	if cached, ok := e.emailCache.Get(addr.Normalized); ok {
		e.log.WithField("email", addr.Normalized).Debug("email cache hit")
		return cached
	}

	res := types.VerificationResult{
		Email: addr.Normalized,
		Details: types.VerificationDetails{
			MXRecords:  []types.MXRecord{},
			SMTPStatus: types.StatusSkipped,
		},
	}

	// Static detections need no I/O and apply even to undeliverable
	// addresses.
	res.Checks.IsDisposableEmail = static.IsDisposableDomain(addr.Domain)
	res.Checks.IsRoleBasedAccount = static.IsRoleLocalPart(addr.Local)
	res.Checks.IsFreeEmail = static.IsFreeDomain(addr.Domain)

	// Syntax gate. Failures are not cached: they are cheap to recompute.
	if !check.IsValidFormat(email) {
		res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons, "invalid address syntax")
		e.log.WithField("email", addr.Normalized).Debug("syntax check failed")
		return res
	}
	res.Checks.IsValidSyntax = true
	res.Details.FormatValid = true

	resolver := e.resolverFor(o.DNSTimeout)

	// DNS, memoized per domain.
	dns, ok := e.dnsCache.Get(addr.Domain)
	if !ok {
		dns = resolver.CheckDNS(ctx, addr.Domain)
		e.dnsCache.Set(addr.Domain, dns, 0)
	}
	res.Details.MXRecords = dns.MXRecords

	if !dns.HasValidDNS {
		res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons, "domain has no MX or A records")
		e.log.WithField("domain", addr.Domain).Debug("no valid DNS")
		e.emailCache.Set(addr.Normalized, res, 0)
		return res
	}
	res.Checks.IsValidDomain = true

	mxHosts := make([]string, len(dns.MXRecords))
	for i, mx := range dns.MXRecords {
		mxHosts[i] = mx.Exchange
	}

	res.Details.Provider = static.DetectProvider(mxHosts)
	if res.Details.Provider != nil {
		res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons,
			fmt.Sprintf("mail hosted by %s", res.Details.Provider.Name))
	}
	if s := static.SuggestDomain(addr.Domain); s != "" {
		res.Details.Suggestion = s
		res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons,
			fmt.Sprintf("domain resembles %q", s))
	}
	if res.Checks.IsDisposableEmail {
		res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons, "disposable domain")
	}
	if res.Checks.IsRoleBasedAccount {
		res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons, "role-based local part")
	}
	if res.Checks.IsFreeEmail {
		res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons, "free mailbox provider")
	}

	// SMTP gate.
	if !o.SMTPCheck || len(mxHosts) == 0 {
		return e.finishSkipped(res)
	}

	primary := mxHosts[0]
	if !e.throttle.CanProceed(primary) {
		res.Valid = true
		res.Confidence = 0.5
		res.Checks.IsUnknown = true
		res.Details.SMTPStatus = types.StatusUnknown
		res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons,
			fmt.Sprintf("probe host in backoff, retry in %s", e.throttle.WaitTime(primary).Round(time.Second)))
		e.log.WithField("host", primary).Debug("probe throttled")
		// Not cached: a later call may succeed once backoff lifts.
		return res
	}
	e.throttle.Consume(primary)

	prober := e.proberFor(check.SMTPConfig{
		SenderEmail: o.SenderEmail,
		Port:        o.SMTPPort,
		Timeout:     o.SMTPTimeout,
	})

	stats := prober.ProbeWithTimingStats(ctx, mxHosts, addr.Normalized, check.DefaultProbeCount)
	res.Details.SMTPStatus = stats.Result.Status
	res.Checks.CanConnectSMTP = stats.Result.Status != types.StatusUnknown

	if stats.Result.Status == types.StatusUnknown {
		e.throttle.RecordFailure(primary)
	} else {
		e.throttle.RecordSuccess(primary)
	}

	switch stats.Result.Status {
	case types.StatusRejected:
		res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons,
			fmt.Sprintf("mailbox rejected (%d %s)", stats.Result.ResponseCode, stats.Result.ResponseMessage))
		e.emailCache.Set(addr.Normalized, res, 0)
		return res

	case types.StatusUnknown:
		res.Valid = true
		res.Confidence = 0.5
		res.Checks.IsUnknown = true
		res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons,
			fmt.Sprintf("SMTP dialog inconclusive: %s", stats.Result.ResponseMessage))
		// Not cached: transient failures deserve a retry.
		return res
	}

	// Accepted. Differentiate a real mailbox from a catch-all.
	res.Checks.IsDeliverable = true
	res.Valid = true

	if !o.CatchAllCheck {
		return e.finishAccepted(addr, res, nil)
	}

	fake := catchAllPrefix + addr.Local + "@" + addr.Domain
	fakeStats := prober.ProbeWithTimingStats(ctx, mxHosts, fake, check.DefaultProbeCount)
	isCatchAll := fakeStats.Result.Status == types.StatusAccepted
	res.Checks.IsCatchAllDomain = isCatchAll
	res.Details.CatchAll = &isCatchAll

	// SPF and DMARC are advisory and independent; look them up together.
	var hasSPF, hasDMARC bool
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); hasSPF = resolver.CheckSPF(ctx, addr.Domain) }()
	go func() { defer wg.Done(); hasDMARC = resolver.CheckDMARC(ctx, addr.Domain) }()
	wg.Wait()

	signals := check.Analyze(check.CatchAllInput{
		Local:         addr.Local,
		Domain:        addr.Domain,
		IsCatchAll:    isCatchAll,
		RealAvgRcptTo: stats.AvgRcptTo,
		FakeAvgRcptTo: fakeStats.AvgRcptTo,
		MXCount:       len(mxHosts),
		HasSPF:        hasSPF,
		HasDMARC:      hasDMARC,
	})
	res.Details.CatchAllSignals = &signals

	return e.finishAccepted(addr, res, &signals)
}

// finishSkipped closes a result whose SMTP probe did not run: the
// address looked fine down to DNS, so it is probably deliverable, but
// nobody asked the server.
func (e *Engine) finishSkipped(res types.VerificationResult) types.VerificationResult {
	res.Valid = true
	res.Confidence = 0.70
	res.Checks.IsUnknown = true
	res.Details.SMTPStatus = types.StatusSkipped
	res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons, "SMTP probe skipped")
	return res
}

// finishAccepted synthesizes the confidence for an accepted RCPT TO,
// applies the catch-all discount when needed, and caches the result.
func (e *Engine) finishAccepted(addr parse.Email, res types.VerificationResult, signals *types.CatchAllSignals) types.VerificationResult {
	zOK := false

	if res.Checks.IsCatchAllDomain && signals != nil && signals.Timing != nil {
		timing := *signals.Timing
		res.Confidence = check.CatchAllConfidence(timing, signals.PatternMatch, signals.NameScore)
		res.Checks.IsUnknown = timing.Confidence <= 0.65
		zOK = timing.ZScore > 2

		res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons,
			"domain accepts any recipient (catch-all)",
			timing.Reason)
		if signals.PatternName != "" {
			res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons,
				fmt.Sprintf("local part pattern %q (%.2f)", signals.PatternName, signals.PatternMatch))
		}
		res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons,
			spfReason(signals.HasSPF), dmarcReason(signals.HasDMARC),
			fmt.Sprintf("%d MX host(s)", signals.MXCount))
	} else {
		res.Confidence = 0.95
		res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons, "mailbox accepted RCPT TO")
	}

	res.IsSafeToSend = res.Checks.IsValidSyntax &&
		res.Checks.IsValidDomain &&
		res.Checks.IsDeliverable &&
		!res.Checks.IsDisposableEmail &&
		!res.Checks.IsRoleBasedAccount &&
		(!res.Checks.IsCatchAllDomain || zOK)

	e.emailCache.Set(addr.Normalized, res, 0)
	e.log.WithFields(logrus.Fields{
		"email":      addr.Normalized,
		"confidence": res.Confidence,
		"catchAll":   res.Checks.IsCatchAllDomain,
	}).Debug("verification finished")
	return res
}

// VerifyMany verifies the addresses one at a time, in order. Sequential
// batching keeps the per-host throttle meaningful.
func (e *Engine) VerifyMany(ctx context.Context, emails []string, opts ...Options) []types.VerificationResult {
	results := make([]types.VerificationResult, len(emails))
	for i, email := range emails {
		results[i] = e.Verify(ctx, email, opts...)
	}
	return results
}

// ClearCaches empties the email and DNS caches.
func (e *Engine) ClearCaches() {
	e.emailCache.Clear()
	e.dnsCache.Clear()
}

// ClearThrottle drops all per-host throttle state.
func (e *Engine) ClearThrottle() {
	e.throttle.Clear()
}

func spfReason(has bool) string {
	if has {
		return "SPF policy present"
	}
	return "no SPF policy"
}

func dmarcReason(has bool) string {
	if has {
		return "DMARC policy present"
	}
	return "no DMARC policy"
}
