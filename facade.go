package deliverkit

import (
	"context"
	"sync"
	"time"

	"github.com/optimode/deliverkit/check"
	"github.com/optimode/deliverkit/types"
)

// The free functions below are sugar over a process-wide default
// engine, so that simple consumers never have to hold an Engine.
// Tests and long-running services should create their own with New().

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

func getDefaultEngine() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = New()
	})
	return defaultEngine
}

// VerifyEmail verifies a single address using the default engine.
func VerifyEmail(ctx context.Context, email string, opts ...Options) types.VerificationResult {
	return getDefaultEngine().Verify(ctx, email, opts...)
}

// VerifyEmails verifies the addresses sequentially using the default
// engine.
func VerifyEmails(ctx context.Context, emails []string, opts ...Options) []types.VerificationResult {
	return getDefaultEngine().VerifyMany(ctx, emails, opts...)
}

// ClearCaches empties the default engine's email and DNS caches.
func ClearCaches() {
	getDefaultEngine().ClearCaches()
}

// ClearThrottle drops the default engine's per-host throttle state.
func ClearThrottle() {
	getDefaultEngine().ClearThrottle()
}

// IsValidFormat reports whether email is syntactically plausible.
// Re-exported from the check package.
func IsValidFormat(email string) bool {
	return check.IsValidFormat(email)
}

// CheckDNS resolves the MX records for domain (with the implicit-MX
// fallback) using a one-shot resolver with the given timeout.
func CheckDNS(ctx context.Context, domain string, timeout time.Duration) types.DNSResult {
	return check.NewResolver(timeout).CheckDNS(ctx, domain)
}

// SMTPProbe runs a single RCPT TO dialog against one MX host.
func SMTPProbe(ctx context.Context, host, recipient string, cfg check.SMTPConfig) types.SMTPResult {
	return check.NewProber(cfg).Probe(ctx, host, recipient)
}

// ProbeWithFallback probes the hosts in order until one gives a
// definitive answer.
func ProbeWithFallback(ctx context.Context, hosts []string, recipient string, cfg check.SMTPConfig) types.SMTPResult {
	return check.NewProber(cfg).ProbeWithFallback(ctx, hosts, recipient)
}

// ProbeWithTimingStats runs count sequential probes and aggregates the
// RCPT TO timings.
func ProbeWithTimingStats(ctx context.Context, hosts []string, recipient string, count int, cfg check.SMTPConfig) types.TimingStats {
	return check.NewProber(cfg).ProbeWithTimingStats(ctx, hosts, recipient, count)
}
