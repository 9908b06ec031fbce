package deliverkit

import "time"

// Options tunes a single verification call. A zero duration, sender or
// port field means "use the default"; the boolean toggles are taken as
// given, so a zero SMTPCheck or CatchAllCheck disables that probe.
type Options struct {
	// DNSTimeout bounds each DNS lookup. Default: 5s
	DNSTimeout time.Duration
	// SMTPTimeout bounds each SMTP operation. Default: 10s
	SMTPTimeout time.Duration
	// SMTPCheck enables the RCPT TO probe. Default: true
	SMTPCheck bool
	// CatchAllCheck enables the synthetic-recipient probe that
	// differentiates catch-all domains. Default: true
	CatchAllCheck bool
	// SenderEmail is used in MAIL FROM and derives the EHLO name.
	// Default: "test@example.com"
	SenderEmail string
	// SMTPPort is the probe port. Default: 25
	SMTPPort int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		DNSTimeout:    5 * time.Second,
		SMTPTimeout:   10 * time.Second,
		SMTPCheck:     true,
		CatchAllCheck: true,
		SenderEmail:   "test@example.com",
		SMTPPort:      25,
	}
}

// withDefaults back-fills unset scalar fields. The boolean toggles are
// taken as given: an explicitly passed Options struct states them.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.DNSTimeout <= 0 {
		o.DNSTimeout = def.DNSTimeout
	}
	if o.SMTPTimeout <= 0 {
		o.SMTPTimeout = def.SMTPTimeout
	}
	if o.SenderEmail == "" {
		o.SenderEmail = def.SenderEmail
	}
	if o.SMTPPort <= 0 {
		o.SMTPPort = def.SMTPPort
	}
	return o
}
