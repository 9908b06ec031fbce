// Package types contains the shared types for deliverkit.
// This package does not import anything from other deliverkit packages
// to avoid circular imports.
package types

// SMTPStatus is the outcome class of an SMTP RCPT TO probe.
type SMTPStatus = string

const (
	// StatusAccepted means the server answered RCPT TO with a 2xx code.
	StatusAccepted SMTPStatus = "accepted"
	// StatusRejected means the server answered RCPT TO with a 5xx code.
	StatusRejected SMTPStatus = "rejected"
	// StatusUnknown covers 4xx replies, timeouts, connect errors and
	// dialog failures before RCPT TO.
	StatusUnknown SMTPStatus = "unknown"
	// StatusSkipped means the probe was not performed.
	StatusSkipped SMTPStatus = "skipped"
)

// MXRecord is a mail exchanger with its priority.
type MXRecord struct {
	Exchange string `json:"exchange"`
	Priority uint16 `json:"priority"`
}

// DNSResult is the outcome of an MX lookup, including the RFC 5321
// implicit-MX fallback where the domain's A record stands in as a
// priority-0 exchanger.
type DNSResult struct {
	MXRecords   []MXRecord `json:"mxRecords"`
	HasValidDNS bool       `json:"hasValidDns"`
}

// SMTPTiming records per-stage probe durations in milliseconds.
// Total is the end-to-end probe wall time.
type SMTPTiming struct {
	Connect  int64 `json:"connect"`
	Banner   int64 `json:"banner"`
	Ehlo     int64 `json:"ehlo"`
	MailFrom int64 `json:"mailFrom"`
	RcptTo   int64 `json:"rcptTo"`
	Total    int64 `json:"total"`
}

// SMTPResult is the outcome of a single probe against one MX host.
type SMTPResult struct {
	Status          SMTPStatus  `json:"status"`
	ResponseCode    int         `json:"responseCode,omitempty"`
	ResponseMessage string      `json:"responseMessage,omitempty"`
	ResponseTime    int64       `json:"responseTime,omitempty"`
	Timing          *SMTPTiming `json:"timing,omitempty"`
}

// TimingStats aggregates several sequential probes of the same recipient.
// Averages are taken over probes whose RcptTo duration is positive.
// Result is the last non-unknown probe result if any, else the final one.
type TimingStats struct {
	Result    SMTPResult   `json:"result"`
	Timings   []SMTPTiming `json:"timings"`
	AvgRcptTo float64      `json:"avgRcptToTime"`
	MinRcptTo float64      `json:"minRcptToTime"`
	MaxRcptTo float64      `json:"maxRcptToTime"`
}

// TimingAnalysis is the statistical comparison of real versus synthetic
// RCPT TO response times, expressed as a z-score confidence band.
type TimingAnalysis struct {
	Confidence float64 `json:"confidence"`
	ZScore     float64 `json:"zScore"`
	Reason     string  `json:"reason"`
}

// CatchAllSignals collects the evidence used to differentiate a real
// mailbox on a catch-all domain from an arbitrary accepted address.
type CatchAllSignals struct {
	PatternMatch float64         `json:"patternMatch"`
	PatternName  string          `json:"patternName,omitempty"`
	NameScore    float64         `json:"nameScore"`
	TimingScore  float64         `json:"timingScore"`
	ZScore       float64         `json:"zScore,omitempty"`
	HasSPF       bool            `json:"hasSPF"`
	HasDMARC     bool            `json:"hasDMARC"`
	MXCount      int             `json:"mxCount"`
	Timing       *TimingAnalysis `json:"timingAnalysis,omitempty"`
}

// MailProvider identifies the hosting provider behind a domain's MX set.
type MailProvider struct {
	Name string `json:"name"`
	Type string `json:"type"` // "business" or "free"
}

// VerificationChecks are the independent boolean facts established
// during verification.
type VerificationChecks struct {
	IsValidSyntax      bool `json:"isValidSyntax"`
	IsValidDomain      bool `json:"isValidDomain"`
	CanConnectSMTP     bool `json:"canConnectSmtp"`
	IsDeliverable      bool `json:"isDeliverable"`
	IsCatchAllDomain   bool `json:"isCatchAllDomain"`
	IsDisposableEmail  bool `json:"isDisposableEmail"`
	IsRoleBasedAccount bool `json:"isRoleBasedAccount"`
	IsFreeEmail        bool `json:"isFreeEmailProvider"`
	IsUnknown          bool `json:"isUnknown"`
}

// VerificationDetails carries the supporting evidence for a result.
// CatchAll is nil when the catch-all probe did not run.
type VerificationDetails struct {
	FormatValid       bool             `json:"formatValid"`
	MXRecords         []MXRecord       `json:"mxRecords"`
	SMTPStatus        SMTPStatus       `json:"smtpStatus"`
	CatchAll          *bool            `json:"catchAll"`
	Provider          *MailProvider    `json:"provider"`
	Suggestion        string           `json:"suggestion,omitempty"`
	CatchAllSignals   *CatchAllSignals `json:"catchAllSignals,omitempty"`
	ConfidenceReasons []string         `json:"confidenceReasons"`
}

// VerificationResult is the full outcome of verifying one address.
type VerificationResult struct {
	Email        string              `json:"email"`
	Valid        bool                `json:"valid"`
	Confidence   float64             `json:"confidence"`
	IsSafeToSend bool                `json:"isSafeToSend"`
	Checks       VerificationChecks  `json:"checks"`
	Details      VerificationDetails `json:"details"`
}
