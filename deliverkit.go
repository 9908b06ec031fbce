// Package deliverkit determines whether a message sent to an email
// address is likely to be accepted by the receiving mail system,
// without sending actual mail. It assigns a calibrated confidence
// score together with structured diagnostic flags.
//
// Basic usage:
//
//	result := deliverkit.VerifyEmail(ctx, "user@example.com")
//
// With options:
//
//	opts := deliverkit.DefaultOptions()
//	opts.SMTPCheck = false
//	result := deliverkit.VerifyEmail(ctx, "user@example.com", opts)
//
// The pipeline runs syntax validation, MX resolution (with the
// RFC 5321 implicit-MX fallback), a throttled SMTP RCPT TO probe, and
// a catch-all differentiation pass that compares response timings of
// the real recipient against a synthetic one. DATA is never issued.
package deliverkit

import "github.com/optimode/deliverkit/types"

// VerificationResult is a re-export from the types package so that
// consumers don't need to import the types package directly.
type VerificationResult = types.VerificationResult

// VerificationChecks is a re-export.
type VerificationChecks = types.VerificationChecks

// VerificationDetails is a re-export.
type VerificationDetails = types.VerificationDetails

// MXRecord is a re-export.
type MXRecord = types.MXRecord

// DNSResult is a re-export.
type DNSResult = types.DNSResult

// SMTPResult is a re-export.
type SMTPResult = types.SMTPResult

// SMTPTiming is a re-export.
type SMTPTiming = types.SMTPTiming

// TimingStats is a re-export.
type TimingStats = types.TimingStats

// CatchAllSignals is a re-export.
type CatchAllSignals = types.CatchAllSignals

// MailProvider is a re-export.
type MailProvider = types.MailProvider

// SMTP status constants re-exported.
const (
	StatusAccepted = types.StatusAccepted
	StatusRejected = types.StatusRejected
	StatusUnknown  = types.StatusUnknown
	StatusSkipped  = types.StatusSkipped
)
