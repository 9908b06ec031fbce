// Package check contains the verification stages: format validation,
// DNS resolution, the SMTP RCPT TO prober and the catch-all analyzer.
// The Engine in the root package orchestrates them; each stage can also
// be used on its own.
package check
