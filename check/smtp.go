package check

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/optimode/deliverkit/internal/parse"
	"github.com/optimode/deliverkit/types"
)

const (
	// DefaultSMTPTimeout bounds each SMTP operation (connect, read).
	DefaultSMTPTimeout = 10 * time.Second
	// DefaultSMTPPort is the plain SMTP relay port.
	DefaultSMTPPort = 25
	// DefaultProbeCount is how many probes ProbeWithTimingStats runs.
	DefaultProbeCount = 2
	// DefaultProbeDelay is the pause between consecutive probes.
	// Probing back-to-back with zero delay invites rate limiting.
	DefaultProbeDelay = 100 * time.Millisecond
)

// SMTPConfig configures the prober.
type SMTPConfig struct {
	// SenderEmail is sent in MAIL FROM; its domain is used for EHLO.
	SenderEmail string
	// Port is the SMTP port (default 25).
	Port int
	// Timeout bounds each probe operation (default 10s).
	Timeout time.Duration
	// ProbeDelay is the pause between probes in ProbeWithTimingStats
	// (default 100ms).
	ProbeDelay time.Duration
	// Dial is injectable for testing. Defaults to a net.Dialer.
	Dial func(ctx context.Context, network, address string) (net.Conn, error)
}

// Prober performs one-shot RCPT TO dialogs against MX hosts, recording
// per-stage timings. DATA is never issued and no TLS is negotiated.
type Prober struct {
	cfg SMTPConfig
	log logrus.FieldLogger
}

// NewProber creates a prober. Zero-value config fields fall back to
// the defaults.
func NewProber(cfg SMTPConfig) *Prober {
	if cfg.SenderEmail == "" {
		cfg.SenderEmail = "test@example.com"
	}
	if cfg.Port <= 0 {
		cfg.Port = DefaultSMTPPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSMTPTimeout
	}
	if cfg.ProbeDelay <= 0 {
		cfg.ProbeDelay = DefaultProbeDelay
	}
	if cfg.Dial == nil {
		d := &net.Dialer{}
		cfg.Dial = d.DialContext
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Prober{cfg: cfg, log: logger}
}

// SetLogger replaces the prober's logger (silent by default).
func (p *Prober) SetLogger(log logrus.FieldLogger) {
	if log != nil {
		p.log = log
	}
}

// Probe runs the full dialog against a single MX host:
// CONNECT → BANNER → EHLO (HELO fallback) → MAIL FROM → RCPT TO → QUIT.
// A 2xx to RCPT TO yields accepted, a 5xx rejected; everything else,
// including timeouts and connect errors, yields unknown. The socket is
// closed on every exit path.
func (p *Prober) Probe(ctx context.Context, host, recipient string) types.SMTPResult {
	start := time.Now()
	timing := &types.SMTPTiming{}

	finish := func(res types.SMTPResult) types.SMTPResult {
		timing.Total = msSince(start)
		res.Timing = timing
		res.ResponseTime = timing.Total
		p.log.WithFields(logrus.Fields{
			"host":      host,
			"recipient": recipient,
			"status":    res.Status,
			"code":      res.ResponseCode,
			"ms":        timing.Total,
		}).Debug("smtp probe finished")
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	address := net.JoinHostPort(host, strconv.Itoa(p.cfg.Port))
	conn, err := p.cfg.Dial(ctx, "tcp", address)
	if err != nil {
		return finish(types.SMTPResult{
			Status:          types.StatusUnknown,
			ResponseMessage: fmt.Sprintf("connect to %s: %v", address, err),
		})
	}
	defer func() { _ = conn.Close() }()
	timing.Connect = msSince(start)

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	// BANNER
	stage := time.Now()
	code, msg, err := p.readReply(conn, r)
	timing.Banner = msSince(stage)
	if err != nil {
		return finish(unknownResult("read banner", err))
	}
	if code < 200 || code >= 300 {
		return finish(types.SMTPResult{
			Status:          types.StatusUnknown,
			ResponseCode:    code,
			ResponseMessage: msg,
		})
	}

	// EHLO, with a single HELO fallback. The fallback time is charged
	// to the same ehlo slot.
	stage = time.Now()
	code, msg, err = p.command(conn, r, w, "EHLO "+p.heloName())
	if err == nil && (code < 200 || code >= 300) {
		code, msg, err = p.command(conn, r, w, "HELO localhost")
	}
	timing.Ehlo = msSince(stage)
	if err != nil {
		return finish(unknownResult("EHLO", err))
	}
	if code < 200 || code >= 300 {
		return finish(types.SMTPResult{
			Status:          types.StatusUnknown,
			ResponseCode:    code,
			ResponseMessage: msg,
		})
	}

	// MAIL FROM
	stage = time.Now()
	code, msg, err = p.command(conn, r, w, fmt.Sprintf("MAIL FROM:<%s>", p.cfg.SenderEmail))
	timing.MailFrom = msSince(stage)
	if err != nil {
		return finish(unknownResult("MAIL FROM", err))
	}
	if code < 200 || code >= 300 {
		return finish(types.SMTPResult{
			Status:          types.StatusUnknown,
			ResponseCode:    code,
			ResponseMessage: msg,
		})
	}

	// RCPT TO
	stage = time.Now()
	code, msg, err = p.command(conn, r, w, fmt.Sprintf("RCPT TO:<%s>", recipient))
	timing.RcptTo = msSince(stage)
	if err != nil {
		return finish(unknownResult("RCPT TO", err))
	}

	// QUIT is fire-and-forget.
	_, _ = w.WriteString("QUIT\r\n")
	_ = w.Flush()

	status := types.StatusUnknown
	switch {
	case code >= 200 && code < 300:
		status = types.StatusAccepted
	case code >= 500 && code < 600:
		status = types.StatusRejected
	}
	return finish(types.SMTPResult{
		Status:          status,
		ResponseCode:    code,
		ResponseMessage: msg,
	})
}

// ProbeWithFallback probes hosts in order and returns as soon as one
// gives a definitive answer (accepted or rejected). When every host
// yields unknown, the last unknown is returned.
func (p *Prober) ProbeWithFallback(ctx context.Context, hosts []string, recipient string) types.SMTPResult {
	last := types.SMTPResult{
		Status:          types.StatusUnknown,
		ResponseMessage: "no MX hosts to probe",
	}
	for _, host := range hosts {
		select {
		case <-ctx.Done():
			last.ResponseMessage = "context cancelled"
			return last
		default:
		}

		res := p.Probe(ctx, host, recipient)
		if res.Status != types.StatusUnknown {
			return res
		}
		last = res
	}
	return last
}

// ProbeWithTimingStats runs count sequential probes (DefaultProbeCount
// when count <= 0) of the same recipient against the same host list,
// pausing between probes, and aggregates the RCPT TO timings. The
// reported result is the last non-unknown result if any.
func (p *Prober) ProbeWithTimingStats(ctx context.Context, hosts []string, recipient string, count int) types.TimingStats {
	if count <= 0 {
		count = DefaultProbeCount
	}

	stats := types.TimingStats{}
	var lastDefinitive *types.SMTPResult

	for i := 0; i < count; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(p.cfg.ProbeDelay):
			}
		}

		res := p.ProbeWithFallback(ctx, hosts, recipient)
		if res.Timing != nil {
			stats.Timings = append(stats.Timings, *res.Timing)
		}
		if res.Status != types.StatusUnknown {
			r := res
			lastDefinitive = &r
		}
		stats.Result = res
	}

	if lastDefinitive != nil {
		stats.Result = *lastDefinitive
	}

	// Aggregate over probes that actually reached RCPT TO.
	n := 0
	var sum float64
	for _, t := range stats.Timings {
		if t.RcptTo <= 0 {
			continue
		}
		v := float64(t.RcptTo)
		sum += v
		if n == 0 || v < stats.MinRcptTo {
			stats.MinRcptTo = v
		}
		if v > stats.MaxRcptTo {
			stats.MaxRcptTo = v
		}
		n++
	}
	if n > 0 {
		stats.AvgRcptTo = sum / float64(n)
	}
	return stats
}

// heloName is the sender domain, or "localhost" when the sender email
// has no usable domain.
func (p *Prober) heloName() string {
	if d := parse.Domain(p.cfg.SenderEmail); d != "" {
		return d
	}
	return "localhost"
}

// command sends one SMTP command and reads the reply.
func (p *Prober) command(conn net.Conn, r *bufio.Reader, w *bufio.Writer, cmd string) (int, string, error) {
	if err := conn.SetDeadline(time.Now().Add(p.cfg.Timeout)); err != nil {
		return 0, "", fmt.Errorf("set deadline: %w", err)
	}
	if _, err := w.WriteString(cmd + "\r\n"); err != nil {
		return 0, "", err
	}
	if err := w.Flush(); err != nil {
		return 0, "", err
	}
	return readReply(r)
}

// readReply applies the per-operation deadline and reads one reply.
func (p *Prober) readReply(conn net.Conn, r *bufio.Reader) (int, string, error) {
	if err := conn.SetDeadline(time.Now().Add(p.cfg.Timeout)); err != nil {
		return 0, "", fmt.Errorf("set deadline: %w", err)
	}
	return readReply(r)
}

// readReply reads a complete, possibly multi-line SMTP reply: lines are
// consumed until one carries the three-digit code followed by a space.
func readReply(r *bufio.Reader) (code int, full string, err error) {
	var lines []string
	for {
		line, readErr := r.ReadString('\n')
		if readErr != nil {
			return 0, "", fmt.Errorf("read SMTP reply: %w", readErr)
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 3 {
			return 0, "", errors.New("SMTP reply line too short")
		}
		lines = append(lines, line)
		// A '-' after the code marks a continuation line.
		if len(line) < 4 || line[3] != '-' {
			break
		}
	}

	last := lines[len(lines)-1]
	code, convErr := strconv.Atoi(last[:3])
	if convErr != nil {
		return 0, "", fmt.Errorf("invalid SMTP reply code %q", last[:3])
	}
	return code, strings.Join(lines, " | "), nil
}

func unknownResult(op string, err error) types.SMTPResult {
	return types.SMTPResult{
		Status:          types.StatusUnknown,
		ResponseMessage: fmt.Sprintf("%s: %v", op, err),
	}
}

func msSince(t time.Time) int64 {
	return time.Since(t).Milliseconds()
}
