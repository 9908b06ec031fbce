// Command deliverkit verifies email deliverability from the terminal.
//
//	deliverkit check [flags] <email...>
//
// Exit code 0 when every probed address is valid, 1 otherwise or on
// argument errors.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/optimode/deliverkit"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("deliverkit", pflag.ContinueOnError)
	jsonOut := flags.BoolP("json", "j", false, "print raw JSON results")
	noSMTP := flags.Bool("no-smtp", false, "skip the SMTP RCPT TO probe")
	noCatchAll := flags.Bool("no-catchall", false, "skip the catch-all differentiation probe")
	timeoutMS := flags.IntP("timeout", "t", 0, "per-operation timeout in milliseconds")
	showVersion := flags.BoolP("version", "v", false, "print version and exit")
	verbose := flags.Bool("verbose", false, "enable debug logging")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: deliverkit check [flags] <email...>\n\nFlags:\n%s", flags.FlagUsages())
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *showVersion {
		fmt.Printf("deliverkit %s\n", version)
		return 0
	}

	rest := flags.Args()
	if len(rest) < 2 || rest[0] != "check" {
		flags.Usage()
		return 1
	}
	emails := rest[1:]

	opts := deliverkit.DefaultOptions()
	if *noSMTP {
		opts.SMTPCheck = false
	}
	if *noCatchAll {
		opts.CatchAllCheck = false
	}
	if *timeoutMS > 0 {
		d := time.Duration(*timeoutMS) * time.Millisecond
		opts.DNSTimeout = d
		opts.SMTPTimeout = d
	}

	engine := deliverkit.New()
	if *verbose {
		logger := logrus.New()
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		engine.WithLogger(logger)
	}

	results := engine.VerifyMany(context.Background(), emails, opts)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			_ = enc.Encode(results[0])
		} else {
			_ = enc.Encode(results)
		}
	} else {
		for i, res := range results {
			if i > 0 {
				fmt.Println()
			}
			printResult(res)
		}
	}

	for _, res := range results {
		if !res.Valid {
			return 1
		}
	}
	return 0
}

func printResult(res deliverkit.VerificationResult) {
	if res.Valid {
		color.Green("✔ %s", res.Email)
	} else {
		color.Red("✘ %s", res.Email)
	}

	fmt.Printf("  confidence:   %.2f\n", res.Confidence)
	fmt.Printf("  smtp status:  %s\n", res.Details.SMTPStatus)
	fmt.Printf("  safe to send: %s\n", yesNo(res.IsSafeToSend))

	if res.Details.CatchAll != nil {
		fmt.Printf("  catch-all:    %s\n", yesNo(*res.Details.CatchAll))
	}
	if res.Details.Provider != nil {
		fmt.Printf("  provider:     %s (%s)\n", res.Details.Provider.Name, res.Details.Provider.Type)
	}
	if res.Details.Suggestion != "" {
		color.Yellow("  did you mean @%s?", res.Details.Suggestion)
	}
	if mx := deliverkit.GetPrimaryMX(res.Details.MXRecords); mx != "" {
		fmt.Printf("  primary mx:   %s\n", mx)
	}

	var flagged []string
	if res.Checks.IsDisposableEmail {
		flagged = append(flagged, "disposable")
	}
	if res.Checks.IsRoleBasedAccount {
		flagged = append(flagged, "role-based")
	}
	if res.Checks.IsFreeEmail {
		flagged = append(flagged, "free provider")
	}
	if len(flagged) > 0 {
		color.Yellow("  flags:        %s", strings.Join(flagged, ", "))
	}

	if len(res.Details.ConfidenceReasons) > 0 {
		fmt.Println("  reasons:")
		for _, r := range res.Details.ConfidenceReasons {
			fmt.Printf("    - %s\n", r)
		}
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
