// Command crosspost-route evaluates a rule file against one content item and prints the report
//
//	crosspost-route -rules rules.yaml -text "v1.2 is out" -tags release,go -dry-run
//	crosspost-route -rules rules.yaml -content post.json
//
// adapters come from CORE_ADAPTERS_*, logs go to stderr and the JSON report to stdout
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"crosspost/internal/adapters"
	"crosspost/internal/core/content"
	"crosspost/internal/core/rules"
	"crosspost/internal/modkit"
	"crosspost/internal/modkit/module"
	"crosspost/internal/platform/config"
	perr "crosspost/internal/platform/errors"
	"crosspost/internal/platform/logger"
	"crosspost/internal/services/publish/domain"
	publishmod "crosspost/internal/services/publish/module"
)

func main() {
	// module loggers share the root, keep stdout for the report
	opt := logger.FromEnv()
	opt.Writer = os.Stderr
	logger.Init(opt)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("crosspost-route", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		fRules   = fs.String("rules", "", "rule file (yaml or json)")
		fContent = fs.String("content", "", "content json file, - reads stdin")
		fText    = fs.String("text", "", "content text when -content is not given")
		fTags    = fs.String("tags", "", "comma separated tags for -text")
		fVerify  = fs.Bool("verify", true, "verify every adapter before publishing")
		fDryRun  = fs.Bool("dry-run", false, "print the planned tasks without publishing")
		fLevel   = fs.String("log-level", "info", "log level")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	l := logger.New(logger.Options{Level: *fLevel, Format: "console", Writer: stderr, Service: "crosspost-route"})

	if *fRules == "" {
		l.Error().Msg("-rules is required")
		return 2
	}
	set, err := rules.LoadFile(*fRules)
	if err != nil {
		l.Error().Err(err).Strs("details", detailsOf(err)).Msg("invalid rule file")
		return 2
	}
	c, err := readContent(*fContent, *fText, *fTags, stdin)
	if err != nil {
		l.Error().Err(err).Msg("invalid content")
		return 2
	}

	reg, err := adapters.FromConfig(config.New().Prefix("CORE_ADAPTERS_"))
	if err != nil {
		l.Error().Err(err).Msg("adapter registry")
		return 2
	}

	m := publishmod.NewWith(
		modkit.Deps{Log: *l, Cfg: config.New(), Adapters: reg},
		publishmod.Options{Rules: set.Rules, VerifyGate: *fVerify, Ledger: publishmod.StoreMemory, Events: publishmod.StoreNone},
	)
	pub := module.MustPortsOf[domain.PublisherPort](m)

	rep, err := pub.Publish(ctx, domain.PublishInput{Content: c, DryRun: *fDryRun})

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if eerr := enc.Encode(rep); eerr != nil {
		l.Error().Err(eerr).Msg("write report")
		return 1
	}
	if err != nil {
		l.Error().Err(err).Str("batch_id", rep.BatchID).Msg("publish failed")
		return 1
	}
	return 0
}

func readContent(path, text, tags string, stdin io.Reader) (content.Content, error) {
	if path == "" {
		var c content.Content
		c.Text = text
		for t := range strings.SplitSeq(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				c.Tags = append(c.Tags, t)
			}
		}
		return c, nil
	}

	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return content.Content{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "open content file %s", path)
		}
		defer f.Close()
		r = f
	}
	var c content.Content
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return content.Content{}, perr.Wrap(err, perr.ErrorCodeJSON, "decode content")
	}
	return c, nil
}

func detailsOf(err error) []string {
	if e, ok := perr.As(err); ok {
		return e.Details()
	}
	return nil
}
