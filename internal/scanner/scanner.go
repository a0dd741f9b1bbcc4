package scanner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/magelint/internal/ci"
	"github.com/scan-io-git/magelint/internal/collector"
	"github.com/scan-io-git/magelint/internal/findings"
	"github.com/scan-io-git/magelint/internal/fixer"
	"github.com/scan-io-git/magelint/internal/git"
	"github.com/scan-io-git/magelint/internal/heuristics"
	"github.com/scan-io-git/magelint/internal/processor"
	"github.com/scan-io-git/magelint/pkg/shared/config"
)

// Result is the outcome of one scan.
type Result struct {
	Report      *findings.Report
	Errors      []string               // collection problems, never fatal
	Diagnostics []processor.Diagnostic // processors that could not be built
	Stats       processor.Stats
}

// Scanner runs every registered processor over one source tree.
type Scanner struct {
	cfg         *config.Config
	registry    *processor.Registry
	fixer       fixer.CapabilityProvider // consulted only in fixable-only mode
	toolVersion string
	logger      hclog.Logger
	now         func() time.Time
	lookupEnv   ci.LookupFunc
}

// New creates a Scanner. A nil provider makes fixable-only scans skip every processor.
func New(cfg *config.Config, registry *processor.Registry, provider fixer.CapabilityProvider, toolVersion string, logger hclog.Logger) *Scanner {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Scanner{
		cfg:         cfg,
		registry:    registry,
		fixer:       provider,
		toolVersion: toolVersion,
		logger:      logger,
		now:         time.Now,
		lookupEnv:   os.Getenv,
	}
}

// Scan collects files under opts.Root, dispatches them and returns the merged report.
// Only a processor failure is returned as an error; the partial result is returned with it.
func (s *Scanner) Scan(ctx context.Context, opts collector.Options) (*Result, error) {
	cfgCollector, err := collector.NewConfiguration(s.applyDefaults(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare scan configuration: %w", err)
	}
	root := cfgCollector.Root()

	classification, collectErrs := collector.New(cfgCollector, s.logger.Named("collector")).Collect()
	for _, e := range collectErrs {
		s.logger.Warn("collection problem", "error", e)
	}

	report := findings.NewReport(root, s.now().UTC())
	report.Metadata.ScanID = uuid.New().String()
	report.Metadata.ToolVersion = s.toolVersion
	s.fillRevision(report, root)

	result := &Result{
		Report: report,
		Errors: collectErrs,
	}

	session := heuristics.NewSession(s.logger.Named("session"))
	processors, diagnostics := s.registry.Build(session, s.logger)
	result.Diagnostics = diagnostics

	dispatchOpts := processor.DispatchOptions{FixableOnly: cfgCollector.FixableOnly()}
	if dispatchOpts.FixableOnly {
		dispatchOpts.Fixable = s.fixableRules(ctx)
	}

	stats, err := processor.NewDispatcher(s.logger.Named("dispatcher")).Dispatch(processors, classification, report, dispatchOpts)
	result.Stats = stats
	s.logger.Debug("class index built", "classes", session.Classes())
	if err != nil {
		return result, err
	}

	s.logger.Info("scan completed",
		"root", root,
		"scan_id", report.Metadata.ScanID,
		"files", classification.Total(),
		"processors", len(stats.Ran),
		"found", stats.Found,
	)
	return result, nil
}

// applyDefaults merges configured scan defaults into opts. Config lists come first and
// flag values extend them; extensions given on the command line replace the configured set.
func (s *Scanner) applyDefaults(opts collector.Options) collector.Options {
	if len(opts.Extensions) == 0 {
		opts.Extensions = append([]string{}, s.cfg.Scan.Extensions...)
	}
	opts.ExcludeDirs = config.MergeLists(config.DefaultExcludeDirs(), s.cfg.Scan.ExcludeDirs, opts.ExcludeDirs)
	opts.ExcludeFiles = config.MergeLists(s.cfg.Scan.ExcludeFiles, opts.ExcludeFiles)
	return opts
}

func (s *Scanner) fixableRules(ctx context.Context) map[string]bool {
	if s.fixer == nil {
		s.logger.Warn("fixable-only scan without a fixer, every processor is skipped")
		return map[string]bool{}
	}
	rules, err := s.fixer.FixableRules(ctx)
	if err != nil {
		s.logger.Error("failed to query fixer capabilities", "error", err)
		return map[string]bool{}
	}
	s.logger.Debug("fixer capabilities", "rules", len(rules))
	return rules
}

// fillRevision records branch and commit from the enclosing git repository, falling back
// to CI variables for trees that are not a checkout.
func (s *Scanner) fillRevision(report *findings.Report, root string) {
	md, err := git.CollectMetadata(root)
	if err != nil {
		s.logger.Debug("repository metadata unavailable", "path", root, "error", err)
	}
	report.Metadata.Branch = md.Branch
	report.Metadata.Commit = md.Commit
	if md.Commit != "" {
		return
	}

	env, ok := ci.DetectWithLookup(s.lookupEnv)
	if !ok {
		return
	}
	s.logger.Debug("using CI metadata", "ci", env.Kind.String())
	report.Metadata.Branch = config.SetThen(report.Metadata.Branch, env.Branch)
	report.Metadata.Commit = env.Commit
}
