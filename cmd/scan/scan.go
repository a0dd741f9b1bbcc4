package scan

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/magelint/cmd/version"
	"github.com/scan-io-git/magelint/internal/collector"
	"github.com/scan-io-git/magelint/internal/fixer"
	"github.com/scan-io-git/magelint/internal/gate"
	"github.com/scan-io-git/magelint/internal/report"
	"github.com/scan-io-git/magelint/internal/rules"
	"github.com/scan-io-git/magelint/internal/scanner"
	"github.com/scan-io-git/magelint/pkg/shared/config"
	"github.com/scan-io-git/magelint/pkg/shared/errors"
	"github.com/scan-io-git/magelint/pkg/shared/files"
	"github.com/scan-io-git/magelint/pkg/shared/httpclient"
	"github.com/scan-io-git/magelint/pkg/shared/logger"
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	Exclude            string
	ExcludedExtensions string
	ExcludeDirs        string
	ExcludeFiles       string
	Format             string
	OutputPath         string
	FixableOnly        bool
	FailOn             string
}

// Global variables for configuration and command arguments
var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scan a Magento installation and print a JSON report
  magelint scan /var/www/magento

  # Scan a single module and write a SARIF report
  magelint scan --format sarif --output magelint.sarif app/code/Acme/Widget

  # Skip vendor code and JavaScript
  magelint scan --exclude-dir vendor --exclude-ext js /var/www/magento

  # Write an HTML report into a directory
  magelint scan --format html --output reports/ /var/www/magento

  # Run only rules the configured fixer can rewrite
  magelint scan --fixable-only /var/www/magento

  # Fail the build on any error or on raw SQL
  magelint scan --fail-on 'errors > 0 || "rawSqlQuery" in rules' /var/www/magento`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan [--exclude PATHS] [--exclude-ext EXTS] [--exclude-dir DIRS] [--exclude-file FILES] [--format/-f FORMAT] [--output/-o PATH] [--fixable-only] [--fail-on EXPR] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Analyse a Magento 2 source tree and render a report",
	Long: `Analyse a Magento 2 source tree and render a report.

Files are classified as php, phtml, xml, js and di (di.xml) and every rule runs over the
bucket it targets. Rules that target an empty bucket are skipped.

The --fail-on expression is CEL over errors, warnings, notes, total and rules. When it
evaluates to true the command exits with code 2.`,
	RunE: runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runScanCommand executes the scan command.
func runScanCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !hasFlags(cmd) {
		return cmd.Help()
	}

	log := logger.NewLogger(AppConfig, "core-scan")

	if err := validateScanArgs(&scanOptions, args); err != nil {
		log.Error("invalid scan arguments", "error", err)
		return errors.NewCommandError(err, errors.ExitCodeScanFailed)
	}

	return runScan(cmd.Context(), AppConfig, scanOptions, args[0], cmd.OutOrStdout(), log)
}

// runScan scans root, writes the rendered report to the output path or out, and
// evaluates the quality gate.
func runScan(ctx context.Context, cfg *config.Config, opts RunOptionsScan, root string, out io.Writer, log hclog.Logger) error {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	format := resolveFormat(opts.Format, cfg)
	reporter, err := report.New(format, report.Options{
		ToolName:       config.GetToolName(cfg),
		ToolVersion:    version.CoreVersion,
		InformationURI: config.GetInformationURI(cfg),
	})
	if err != nil {
		return errors.NewCommandError(fmt.Errorf("unsupported report format: %w", err), errors.ExitCodeScanFailed)
	}

	s := scanner.New(cfg, rules.Default(), newProvider(cfg, opts, log), version.CoreVersion, log)
	result, scanErr := s.Scan(ctx, collector.Options{
		Root:               root,
		ExcludedExtensions: config.SplitList(opts.ExcludedExtensions),
		ExcludeDirs:        config.SplitList(opts.ExcludeDirs),
		ExcludeFiles:       config.SplitList(opts.ExcludeFiles),
		ExcludePatterns:    config.SplitList(opts.Exclude),
		FixableOnly:        opts.FixableOnly,
	})
	if scanErr != nil && result == nil {
		log.Error("scan failed", "error", scanErr)
		return errors.NewCommandError(scanErr, errors.ExitCodeScanFailed)
	}
	if len(result.Diagnostics) > 0 {
		log.Warn("some rules could not be built and were skipped", "count", len(result.Diagnostics))
	}

	var buf bytes.Buffer
	if err := reporter.Render(&buf, result.Report); err != nil {
		log.Error("failed to render report", "format", format, "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to render %s report: %w", format, err), errors.ExitCodeScanFailed)
	}
	if err := writeReport(opts.OutputPath, format, buf.Bytes(), out, log); err != nil {
		log.Error("failed to write report", "error", err)
		return errors.NewCommandError(err, errors.ExitCodeScanFailed)
	}

	if scanErr != nil {
		log.Error("scan failed", "error", scanErr)
		return errors.NewCommandError(scanErr, errors.ExitCodeScanFailed)
	}

	expr := config.SetThen(opts.FailOn, cfg.Gate.FailOn)
	failed, err := gate.Evaluate(expr, gate.Summarize(result.Report))
	if err != nil {
		log.Error("failed to evaluate quality gate", "error", err)
		return errors.NewCommandError(err, errors.ExitCodeScanFailed)
	}
	if failed {
		log.Warn("quality gate failed", "expression", expr)
		return errors.NewCommandError(fmt.Errorf("quality gate failed: %s", expr), errors.ExitCodeGateFailed)
	}

	log.Info("scan command completed successfully", "found", result.Stats.Found)
	return nil
}

// newProvider returns the fixer client for fixable-only scans, nil otherwise.
func newProvider(cfg *config.Config, opts RunOptionsScan, log hclog.Logger) fixer.CapabilityProvider {
	if !opts.FixableOnly || cfg.Fixer.URL == "" {
		return nil
	}
	client := httpclient.InitializeRestyClient(log.Named("fixer"), cfg)
	return fixer.NewHTTPProvider(cfg.Fixer.URL, config.GetFixerToken(cfg), client)
}

// writeReport writes data to outputPath, or to out when no path is given.
func writeReport(outputPath, format string, data []byte, out io.Writer, log hclog.Logger) error {
	if outputPath == "" {
		_, err := out.Write(data)
		return err
	}

	path, err := resolveOutputPath(outputPath, format)
	if err != nil {
		return err
	}
	if err := files.WriteFile(path, data); err != nil {
		return fmt.Errorf("failed to write report to %q: %w", path, err)
	}
	log.Info("report saved to file", "path", path)
	return nil
}

// Initialize flags for the scan command.
func init() {
	ScanCmd.Flags().StringVar(&scanOptions.Exclude, "exclude", "", "Comma separated list of absolute file paths to skip. Paths are compared literally.")
	ScanCmd.Flags().StringVar(&scanOptions.ExcludedExtensions, "exclude-ext", "", "Comma separated list of file extensions to skip (e.g., js,xml).")
	ScanCmd.Flags().StringVar(&scanOptions.ExcludeDirs, "exclude-dir", "", "Comma separated list of directory names that are not descended into.")
	ScanCmd.Flags().StringVar(&scanOptions.ExcludeFiles, "exclude-file", "", "Comma separated list of file names to skip.")
	ScanCmd.Flags().StringVarP(&scanOptions.Format, "format", "f", "", "Format for the report: json, sarif or html. Defaults to report.format from the config, then json.")
	ScanCmd.Flags().StringVarP(&scanOptions.OutputPath, "output", "o", "", "Path to the output file or directory. The report is printed to stdout when omitted.")
	ScanCmd.Flags().BoolVar(&scanOptions.FixableOnly, "fixable-only", false, "Run only the rules the configured fixer service can rewrite.")
	ScanCmd.Flags().StringVar(&scanOptions.FailOn, "fail-on", "", "CEL expression over errors, warnings, notes, total and rules. The command exits with code 2 when it is true.")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
}
