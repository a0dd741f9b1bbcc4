package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scan-io-git/magelint/internal/report"
	"github.com/scan-io-git/magelint/pkg/shared/config"
	"github.com/scan-io-git/magelint/pkg/shared/files"
)

// defaultReportName is used when --output points at a directory.
const defaultReportName = "magelint-report"

// validateScanArgs validates the arguments provided to the scan command.
func validateScanArgs(options *RunOptionsScan, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one target path must be specified, got %d", len(args))
	}
	if strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("the target path is empty")
	}

	if options.Format != "" {
		format := strings.ToLower(options.Format)
		if _, err := report.New(format, report.Options{}); err != nil {
			return fmt.Errorf("the 'format' flag must be one of %s: %q", strings.Join(report.Formats, ", "), options.Format)
		}
		options.Format = format
	}
	return nil
}

// hasFlags reports whether any flag was set on the command line.
func hasFlags(cmd *cobra.Command) bool {
	changed := false
	cmd.Flags().Visit(func(*pflag.Flag) { changed = true })
	return changed
}

// resolveFormat picks the flag value, then the configured default, then json.
func resolveFormat(flag string, cfg *config.Config) string {
	if cfg == nil {
		return config.SetThen(strings.ToLower(flag), report.FormatJSON)
	}
	return strings.ToLower(config.SetThen(flag, config.SetThen(cfg.Report.Format, report.FormatJSON)))
}

// resolveOutputPath turns a directory output into <dir>/magelint-report.<ext>.
func resolveOutputPath(outputPath, format string) (string, error) {
	path, err := files.AbsPath(outputPath)
	if err != nil {
		return "", err
	}

	isDir := strings.HasSuffix(outputPath, string(os.PathSeparator)) || strings.HasSuffix(outputPath, "/")
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		isDir = true
	}
	if isDir {
		return filepath.Join(path, defaultReportName+report.Extension(format)), nil
	}
	return path, nil
}
