package version

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/magelint/internal/rules"
	"github.com/scan-io-git/magelint/pkg/shared/config"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// Versions holds version information for the binary.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
}

// CoreVersions is printed by the version command.
type CoreVersions struct {
	Versions Versions `json:"versions"`
	Rules    []string `json:"rules"`
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application and the bundled rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			version := CoreVersions{
				Versions: Versions{
					Version:       CoreVersion,
					GolangVersion: GolangVersion,
					BuildTime:     BuildTime,
				},
				Rules: rules.Default().IDs(),
			}
			return printVersionInfo(cmd, &version)
		},
	}
}

// printVersionInfo prints the version information in JSON format.
func printVersionInfo(cmd *cobra.Command, version *CoreVersions) error {
	out, err := json.MarshalIndent(version, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling version info: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
