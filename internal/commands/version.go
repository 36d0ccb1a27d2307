package commands

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/port402/x402-curl/internal/output"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentBuild()
		if versionJSON {
			return output.PrintJSON(cmd.OutOrStdout(), info)
		}
		info.print(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(versionCmd)
}

// buildInfo is what the version command reports.
type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`
}

func currentBuild() buildInfo {
	return buildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		Go:        strings.TrimPrefix(runtime.Version(), "go"),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// print writes the compact form, e.g. "x402-curl 0.1.0 (e0b2c4f)".
func (b buildInfo) print(w io.Writer) {
	header := "x402-curl " + b.Version
	if b.Commit != "none" {
		header += " (" + truncate(b.Commit, 7) + ")"
	}
	fmt.Fprintln(w, header)
	if b.BuildDate != "unknown" {
		fmt.Fprintf(w, "  Built:    %s\n", truncate(b.BuildDate, 10))
	}
	fmt.Fprintf(w, "  Go:       %s\n", b.Go)
	fmt.Fprintf(w, "  Platform: %s\n", b.Platform)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
