package commands

import (
	"context"
	"fmt"

	"github.com/cftops/cftctl/internal/cft"
	"github.com/cftops/cftctl/internal/semver"
	"github.com/spf13/cobra"
)

const factsPrefix = "axway_cft_"

func About() *cobra.Command {
	return &cobra.Command{
		Use:   "about",
		Short: "Describe the Transfer CFT server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) (Result, error) {
				about, err := e.client.About(ctx)
				if err != nil {
					return Result{}, err
				}
				return Result{Data: map[string]any{"about": about}}, nil
			})
		},
	}
}

func Facts() *cobra.Command {
	var required string
	factsCmd := &cobra.Command{
		Use:   "facts",
		Short: "Gather server facts",
		Long: `The facts command reports the server description under axway_cft_* keys.
With --require-version it fails when the server is older than the given version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) (Result, error) {
				about, err := e.client.About(ctx)
				if err != nil {
					return Result{}, err
				}
				facts, ver := facts(about)
				if required != "" {
					if err := requireVersion(ver, required); err != nil {
						return Result{}, err
					}
				}
				return Result{Data: map[string]any{"facts": facts}}, nil
			})
		},
	}
	factsCmd.Flags().StringVar(&required, "require-version", "", "Minimum server version")
	return factsCmd
}

// facts flattens about into prefixed keys. The parsed version is added when
// the reported one can be parsed.
func facts(about cft.About) (map[string]any, *semver.Version) {
	f := map[string]any{
		factsPrefix + "version":           about.Version,
		factsPrefix + "level":             about.Level,
		factsPrefix + "system":            about.System,
		factsPrefix + "server_time":       about.ServerTime,
		factsPrefix + "server_utc":        about.ServerUTC,
		factsPrefix + "multinode_enabled": about.MultinodeEnabled,
		factsPrefix + "cg_enabled":        about.CGEnabled,
		factsPrefix + "instance_id":       about.InstanceID,
	}
	ver, err := about.ParsedVersion()
	if err != nil {
		return f, nil
	}
	f[factsPrefix+"version_info"] = ver
	return f, &ver
}

func requireVersion(ver *semver.Version, required string) error {
	want, err := semver.Parse(required)
	if err != nil {
		return fmt.Errorf("parsing required version %q: %w", required, err)
	}
	if ver == nil {
		return fmt.Errorf("server version could not be parsed, %s required", want)
	}
	switch ver.Compare(want) {
	case semver.CompareOldMajor, semver.CompareOldMinor, semver.CompareOldPatch:
		return fmt.Errorf("server version %s is older than required %s", ver, want)
	}
	return nil
}
