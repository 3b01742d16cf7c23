package commands

import (
	"fmt"

	"github.com/cftops/cftctl/cmd/cftctl/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// persistentFlags maps viper keys onto the root flags overriding them.
var persistentFlags = map[string]string{
	"url":       "url",
	"username":  "username",
	"password":  "password",
	"insecure":  "insecure",
	"timeout":   "timeout",
	"verbose":   "verbose",
	"log_level": "log-level",
	"output":    "output",
	"color":     "color",
}

// Root builds the top level `cftctl` command on which the other subcommands are attached to.
func Root(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cftctl",
		Short: "cftctl drives Axway Transfer CFT transfers through the REST API.",
		Long: `cftctl drives an Axway Transfer CFT server through its REST API.
Every command prints a single JSON result and exits non-zero on failure.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(); err != nil {
				return err
			}
			for key, name := range persistentFlags {
				if err := viper.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
					return fmt.Errorf("binding %s flag: %w", name, err)
				}
			}
			return nil
		},
	}
	defaults := config.GetDefault()
	flags := rootCmd.PersistentFlags()
	flags.String("url", defaults.URL, "Base URL of the Transfer CFT REST API")
	flags.String("username", "", "User name for basic authentication")
	flags.String("password", "", "Password for basic authentication")
	flags.Bool("insecure", false, "Skip TLS certificate verification")
	flags.Duration("timeout", defaults.Timeout, "Timeout of each request")
	flags.CountP("verbose", "v", "Increase log verbosity (-vv info, -vvv debug)")
	flags.String("log-level", "", "Log level, overrides --verbose")
	flags.StringP("output", "o", defaults.Output, "Output format (json|table)")
	flags.Bool("color", defaults.Color, "Highlight the output")
	flags.Bool("check", false, "Report what would change without changing it")

	rootCmd.AddCommand(Transfer())
	rootCmd.AddCommand(TransferInfo())
	rootCmd.AddCommand(Transfers())
	rootCmd.AddCommand(Flows())
	rootCmd.AddCommand(Logs())
	rootCmd.AddCommand(About())
	rootCmd.AddCommand(Facts())
	rootCmd.AddCommand(Config())
	rootCmd.AddCommand(Version(version))
	return rootCmd
}
