package commands

import (
	"context"
	"fmt"

	"github.com/cftops/cftctl/internal/cft"
	"github.com/cftops/cftctl/internal/logdump"
	"github.com/cftops/cftctl/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func Logs() *cobra.Command {
	var (
		filter cft.LogFilter
		dest   string
		force  bool
	)
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Fetch server logs, optionally dumping them to a file",
		Long: `The logs command fetches log records from the server. With --dest the
records are written as "[date] node severity code message" lines; the file
is only replaced when its content changes, unless --force is given. A
destination ending in .gz is written gzip compressed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) (Result, error) {
				records, err := e.client.Logs(ctx, filter)
				if err != nil {
					return Result{}, err
				}
				res := Result{Data: map[string]any{"logs": records}}
				if dest == "" {
					return res, nil
				}
				changed, err := logdump.Dump(records, dest, logdump.Options{Force: force, Check: e.check})
				if err != nil {
					return Result{}, fmt.Errorf("dumping logs: %w", err)
				}
				logger.FromContext(ctx).Info("dumped logs", zap.String("dest", dest), zap.Int("records", len(records)), zap.Bool("changed", changed))
				res.Changed = changed
				res.Data["dest"] = dest
				return res, nil
			})
		},
	}
	flags := logsCmd.Flags()
	flags.StringVar(&filter.Severity, "severity", "", "Severity (F|E|W|I)")
	flags.IntVar(&filter.Limit, "limit", 0, "Maximum number of records")
	flags.StringVar(&filter.DateTimeMin, "date-time-min", "", "Oldest record, YYYY-MM-DDThh:mm:ssZ")
	flags.StringVar(&filter.DateTimeMax, "date-time-max", "", "Newest record, YYYY-MM-DDThh:mm:ssZ")
	flags.StringVar(&filter.Pattern, "pattern", "", "Pattern the message must match")
	flags.StringVar(&dest, "dest", "", "File to write the records to")
	flags.BoolVar(&force, "force", false, "Replace --dest even if unchanged")
	return logsCmd
}
