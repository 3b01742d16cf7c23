package commands

import (
	"context"
	"strings"

	"github.com/cftops/cftctl/internal/cft"
	"github.com/cftops/cftctl/internal/lifecycle"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const stateFlagDesc = `Target state of the transfer. One of:
  present, absent, halted, kept, started, resumed,
  submitted, acknowledged, nacknowledged, ended`

// -------------------------------------------------------- Transfer ---------------------------------------------------

func Transfer() *cobra.Command {
	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "Drive a transfer to a target state",
		Long: `The transfer command creates, deletes or acts on a single transfer.
Creation is skipped when a transfer with the same --ida already exists.`,
		Example: `  cftctl transfer --ida X1 --partner PARIS --idm M1 --msg hello
  cftctl transfer --direction SEND --partner PARIS --idf SMSU001 --filename /tmp/my_file.txt
  cftctl transfer --state halted --idtu A0000001
  cftctl transfer --state acknowledged --idtu A0000001 --idm M1 --msg "Validate the transfer"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) (Result, error) {
				req, err := transferRequest(cmd.Flags())
				if err != nil {
					return Result{}, err
				}
				out, err := lifecycle.New(e.client, lifecycle.WithCheckMode(e.check)).Run(ctx, req)
				if err != nil {
					return Result{}, err
				}
				return Result{Changed: out.Changed, Data: map[string]any{"transfer": out.Body}}, nil
			})
		},
	}
	flags := transferCmd.Flags()
	flags.String("state", string(lifecycle.Present), stateFlagDesc)
	flags.String("idtu", "", "Transfer identifier")
	flags.String("ida", "", "Local identifier, used to detect an existing transfer")
	flags.String("direction", "", "Direction of a file transfer (SEND|RECEIVE)")
	flags.String("partner", "", "Partner of the transfer")
	flags.String("idf", "", "Flow identifier")
	flags.Int("api-timeout", 0, "Server side timeout of the request in seconds")
	flags.String("filename", "", "File to transfer")
	flags.String("parm", "", "User parameter")
	flags.String("idm", "", "Message identifier")
	flags.String("msg", "", "Message content")
	return transferCmd
}

func transferRequest(flags *pflag.FlagSet) (lifecycle.Request, error) {
	str := func(name string) string {
		v, _ := flags.GetString(name)
		return v
	}
	state, err := lifecycle.ParseTargetState(str("state"))
	if err != nil {
		return lifecycle.Request{}, err
	}
	timeout, _ := flags.GetInt("api-timeout")
	return lifecycle.Request{
		State:      state,
		IDTU:       str("idtu"),
		IDA:        str("ida"),
		Direction:  cft.Direction(strings.ToUpper(str("direction"))),
		Partner:    str("partner"),
		IDF:        str("idf"),
		APITimeout: timeout,
		Filename:   str("filename"),
		Parm:       str("parm"),
		IDM:        str("idm"),
		Msg:        str("msg"),
	}, nil
}

// ------------------------------------------------------ Transfer info ------------------------------------------------

func TransferInfo() *cobra.Command {
	infoCmd := &cobra.Command{
		Use:   "transfer-info",
		Short: "Show a single transfer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idtu, _ := cmd.Flags().GetString("idtu")
			return run(cmd, func(ctx context.Context, e *env) (Result, error) {
				tr, err := e.client.Transfer(ctx, idtu)
				if err != nil {
					return Result{}, err
				}
				return Result{Data: map[string]any{"transfer": tr}}, nil
			})
		},
	}
	infoCmd.Flags().String("idtu", "", "Transfer identifier")
	_ = infoCmd.MarkFlagRequired("idtu")
	return infoCmd
}
