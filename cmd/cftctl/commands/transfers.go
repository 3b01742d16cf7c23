package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/cftops/cftctl/internal/cft"
	"github.com/spf13/cobra"
)

// columns of the transfers table, in display order.
var transferColumns = []string{"IDTU", "IDA", "PART", "DIRECT", "IDF", "STATE", "PHASE", "PHASESTEP"}

func Transfers() *cobra.Command {
	var filter cft.TransferFilter
	transfersCmd := &cobra.Command{
		Use:   "transfers",
		Short: "List transfers from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) (Result, error) {
				f := filter
				f.Phase = strings.ToUpper(f.Phase)
				f.PhaseStep = strings.ToUpper(f.PhaseStep)
				transfers, err := e.client.Transfers(ctx, f)
				if err != nil {
					return Result{}, err
				}
				return Result{
					Data:  map[string]any{"transfers": transfers},
					Table: transfersTable(transfers),
				}, nil
			})
		},
	}
	flags := transfersCmd.Flags()
	flags.StringVar(&filter.IDA, "ida", "", "Local identifier")
	flags.StringVar(&filter.IDTU, "idtu", "", "Transfer identifier")
	flags.StringVar(&filter.IDT, "idt", "", "Transfer identifier assigned by the partner")
	flags.StringVar(&filter.NIDT, "nidt", "", "Network transfer identifier")
	flags.StringVar(&filter.Part, "part", "", "Partner")
	flags.StringVar(&filter.IDF, "idf", "", "Flow identifier")
	flags.StringVar(&filter.Phase, "phase", "", "Phase (A|T|Y|Z|X)")
	flags.StringVar(&filter.PhaseStep, "phasestep", "", "Phase step (D|C|E|K|H|X)")
	flags.StringSliceVar(&filter.Fields, "fields", cft.DefaultFields, "Fields to return")
	flags.IntVar(&filter.Offset, "offset", 0, "Index of the first transfer")
	flags.IntVar(&filter.Limit, "limit", 100, "Maximum number of transfers")
	return transfersCmd
}

func transfersTable(transfers []cft.Transfer) *Table {
	t := NewTable(transferColumns...).WithWeights(1.2, 1.2, 1, 0.8, 1, 0.6, 0.6, 0.8)
	for _, tr := range transfers {
		cells := make([]string, len(transferColumns))
		for i, col := range transferColumns {
			cells[i] = cell(lookup(tr, col))
		}
		t.AddRow(cells...)
	}
	return t.WithCaption(fmt.Sprintf("%d transfer(s)", t.Len()))
}

// lookup finds key in m regardless of its case.
func lookup(m map[string]any, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}
