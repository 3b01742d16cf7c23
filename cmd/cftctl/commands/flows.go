package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/cftops/cftctl/internal/cft"
	"github.com/spf13/cobra"
)

func Flows() *cobra.Command {
	var (
		typ    string
		offset int
		limit  int
	)
	names := make([]string, len(cft.ObjectTypes))
	for i, t := range cft.ObjectTypes {
		names[i] = string(t)
	}
	flowsCmd := &cobra.Command{
		Use:   "flows",
		Short: "List flow configuration objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, e *env) (Result, error) {
				t, err := cft.ParseObjectType(typ)
				if err != nil {
					return Result{}, err
				}
				objects, err := e.client.Objects(ctx, t, offset, limit)
				if err != nil {
					return Result{}, err
				}
				return Result{
					Data:  map[string]any{t.Key(): objects},
					Table: flowsTable(t, objects),
				}, nil
			})
		},
	}
	flags := flowsCmd.Flags()
	flags.StringVar(&typ, "type", "", fmt.Sprintf("Object type (%s)", strings.Join(names, "|")))
	flags.IntVar(&offset, "offset", 0, "Index of the first object")
	flags.IntVar(&limit, "limit", 100, "Maximum number of objects")
	_ = flowsCmd.MarkFlagRequired("type")
	return flowsCmd
}

// flowsTable lists objects by identifier. The body is either the list itself
// or an object keyed by the type.
func flowsTable(t cft.ObjectType, objects any) *Table {
	list, ok := objects.([]any)
	if m, isMap := objects.(map[string]any); isMap {
		list, ok = lookup(m, t.Key()).([]any)
	}
	tbl := NewTable("ID", "ATTRIBUTES").WithWeights(1, 4)
	if !ok {
		return tbl.WithCaption(string(t))
	}
	for _, o := range list {
		obj, isMap := o.(map[string]any)
		if !isMap {
			tbl.AddRow("", cell(o))
			continue
		}
		attrs := make([]string, 0, len(obj))
		for _, k := range sortedKeys(obj) {
			if strings.EqualFold(k, "id") {
				continue
			}
			attrs = append(attrs, k+"="+cell(obj[k]))
		}
		tbl.AddRow(cell(lookup(obj, "id")), strings.Join(attrs, " "))
	}
	return tbl.WithCaption(fmt.Sprintf("%d %s object(s)", tbl.Len(), t))
}
