package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/quick"
	"github.com/cftops/cftctl/cmd/cftctl/config"
	"golang.org/x/exp/maps"
)

// Result is printed once per invocation.
type Result struct {
	Changed      bool
	Failed       bool
	Msg          string
	InvocationID string
	StdoutLines  []string
	StderrLines  []string
	// Data holds the command specific keys of the result.
	Data map[string]any
	// Table is the tabular rendering used by --output table, if any.
	Table *Table
}

func failed(err error) Result {
	return Result{Failed: true, Msg: err.Error()}
}

func (r Result) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Data)+6)
	maps.Copy(m, r.Data)
	m["changed"] = r.Changed
	m["failed"] = r.Failed
	m["invocation_id"] = r.InvocationID
	m["stdout_lines"] = r.StdoutLines
	m["stderr_lines"] = r.StderrLines
	if r.Msg != "" {
		m["msg"] = r.Msg
	}
	return json.Marshal(m)
}

func printResult(w io.Writer, cfg config.Config, res Result) error {
	if cfg.Output == config.OutputTable && res.Table != nil && !res.Failed {
		fmt.Fprintln(w, res.Table.Render())
		fmt.Fprintln(w, statusLine(res))
		return nil
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if cfg.Color {
		if err := quick.Highlight(w, string(b)+"\n", "json", "terminal256", "onedark"); err == nil {
			return nil
		}
	}
	// Highlighting disabled or failed, output the plain document.
	fmt.Fprintln(w, string(b))
	return nil
}

// statusLine renders the status followed by the invocation id.
func statusLine(res Result) string {
	var status string
	switch {
	case res.Failed:
		status = ErrorText("failed")
	case res.Changed:
		status = WarningText("changed")
	default:
		status = CheckText("ok")
	}
	return status + " " + InfoStyle(res.InvocationID)
}
