package commands_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cftops/cftctl/cmd/cftctl/commands"
	"github.com/gorilla/mux"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCFT is an in-memory Transfer CFT catalog.
type fakeCFT struct {
	mu        sync.Mutex
	transfers map[string]map[string]any
	requests  map[string]int
	next      int
}

func newFakeCFT(t *testing.T) (*fakeCFT, string) {
	t.Helper()
	f := &fakeCFT{transfers: map[string]map[string]any{}, requests: map[string]int{}}

	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.requests[r.Method]++
			f.mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			next.ServeHTTP(w, r)
		})
	})
	api := router.PathPrefix("/cft/api/v1").Subrouter()
	api.HandleFunc("/transfers", f.list).Methods(http.MethodGet)
	api.HandleFunc("/transfers/messages", f.createMessage).Methods(http.MethodPost)
	api.HandleFunc("/transfers/{idtu}", f.get).Methods(http.MethodGet)
	api.HandleFunc("/transfers/{idtu}", f.delete).Methods(http.MethodDelete)
	api.HandleFunc("/transfers/{idtu}/{action}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}).Methods(http.MethodPut)
	api.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"version": "3.10.2206", "level": "SP1", "system": "unix", "server_time": "1526301034000",
			"server_utc": "2", "multinode_enabled": "yes", "cg_enabled": "no", "instance_id": "cft1",
		})
	}).Methods(http.MethodGet)
	api.HandleFunc("/objects/{type}", func(w http.ResponseWriter, r *http.Request) {
		typ := mux.Vars(r)["type"]
		_ = json.NewEncoder(w).Encode(map[string]any{typ: []any{
			map[string]any{"id": "PARIS", "nspart": "NPARIS"},
		}})
	}).Methods(http.MethodGet)
	api.HandleFunc("/logs", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"logs": []any{
			map[string]any{"date": "1970-01-01T00:00:00Z", "node": "cftnode", "severity": "W", "code": "99", "message": "This is a log message"},
		}})
	}).Methods(http.MethodGet)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return f, server.URL + "/cft/api/v1"
}

func (f *fakeCFT) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ida := r.URL.Query().Get("ida")
	out := []any{}
	for _, tr := range f.transfers {
		if ida == "" || tr["ida"] == ida {
			out = append(out, tr)
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"transfers": out})
}

func (f *fakeCFT) createMessage(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var payload map[string]any
	b, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(b, &payload)
	f.next++
	tr := map[string]any{
		"idtu": fmt.Sprintf("A%07d", f.next),
		"ida":  payload["ida"],
		"part": r.URL.Query().Get("part"),
		"msg":  payload["msg"],
	}
	f.transfers[tr["idtu"].(string)] = tr
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(tr)
}

func (f *fakeCFT) get(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tr, ok := f.transfers[mux.Vars(r)["idtu"]]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`"transfer not found"`))
		return
	}
	_ = json.NewEncoder(w).Encode(tr)
}

func (f *fakeCFT) delete(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.transfers, mux.Vars(r)["idtu"])
}

func (f *fakeCFT) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[method]
}

// execute runs the root command with a throwaway home directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	homedir.DisableCache = true
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := commands.Root("v1.2.3")
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append(args, "--color=false"))
	err := cmd.Execute()
	return out.String(), err
}

func result(t *testing.T, out string) map[string]any {
	t.Helper()
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res
}

func TestTransferCommand(t *testing.T) {
	t.Run("present is idempotent on ida", func(t *testing.T) {
		cft, url := newFakeCFT(t)
		args := []string{"transfer", "--url", url, "--ida", "X1", "--msg", "hello", "--partner", "PARIS", "--idm", "M1"}

		out, err := execute(t, args...)
		require.NoError(t, err)
		res := result(t, out)
		assert.Equal(t, true, res["changed"])
		assert.Equal(t, false, res["failed"])
		assert.Equal(t, "A0000001", res["transfer"].(map[string]any)["idtu"])

		out, err = execute(t, args...)
		require.NoError(t, err)
		res = result(t, out)
		assert.Equal(t, false, res["changed"])
		assert.Equal(t, "A0000001", res["transfer"].(map[string]any)["idtu"])
		assert.Equal(t, 1, cft.count(http.MethodPost))
	})

	t.Run("absent on a missing transfer", func(t *testing.T) {
		cft, url := newFakeCFT(t)
		out, err := execute(t, "transfer", "--url", url, "--state", "absent", "--idtu", "NOPE")
		require.NoError(t, err)
		assert.Equal(t, false, result(t, out)["changed"])
		assert.Equal(t, 0, cft.count(http.MethodDelete))
	})

	t.Run("invalid parameters fail before any request", func(t *testing.T) {
		cft, url := newFakeCFT(t)
		out, err := execute(t, "transfer", "--url", url, "--partner", "PARIS", "--idm", "M1", "--msg", "hello", "--filename", "/tmp/f")
		assert.ErrorIs(t, err, commands.ErrFailed)
		res := result(t, out)
		assert.Equal(t, true, res["failed"])
		assert.Contains(t, res["msg"], "invalid parameters")
		assert.NotEmpty(t, res["stderr_lines"])
		assert.Equal(t, 0, cft.count(http.MethodGet)+cft.count(http.MethodPost))
	})

	t.Run("unknown state", func(t *testing.T) {
		_, url := newFakeCFT(t)
		out, err := execute(t, "transfer", "--url", url, "--state", "paused", "--idtu", "A1")
		assert.ErrorIs(t, err, commands.ErrFailed)
		assert.Contains(t, result(t, out)["msg"], "unknown state")
	})

	t.Run("check mode", func(t *testing.T) {
		cft, url := newFakeCFT(t)
		out, err := execute(t, "transfer", "--url", url, "--state", "halted", "--idtu", "A1", "--check")
		require.NoError(t, err)
		assert.Equal(t, true, result(t, out)["changed"])
		assert.Equal(t, 0, cft.count(http.MethodPut))
	})

	t.Run("verbose logs are returned", func(t *testing.T) {
		_, url := newFakeCFT(t)
		out, err := execute(t, "transfer", "--url", url, "--state", "ended", "--idtu", "A1", "-vvv")
		require.NoError(t, err)
		res := result(t, out)
		assert.Equal(t, true, res["changed"])
		assert.NotEmpty(t, res["stdout_lines"])
		assert.NotEmpty(t, res["invocation_id"])
	})

	t.Run("invalid url", func(t *testing.T) {
		out, err := execute(t, "transfer", "--url", "ftp://cft.example.com", "--state", "ended", "--idtu", "A1")
		assert.ErrorIs(t, err, commands.ErrFailed)
		assert.Contains(t, result(t, out)["msg"], commands.ErrInvalidURL.Error())
	})
}

func TestListingCommands(t *testing.T) {
	t.Run("transfers", func(t *testing.T) {
		_, url := newFakeCFT(t)
		_, err := execute(t, "transfer", "--url", url, "--ida", "X1", "--msg", "hello", "--partner", "PARIS", "--idm", "M1")
		require.NoError(t, err)

		out, err := execute(t, "transfers", "--url", url, "--ida", "X1")
		require.NoError(t, err)
		res := result(t, out)
		assert.Len(t, res["transfers"], 1)

		out, err = execute(t, "transfers", "--url", url, "--output", "table")
		require.NoError(t, err)
		assert.Contains(t, out, "IDTU")
		assert.Contains(t, out, "A0000001")
		assert.Contains(t, out, "1 transfer(s)")
		assert.Regexp(t, `(?m)^ok [0-9a-f-]{36}$`, out)
	})

	t.Run("transfers rejects a bad phase", func(t *testing.T) {
		_, url := newFakeCFT(t)
		out, err := execute(t, "transfers", "--url", url, "--phase", "Q")
		assert.ErrorIs(t, err, commands.ErrFailed)
		assert.Contains(t, result(t, out)["msg"], "phase: must be a valid value")
	})

	t.Run("transfer info", func(t *testing.T) {
		_, url := newFakeCFT(t)
		out, err := execute(t, "transfer-info", "--url", url, "--idtu", "NOPE")
		assert.ErrorIs(t, err, commands.ErrFailed)
		assert.Equal(t, "Axway Transfer CFT returned error 404 with message transfer not found", result(t, out)["msg"])
	})

	t.Run("flows", func(t *testing.T) {
		_, url := newFakeCFT(t)
		out, err := execute(t, "flows", "--url", url, "--type", "cftpart")
		require.NoError(t, err)
		res := result(t, out)
		assert.Contains(t, res, "cftpart")

		out, err = execute(t, "flows", "--url", url, "--type", "CFTPART", "--output", "table")
		require.NoError(t, err)
		assert.Contains(t, out, "nspart=NPARIS")
	})

	t.Run("flows with an unknown type", func(t *testing.T) {
		_, url := newFakeCFT(t)
		_, err := execute(t, "flows", "--url", url, "--type", "cftfoo")
		assert.ErrorIs(t, err, commands.ErrFailed)
	})
}

func TestLogsCommand(t *testing.T) {
	_, url := newFakeCFT(t)
	dest := filepath.Join(t.TempDir(), "cft.log")

	out, err := execute(t, "logs", "--url", url, "--severity", "W", "--dest", dest)
	require.NoError(t, err)
	assert.Equal(t, true, result(t, out)["changed"])
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "[1970-01-01T00:00:00Z] cftnode W 99 This is a log message\n", string(content))

	out, err = execute(t, "logs", "--url", url, "--severity", "W", "--dest", dest)
	require.NoError(t, err)
	assert.Equal(t, false, result(t, out)["changed"])

	out, err = execute(t, "logs", "--url", url, "--severity", "X")
	assert.ErrorIs(t, err, commands.ErrFailed)
	assert.Contains(t, result(t, out)["msg"], "severity")
}

func TestAboutCommands(t *testing.T) {
	_, url := newFakeCFT(t)

	out, err := execute(t, "about", "--url", url)
	require.NoError(t, err)
	about := result(t, out)["about"].(map[string]any)
	assert.Equal(t, "3.10.2206", about["version"])
	assert.Equal(t, true, about["multinode_enabled"])
	assert.Equal(t, false, about["cg_enabled"])

	out, err = execute(t, "facts", "--url", url, "--require-version", "3.10")
	require.NoError(t, err)
	facts := result(t, out)["facts"].(map[string]any)
	assert.Equal(t, "cft1", facts["axway_cft_instance_id"])
	assert.Equal(t, map[string]any{"major": float64(3), "minor": float64(10), "patch": float64(2206)}, facts["axway_cft_version_info"])

	out, err = execute(t, "facts", "--url", url, "--require-version", "4.0.0")
	assert.ErrorIs(t, err, commands.ErrFailed)
	assert.Contains(t, result(t, out)["msg"], "older than required 4.0.0")
}

func TestVersionAndConfig(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3\n", out)

	out, err = execute(t, "config", "view")
	require.NoError(t, err)
	assert.Contains(t, out, `url: "https://localhost:1768/cft/api/v1"`)
}
