package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/cftops/cftctl/cmd/cftctl/config"
	"github.com/cftops/cftctl/internal/cft"
	"github.com/cftops/cftctl/internal/conn"
	"github.com/cftops/cftctl/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/idna"
)

var (
	ErrInvalidURL = errors.New("invalid url provided")
	// ErrFailed is returned once a failed result has been printed.
	ErrFailed = errors.New("command failed")
)

// env is what a command body gets to work with.
type env struct {
	config config.Config
	client *cft.Client
	check  bool
}

type body func(ctx context.Context, e *env) (Result, error)

// run executes fn inside a fresh invocation and prints its result. The
// invocation logs are attached to the result on success and failure alike.
func run(cmd *cobra.Command, fn body) error {
	res, cfg := execute(cmd, fn)
	if err := printResult(cmd.OutOrStdout(), cfg, res); err != nil {
		return err
	}
	if res.Failed {
		return ErrFailed
	}
	return nil
}

func execute(cmd *cobra.Command, fn body) (Result, config.Config) {
	cfg, err := config.Load()
	if err != nil {
		return failed(err), config.GetDefault()
	}
	level, err := invocationLevel(cfg)
	if err != nil {
		return failed(fmt.Errorf("parsing log level: %w", err)), cfg
	}

	inv := logger.NewInvocation(level)
	ctx := inv.Context(cmd.Context())
	res, err := func() (Result, error) {
		e, err := newEnv(cmd, cfg)
		if err != nil {
			return Result{}, err
		}
		inv.Logger.Debug("running command", zap.String("command", cmd.Name()), zap.String("url", cfg.URL), zap.Bool("check", e.check))
		return fn(ctx, e)
	}()
	if err != nil {
		inv.Logger.Error("command failed", zap.Error(err))
		res = failed(err)
	}

	stdout, stderr := inv.Flush()
	res.InvocationID = inv.ID
	res.StdoutLines = lines(stdout)
	res.StderrLines = lines(stderr)
	return res, cfg
}

func newEnv(cmd *cobra.Command, cfg config.Config) (*env, error) {
	if err := validateURL(cfg.URL); err != nil {
		return nil, fmt.Errorf("%w: (%s) is not a valid url", err, cfg.URL)
	}
	c, err := conn.NewHTTP(cfg.Conn())
	if err != nil {
		return nil, err
	}
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return nil, err
	}
	return &env{config: cfg, client: cft.New(c), check: check}, nil
}

func invocationLevel(cfg config.Config) (zapcore.Level, error) {
	if cfg.LogLevel != "" {
		return logger.ParseLevel(cfg.LogLevel)
	}
	return logger.LevelForVerbosity(cfg.Verbose), nil
}

// validateURL validates that raw is an http(s) url with a valid host and port.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if port := u.Port(); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p < 1 || p > 65535 {
			return ErrInvalidURL
		}
	}
	host := u.Hostname()
	switch {
	case host == "":
		return ErrInvalidURL
	case host == "localhost":
		return nil
	case net.ParseIP(host) != nil:
		return nil
	}
	if _, err := idna.Lookup.ToASCII(host); err != nil {
		return ErrInvalidURL
	}
	return nil
}

func lines(s string) []string {
	out := []string{}
	for _, l := range strings.Split(s, "\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
