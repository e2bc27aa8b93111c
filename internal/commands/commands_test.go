package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/kode4food/courier/internal/commands"
	"github.com/kode4food/courier/internal/config"
)

func newApp(t *testing.T, cfg config.Config) (*cli.Command, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	flags := &commands.Flags{Config: &cfg}
	app := &cli.Command{
		Name:   "pingpong",
		Writer: out,
		ExitErrHandler: func(context.Context, *cli.Command, error) {
		},
	}
	app = commands.NewRunCmd(flags).Register(app)
	app = commands.NewDaemonCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	return app, out
}

func TestConfigValidate_Valid(t *testing.T) {
	app, out := newApp(t, config.DefaultConfig())
	err := app.Run(context.Background(), []string{"pingpong", "config", "validate"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Configuration is valid")
}

func TestConfigValidate_JSON(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Topics.Pong = "bad topic"
	cfg.Reader.Overflow = "spill"

	app, out := newApp(t, cfg)
	err := app.Run(context.Background(),
		[]string{"pingpong", "config", "validate", "--format", "json"},
	)
	require.NoError(t, err)

	var res struct {
		Valid  bool `json:"valid"`
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "topics.pong", res.Errors[0].Field)
	assert.Equal(t, "reader.overflow", res.Errors[1].Field)
}

func TestConfigValidate_TextErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Interval = 0

	app, out := newApp(t, cfg)
	err := app.Run(context.Background(), []string{"pingpong", "config", "validate"})

	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, out.String(), "interval: must be positive")
	assert.Contains(t, out.String(), "1 error(s)")
}

func TestRun(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PongTimeout = 5 * time.Second

	app, _ := newApp(t, cfg)
	start := time.Now()
	err := app.Run(context.Background(),
		[]string{"pingpong", "run", "--rounds", "3", "--interval", "5ms"},
	)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_InvalidInterval(t *testing.T) {
	app, _ := newApp(t, config.DefaultConfig())
	err := app.Run(context.Background(),
		[]string{"pingpong", "run", "--interval", "soon"},
	)
	assert.ErrorContains(t, err, "invalid --interval")
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Topics.Ping = ""

	app, _ := newApp(t, cfg)
	err := app.Run(context.Background(), []string{"pingpong", "run"})
	assert.ErrorContains(t, err, "invalid config")
}

func TestDaemon(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Interval = 10 * time.Millisecond

	app, _ := newApp(t, cfg)
	err := app.Run(context.Background(),
		[]string{"pingpong", "daemon", "--rounds", "2"},
	)
	require.NoError(t, err)
}

func TestDeferredWriter(t *testing.T) {
	var w commands.DeferredWriter
	_, err := w.Write([]byte("one\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("two\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, w.Flush(&out))
	assert.Equal(t, "one\ntwo\n", out.String())

	out.Reset()
	require.NoError(t, w.Flush(&out))
	assert.Empty(t, out.String())
}
