package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/courier/topic/overflow"

	topiccfg "github.com/kode4food/courier/topic/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	res := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		res[i] = fe.Field
	}
	return res
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Ping", cfg.Topics.Ping)
	assert.Equal(t, 50, cfg.HistoryLimit)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
topics:
  ping: Heartbeat
interval: 250ms
pong_timeout: 1s
rounds: 3
reader:
  capacity: 8
  overflow: drop-newest
senders:
  pinger: probe
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Heartbeat", cfg.Topics.Ping)
	assert.Equal(t, "Pong", cfg.Topics.Pong)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, time.Second, cfg.PongTimeout)
	assert.Equal(t, 3, cfg.Rounds)
	assert.Equal(t, "probe", cfg.Senders.Pinger)
	assert.Equal(t, "app2", cfg.Senders.Ponger)
	assert.Equal(t, ReaderConfig{Capacity: 8, Overflow: "drop-newest"}, cfg.Reader)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "topics: [unclosed")
	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config file")
}

func TestValidate_FieldErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topics.Ping = "has space"
	cfg.Senders.Daemon = " "
	cfg.Interval = -time.Second
	cfg.Rounds = -1
	cfg.Reader.Capacity = -2
	cfg.Reader.Overflow = "spill"

	fields := fieldNames(t, cfg.Validate())
	assert.ElementsMatch(t, []string{
		"topics.ping",
		"senders.daemon",
		"interval",
		"rounds",
		"reader.capacity",
		"reader.overflow",
	}, fields)
}

func TestValidate_SameTopics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topics.Pong = cfg.Topics.Ping
	assert.Equal(t, []string{"topics.pong"}, fieldNames(t, cfg.Validate()))
}

func TestRegistryOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reader = ReaderConfig{Capacity: 4, Overflow: "reject"}

	o, err := cfg.RegistryOptions()
	require.NoError(t, err)
	c, err := topiccfg.Make(o...)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Capacity)
	assert.Equal(t, overflow.Reject, c.Overflow)

	cfg.Reader = ReaderConfig{Capacity: 4}
	o, err = cfg.RegistryOptions()
	require.NoError(t, err)
	c, err = topiccfg.Make(o...)
	require.NoError(t, err)
	assert.Equal(t, overflow.DropOldest, c.Overflow)

	cfg.Reader.Overflow = "spill"
	_, err = cfg.RegistryOptions()
	assert.ErrorIs(t, err, overflow.ErrUnknownPolicy)
}

func TestWithUniqueSenders(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WithUniqueSenders("abc")
	assert.Equal(t, Senders{
		Pinger:    "app1-abc",
		Ponger:    "app2-abc",
		Daemon:    "Daemon-abc",
		Responder: "Monitor-abc",
	}, cfg.Senders)
}
