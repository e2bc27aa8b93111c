package topic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kode4food/courier/topic/config"

	internal "github.com/kode4food/courier/internal/topic"
)

const (
	shortWait = 50 * time.Millisecond
	longWait  = 2 * time.Second
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func makeRegistry(t *testing.T, o ...config.Option) *internal.Registry {
	t.Helper()
	r, err := internal.Make(o...)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}
