package db

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBStatsCollector_Describe(t *testing.T) {
	c := NewDBStatsCollector(nil, "tmsledger", DriverSQLite)

	ch := make(chan *prometheus.Desc, 10)
	c.Describe(ch)
	close(ch)

	var n int
	for desc := range ch {
		assert.Contains(t, desc.String(), "tmsledger_db_")
		n++
	}
	assert.Equal(t, 5, n)
}

func TestDBStatsCollector_NilDB(t *testing.T) {
	c := NewDBStatsCollector(nil, "tmsledger", DriverSQLite)
	assert.Equal(t, 0, testutil.CollectAndCount(c))
}

func TestDBStatsCollector_Collect(t *testing.T) {
	s := openTestStore(t)
	c := NewDBStatsCollector(s.DB(), "tmsledger", s.Driver())

	assert.Equal(t, 5, testutil.CollectAndCount(c))

	expected := `
# HELP tmsledger_db_max_open_conns Maximum number of open connections, 0 for unlimited
# TYPE tmsledger_db_max_open_conns gauge
tmsledger_db_max_open_conns{driver="sqlite"} 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "tmsledger_db_max_open_conns"))
}

func TestRegisterDBStatsCollector(t *testing.T) {
	s := openTestStore(t)
	reg := prometheus.NewRegistry()

	c, err := RegisterDBStatsCollector(s, "tmsledger", reg)
	require.NoError(t, err)
	require.NotNil(t, c)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)

	// A second registration of the same collector is tolerated.
	_, err = RegisterDBStatsCollector(s, "tmsledger", reg)
	assert.NoError(t, err)
}
