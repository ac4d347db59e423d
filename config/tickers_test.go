package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTickers(t *testing.T) {
	t.Parallel()

	in := "# watch list\naapl\n\n MSFT ,note\nAAPL\ntsla\n"
	got, err := ReadTickers(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, got)

	got, err = ReadTickers(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadTickersMissing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "tickers.csv")
	_, err := LoadTickers(path)
	assert.ErrorIs(t, err, ErrNoTickerFile)
	assert.ErrorIs(t, err, ErrConfig)

	created, err := EnsureTickerFile(path)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureTickerFile(path)
	require.NoError(t, err)
	assert.False(t, created)

	list, err := LoadTickers(path)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddRemoveTickers(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tickers.csv")

	list, err := AddTickers(path, "aapl", "msft")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, list)

	list, err = AddTickers(path, "MSFT", "nvda")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, list)

	list, err = RemoveTickers(path, "msft", "ZZZ")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "NVDA"}, list)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "AAPL\nNVDA\n", string(data))

	_, err = RemoveTickers(filepath.Join(t.TempDir(), "nope.csv"), "AAPL")
	assert.ErrorIs(t, err, ErrNoTickerFile)
}
