package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_newTableSink_freshDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "routing_table")
	require.NoError(t, os.MkdirAll(dir, 0750))
	stale := filepath.Join(dir, "9.txt")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0640))

	_, err := newTableSink(dir)
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "prior contents must be discarded")
}

func TestTableSink_write(t *testing.T) {
	dir := t.TempDir()
	sink, err := newTableSink(dir)
	require.NoError(t, err)

	table := RoutingTable{
		3: {Cost: 2, NextHop: 2},
		1: {Cost: 0, NextHop: 1},
		2: {Cost: 1, NextHop: 2},
	}
	require.NoError(t, sink.write(1, table))

	got, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)

	want := "router 1 routing table:\n\n" +
		"destination: 1\tcost: 0\tnext hop: 1\n" +
		"destination: 2\tcost: 1\tnext hop: 2\n" +
		"destination: 3\tcost: 2\tnext hop: 2\n"
	assert.Equal(t, want, string(got))
}
