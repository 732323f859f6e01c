package main

import (
	"errors"
	"log"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/golbm/io"
)

func TestFileGroupFatalFlushesFiles(t *testing.T) {
	dir := t.TempDir()
	out := &io.OutputConfig{
		Directory: dir, LogFile: "log.out", ProfileFile: "prof.out",
	}

	code := -1
	exit = func(c int) { code = c }
	defer func() { exit = os.Exit }()

	fg, err := setupFileGroup(out)
	require.NoError(t, err)
	log.Println("Starting up")

	fg.Fatal(errors.New("Solver blew up"))
	assert.Equal(t, 1, code)
	assert.Nil(t, fg.prof)
	assert.Nil(t, fg.log)

	logBody, err := os.ReadFile(path.Join(dir, "log.out"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(logBody), "Starting up"))
	assert.True(t, strings.Contains(string(logBody), "Solver blew up"))

	// A stopped profile has been written out in full.
	info, err := os.Stat(path.Join(dir, "prof.out"))
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	// Closing again, as the deferred Close in runMain does, is harmless.
	fg.Close()
}

func TestGetModeName(t *testing.T) {
	run, plot := "", ""
	vars := map[string]*string{"Run": &run, "PlotHistory": &plot}

	_, err := getModeName(vars)
	assert.Error(t, err)

	run = "sim.ini"
	mode, err := getModeName(vars)
	require.NoError(t, err)
	assert.Equal(t, "Run", mode)

	plot = "history.txt"
	_, err = getModeName(vars)
	assert.Error(t, err)
}
