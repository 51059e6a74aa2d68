package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := Default()
	require.Equal(t, 10000, c.MaxCacheSize)
	require.False(t, c.S4)
	require.False(t, c.Verbose)
}

func TestParseArgsSetsFlags(t *testing.T) {
	c, err := ParseArgs([]string{"-s4", "-v", "-g"})
	require.NoError(t, err)
	require.True(t, c.S4)
	require.True(t, c.Verbose)
	require.True(t, c.Gamma)
	require.False(t, c.BUC)
}

func TestParseArgsLongPrefixMatchesCanonicalFlag(t *testing.T) {
	// historical strncmp-style matching: an extended form of a known flag
	// still matches its canonical entry, as long as it starts with it.
	c, err := ParseArgs([]string{"-classifyme"})
	require.NoError(t, err)
	require.True(t, c.Classify)
}

func TestParseArgsOrderPicksMoreSpecificFlagFirst(t *testing.T) {
	// "-s4" itself must not be swallowed by some shorter, earlier entry.
	c, err := ParseArgs([]string{"-s4"})
	require.NoError(t, err)
	require.True(t, c.S4)
	require.False(t, c.Gamma)
}

func TestParseArgsConfigFileTakesValue(t *testing.T) {
	c, err := ParseArgs([]string{"-configfile", "run.yaml"})
	require.NoError(t, err)
	require.Equal(t, "run.yaml", c.ConfigFile)
}

func TestParseArgsMissingValueIsError(t *testing.T) {
	_, err := ParseArgs([]string{"-configfile"})
	require.Error(t, err)
}

func TestParseArgsUnknownFlagIsError(t *testing.T) {
	_, err := ParseArgs([]string{"-bogus"})
	require.Error(t, err)
}

func TestParseArgsTooManyArgumentsIsError(t *testing.T) {
	args := make([]string, maxArgs+1)
	for i := range args {
		args[i] = "-v"
	}
	_, err := ParseArgs(args)
	require.Error(t, err)
}

func TestParseArgsAccumulatesMultipleErrors(t *testing.T) {
	_, err := ParseArgs([]string{"-bogus1", "-bogus2"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "bogus1")
	require.Contains(t, err.Error(), "bogus2")
}

func TestLoadYAMLOverlay(t *testing.T) {
	cfg := Default()
	data := []byte("s4: true\nmaxcachesize: 500\n")
	err := LoadYAML(&cfg, data)
	require.NoError(t, err)
	require.True(t, cfg.S4)
	require.Equal(t, 500, cfg.MaxCacheSize)
}

func TestLoadYAMLRejectsMalformedInput(t *testing.T) {
	cfg := Default()
	err := LoadYAML(&cfg, []byte("not: [valid: yaml"))
	require.Error(t, err)
}

func TestUsageListsEveryFlag(t *testing.T) {
	u := Usage()
	for _, f := range matchOrder {
		require.Contains(t, u, f.name)
	}
}
