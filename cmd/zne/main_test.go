package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/zne/circuit"
	"github.com/arloliu/zne/errs"
)

const bellText = `# bell pair
sites 2
h 0
cx 0,1
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ZNE_LOG_LEVEL", "off")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()

	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestFoldCmd_Text(t *testing.T) {
	path := writeFile(t, "bell.txt", bellText)

	out, err := run(t, "fold", "--circuit", path, "--noise-factor", "3", "--barriers=false")
	require.NoError(t, err)

	folded, err := circuit.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, 6, folded.Len())

	bell, err := circuit.Parse(bellText)
	require.NoError(t, err)
	assert.True(t, circuit.Equivalent(bell, folded))
}

func TestFoldCmd_BatchAndInspect(t *testing.T) {
	path := writeFile(t, "bell.txt", bellText)
	batch := filepath.Join(t.TempDir(), "bell.zneb")

	for _, compression := range []string{"none", "zstd", "s2", "lz4"} {
		out, err := run(t, "fold", "-c", path, "-n", "5", "-a", "local", "--ops", "cx",
			"-o", batch, "--compression", compression)
		require.NoError(t, err, compression)
		assert.Contains(t, out, "wrote 1 sequence(s)")

		out, err = run(t, "inspect", batch)
		require.NoError(t, err, compression)
		assert.Contains(t, out, "# sequence 0: 2 sites")
		assert.Equal(t, 5, strings.Count(out, "cx 0,1"), compression)
	}
}

func TestFoldCmd_Errors(t *testing.T) {
	path := writeFile(t, "bell.txt", bellText)

	_, err := run(t, "fold", "-c", path, "-n", "0.5")
	require.ErrorIs(t, err, errs.ErrNoiseFactor)

	_, err = run(t, "fold", "-c", path, "-a", "zigzag")
	require.ErrorIs(t, err, errs.ErrUnknownName)

	_, err = run(t, "fold", "-c", path, "-o", filepath.Join(t.TempDir(), "x"), "--compression", "brotli")
	require.ErrorIs(t, err, errs.ErrUnknownName)
}

func TestExtrapolateCmd(t *testing.T) {
	out, err := run(t, "extrapolate", "--x", "1,2,3", "--y", "0.9,0.8,0.7")
	require.NoError(t, err)
	assert.Contains(t, out, "model:        linear")
	assert.Contains(t, out, "value:        1\n")

	_, err = run(t, "extrapolate", "--x", "1,1", "--y", "0.9,0.8")
	require.ErrorIs(t, err, errs.ErrInsufficientData)

	_, err = run(t, "extrapolate", "--x", "1,2", "--y", "0.9,0.8", "--model", "spline")
	require.ErrorIs(t, err, errs.ErrUnknownName)
}

func TestMitigateCmd(t *testing.T) {
	bell := writeFile(t, "bell.txt", bellText)

	out, err := run(t, "mitigate", "--circuit", bell, "--circuit", bell, "--error-rate", "0.02")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, ": mitigated"))
	assert.Contains(t, out, "noise_factors: [1 2 3]")

	cfg := writeFile(t, "strategy.toml", `
noise_factors = [1.0, 3.0, 5.0]

[amplifier]
name = "global"

[extrapolator]
name = "quadratic"
`)
	out, err = run(t, "mitigate", "--config", cfg, "--circuit", bell, "--concurrency", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "extrapolator: quadratic")
}

func TestDepolarizingBackend_MitigationImproves(t *testing.T) {
	bell, err := circuit.Parse(bellText)
	require.NoError(t, err)

	b := depolarizingBackend{errorRate: 0.05, shots: 1000, ideal: 1}
	assert.InDelta(t, 0.9025, b.expectation(bell), 1e-12)
}

func TestConfigCmd(t *testing.T) {
	out, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "noise_factors:")
	assert.Contains(t, out, "name: multi_qubit")

	out, err = run(t, "config", "--format", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "[amplifier]")

	_, err = run(t, "config", "--format", "json")
	require.Error(t, err)
}
