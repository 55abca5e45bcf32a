package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/herdata/internal/model"
	"github.com/ppiankov/herdata/internal/validate"
)

func TestApplyBuildFlags(t *testing.T) {
	tests := []struct {
		args    []string
		wantOut string
		wantSex string
		desc    string
	}{
		{
			args:    nil,
			wantOut: model.DefaultConfig().Build.OutputPath,
			wantSex: "w",
			desc:    "unset flags keep config values",
		},
		{
			args:    []string{"--out", "out/persons.json", "--sex", "m"},
			wantOut: "out/persons.json",
			wantSex: "m",
			desc:    "set flags override config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			cmd := &cobra.Command{Use: "build"}
			addBuildFlags(cmd)
			require.NoError(t, cmd.Flags().Parse(tt.args))

			cfg := model.DefaultConfig()
			applyBuildFlags(cmd, cfg)
			assert.Equal(t, tt.wantOut, cfg.Build.OutputPath)
			assert.Equal(t, tt.wantSex, cfg.Build.SexMarker)
			assert.True(t, cfg.Validation.Enabled)
		})
	}
}

func TestReadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persons.json")
	data := `{
  "meta": {"total_women": 1, "timeline": []},
  "persons": [{"id": "7", "name": "Anna Amalia", "role": "indirect", "normierung": "sndb", "sndb_url": "u"}]
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	ds, err := readDataset(path)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Meta.TotalPersons)
	require.Len(t, ds.Persons, 1)
	assert.Equal(t, model.NormSNDB, ds.Persons[0].Normierung)
	assert.Empty(t, validate.Audit(ds))
}

func TestReadDataset_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := readDataset(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = readDataset(bad)
	assert.ErrorContains(t, err, "parse dataset")
}

func TestPrintViolations(t *testing.T) {
	violations := []validate.Violation{
		{PersonID: "7", Check: "names", Message: "empty name"},
	}

	var buf bytes.Buffer
	require.NoError(t, printViolations(&buf, violations, false))
	assert.Equal(t, "✗ names [7]: empty name\n", buf.String())

	buf.Reset()
	require.NoError(t, printViolations(&buf, nil, false))
	assert.Contains(t, buf.String(), "No violations")

	buf.Reset()
	require.NoError(t, printViolations(&buf, nil, true))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".herdata", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, model.DefaultConfig().SNDB, cfg.SNDB)
	assert.Equal(t, 3500, cfg.Validation.MinPersons)

	err = writeDefaultConfig(path)
	assert.ErrorContains(t, err, "already exists")
}

func TestApplyGlobalFlags(t *testing.T) {
	t.Cleanup(func() { dataDir, logLevel, cacheDir, noCache = "", "", "", false })

	cfg := model.DefaultConfig()
	applyGlobalFlags(cfg)
	assert.Equal(t, model.DefaultConfig(), cfg, "unset flags change nothing")

	dataDir, logLevel, cacheDir, noCache = "/srv/herdata", "debug", "/tmp/herdata-cache", true
	applyGlobalFlags(cfg)
	assert.Equal(t, "/srv/herdata", cfg.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/herdata-cache", cfg.Cache.Dir)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, filepath.Join("/srv/herdata", "ra-cmif.xml"), cfg.CMIFPath())
}
