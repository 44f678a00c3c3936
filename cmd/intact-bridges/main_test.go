package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/intact-bridges/internal/duckdb"
)

const testdataDir = "../../internal/uniprotkb/testdata"

// offlineConfig resets viper to the defaults with entries read from testdata.
func offlineConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()
	viper.Set("uniprot.offline_dir", testdataDir)
	viper.Set("uniprot.varsplic_fasta", filepath.Join(testdataDir, "varsplic.fasta"))
	viper.Set("log.level", "error")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "intact-bridges version dev")
}

func TestRetrieve_Tab(t *testing.T) {
	offlineConfig(t)

	out, stderr, err := execute(t, "retrieve", "P12345")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Greater(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[0], "#AC\t"))
	assert.True(t, strings.HasPrefix(lines[1], "P12345\tprotein\t"))
	assert.Contains(t, out, "P12345-2\tsplice_variant\tP12345")
}

func TestRetrieve_NoTranscriptsFasta(t *testing.T) {
	offlineConfig(t)

	out, _, err := execute(t, "retrieve", "-f", "fasta", "--no-transcripts", "Q11111")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, ">"))
	assert.True(t, strings.HasPrefix(out, ">sp|P12345|TEST_HUMAN"))
	assert.Contains(t, out, "MKTALVLLAL")
}

func TestRetrieve_TranscriptIdentifiers(t *testing.T) {
	offlineConfig(t)

	out, stderr, err := execute(t, "retrieve", "-f", "fasta", "P12345-2", "P12345-PRO_0000012345")
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Equal(t, 2, strings.Count(out, ">sp|P12345|TEST_HUMAN"))
	assert.Contains(t, out, ">sp|P12345-PRO_0000012345|")
}

func TestRetrieve_NotFoundIsReported(t *testing.T) {
	offlineConfig(t)

	out, stderr, err := execute(t, "retrieve", "P99999")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, stderr, "P99999\tnot-found")
}

func TestRetrieve_UnknownFormat(t *testing.T) {
	offlineConfig(t)

	_, _, err := execute(t, "retrieve", "-f", "xml", "P12345")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUsage))
}

func TestTranscripts(t *testing.T) {
	offlineConfig(t)

	out, _, err := execute(t, "transcripts", "P12345-2")
	require.NoError(t, err)
	assert.Contains(t, out, "P12345-2\tsplice_variant\tP12345\t5\tMKTAL")

	out, _, err = execute(t, "transcripts", "P12345-PRO_0000012345")
	require.NoError(t, err)
	assert.Contains(t, out, "P12345-PRO_0000012345\tfeature_chain\tP12345\t5\tKTALV")
}

func TestBatch_Store(t *testing.T) {
	offlineConfig(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "accessions.txt")
	require.NoError(t, os.WriteFile(input, []byte("# accessions\nP12345\n\nP99999\n"), 0644))
	dbPath := filepath.Join(dir, "proteins.duckdb")

	out, stderr, err := execute(t, "batch", "-i", input, "--workers", "2", "--store", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "P12345\tprotein\t")
	assert.Contains(t, stderr, "P99999\tnot-found")

	store, err := duckdb.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()
	records, err := store.LookupProtein("P12345")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "TEST_HUMAN", records[0].ID)
}

func TestBatch_RequiresInput(t *testing.T) {
	offlineConfig(t)

	_, _, err := execute(t, "batch")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUsage))
}

func TestBlastConfig(t *testing.T) {
	t.Setenv("BLAST_TABLE_NAME", "blast_jobs")

	out, _, err := execute(t, "blast-config", "--email", "myName@yahaa.com")
	require.NoError(t, err)
	assert.Contains(t, out, "email: myName@yahaa.com")
	assert.Contains(t, out, "table_name: blast_jobs")
	assert.Contains(t, out, "nr_per_submission: 20")

	_, _, err = execute(t, "blast-config")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUsage))
}

func TestOntology(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()

	dir := t.TempDir()
	obo := "format-version: 1.2\n\n" +
		"[Term]\nid: MI:0000\nname: molecular interaction\n\n" +
		"[Term]\nid: MI:0001\nname: interaction detection method\nis_a: MI:0000 ! molecular interaction\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mi.obo"), []byte(obo), 0644))

	out, _, err := execute(t, "ontology", dir, "mi.obo")
	require.NoError(t, err)
	assert.Equal(t, "2 terms\n", out)

	out, _, err = execute(t, "ontology", dir, "mi.obo", "MI:0000")
	require.NoError(t, err)
	assert.Contains(t, out, "name: molecular interaction")
	assert.Contains(t, out, "parents: -")
	assert.Contains(t, out, "children: MI:0001")

	_, _, err = execute(t, "ontology", dir, "mi.obo", "MI:9999")
	require.Error(t, err)
}

func TestConfigSetAndGet(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	viper.SetConfigFile(cfgFile)

	out, _, err := execute(t, "config", "set", "resolve.max_depth", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Set resolve.max_depth = 4")

	data, err := os.ReadFile(cfgFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_depth: 4")

	out, _, err = execute(t, "config", "get", "resolve.max_depth")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	_, _, err = execute(t, "config", "get", "missing.key")
	require.Error(t, err)
}

func TestDatabases(t *testing.T) {
	assert.Equal(t, []string{"GO", "PDB", "Ensembl"}, databases([]string{"GO, PDB", " Ensembl", ""}))
	assert.Nil(t, databases(nil))
}

func TestReadAccessions(t *testing.T) {
	acs, err := readAccessions(strings.NewReader("# header\nP12345\n  Q11111 extra\n\nP22222-2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"P12345", "Q11111", "P22222-2"}, acs)
}
