package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CaseAndPunctuation(t *testing.T) {
	n := NewNormalizer()

	// The three spellings seen in real harness output fold to one key.
	a := n.Normalize("connect_block")
	b := n.Normalize("ConnectBlock")
	c := n.Normalize("connectblock")
	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
	assert.Equal(t, "connectblock", a)
}

func TestNormalize_DashesAndSpaces(t *testing.T) {
	n := NewNormalizer()
	assert.Equal(t, n.Normalize("verify-script"), n.Normalize("verify script"))
	assert.Equal(t, "verifyscript", n.Normalize("Verify_Script"))
}

func TestNormalize_BuiltinSynonyms(t *testing.T) {
	n := NewNormalizer()
	assert.Equal(t, "connectblock", n.Normalize("block_connect"))
	assert.Equal(t, "accepttomemorypool", n.Normalize("mempool_accept"))
	assert.Equal(t, "verifyscript", n.Normalize("script_verify"))
}

func TestNormalize_DistinctNamesStayDistinct(t *testing.T) {
	n := NewNormalizer()
	assert.NotEqual(t, n.Normalize("connect_block"), n.Normalize("connect_block_400tx"))
	assert.NotEqual(t, n.Normalize("is_standard_tx"), n.Normalize("is_standard_tx_400tx"))
}

func TestLoadSynonyms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"BlockConnectTimed: connect_block\nmempool_accept_v2: accept_to_memory_pool\n"), 0o644))

	n := NewNormalizer()
	require.NoError(t, n.LoadSynonyms(path))

	assert.Equal(t, n.Normalize("connect_block"), n.Normalize("BlockConnectTimed"))
	assert.Equal(t, n.Normalize("accept_to_memory_pool"), n.Normalize("mempool_accept_v2"))
}

func TestLoadSynonyms_MissingFile(t *testing.T) {
	n := NewNormalizer()
	err := n.LoadSynonyms(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadSynonyms_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[not: a, mapping"), 0o644))

	n := NewNormalizer()
	err := n.LoadSynonyms(path)
	require.Error(t, err)
}
