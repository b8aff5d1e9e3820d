package idstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "eosc_ids.csv"))
	require.NoError(t, err)
	return s
}

func TestNewWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eosc_ids.csv")
	_, err := New(path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "date;service_name;bluecloud_id;eosc_id;eosc_title\n", string(content))
}

func TestNewKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eosc_ids.csv")
	existing := "date;service_name;bluecloud_id;eosc_id;eosc_title\n" +
		"2023-06-01_10:00:00;oceanpatterns;4f1c9a6e;bc.oceanpatterns;Ocean Patterns\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	s, err := New(path)
	require.NoError(t, err)

	id, found, err := s.Lookup("4f1c9a6e")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "bc.oceanpatterns", id)
}

func TestAppendAndLookup(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Append("oceanpatterns", "4f1c9a6e", "bc.oceanpatterns", "Ocean Patterns"))

	id, found, err := s.Lookup("4f1c9a6e")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "bc.oceanpatterns", id)

	_, found, err = s.Lookup("unknown")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAppendIdempotent(t *testing.T) {
	s := newStore(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Append("oceanpatterns", "4f1c9a6e", "bc.oceanpatterns", "Ocean Patterns"))
	}

	entries, err := s.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAppendDifferentTupleGrowsFile(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Append("oceanpatterns", "4f1c9a6e", "bc.oceanpatterns", "Ocean Patterns"))
	require.NoError(t, s.Append("mei_generator", "77aa00bb", "bc.mei_generator", "MEI Generator"))

	entries, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "mei_generator", entries[1].ServiceName)
}

func TestEntriesTimestampFormat(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Append("oceanpatterns", "4f1c9a6e", "bc.oceanpatterns", "Ocean Patterns"))

	entries, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	// 2006-01-02_15:04:05
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}_\d{2}:\d{2}:\d{2}$`, entries[0].Date)
}

func TestEntriesRejectsMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eosc_ids.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"date;service_name;bluecloud_id;eosc_id;eosc_title",
		"only;three;fields",
	}, "\n")+"\n"), 0o644))

	s, err := New(path)
	require.NoError(t, err)

	_, err = s.Entries()
	require.Error(t, err)
}
