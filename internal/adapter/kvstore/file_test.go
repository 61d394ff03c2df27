package kvstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"googlebot/internal/domain"
)

func newStore(t *testing.T, content string) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "GoogleBot.config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return New(path)
}

func TestGet(t *testing.T) {
	s := newStore(t, "TEXT_RESULTS: 3\nIMAGE_RESULTS: 5\n")

	v, err := s.Get(TextResults)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = s.Get("image_results")
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestGetMissingKey(t *testing.T) {
	s := newStore(t, "TEXT_RESULTS: 3\n")
	v, err := s.Get("NOPE")
	require.NoError(t, err)
	assert.Equal(t, Missing, v)

	v, err = s.Get("")
	require.NoError(t, err)
	assert.Equal(t, Missing, v)
}

func TestGetUnparsableValue(t *testing.T) {
	s := newStore(t, "TEXT_RESULTS: lots\n")
	v, err := s.Get(TextResults)
	require.NoError(t, err)
	assert.Equal(t, Missing, v)
}

func TestGetSubstringHitsFirstLine(t *testing.T) {
	s := newStore(t, "MAX_TEXT_RESULTS: 9\nTEXT_RESULTS: 3\n")
	v, err := s.Get(TextResults)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestGetMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "absent.config"))
	_, err := s.Get(TextResults)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreIO))
}

func TestSetRewritesMatchingLine(t *testing.T) {
	s := newStore(t, "# results\nTEXT_RESULTS: 3\nIMAGE_RESULTS: 5\n")

	changed, err := s.Set(TextResults, 5)
	require.NoError(t, err)
	assert.True(t, changed)

	raw, err := s.Raw()
	require.NoError(t, err)
	assert.Equal(t, "# results\nTEXT_RESULTS: 5\nIMAGE_RESULTS: 5\n", raw)
}

func TestSetGetRoundTrip(t *testing.T) {
	s := newStore(t, "TEXT_RESULTS: 3\nIMAGE_RESULTS: 5\n")
	for _, v := range []int{1, 7, 10, 42} {
		_, err := s.Set(ImageResults, v)
		require.NoError(t, err)
		got, err := s.Get(ImageResults)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestSetUsesCallerCasing(t *testing.T) {
	s := newStore(t, "TEXT_RESULTS: 3\n")
	changed, err := s.Set("text_results", 4)
	require.NoError(t, err)
	assert.True(t, changed)

	raw, _ := s.Raw()
	assert.Equal(t, "text_results: 4\n", raw)
}

func TestSetNoMatch(t *testing.T) {
	s := newStore(t, "TEXT_RESULTS: 3")
	changed, err := s.Set("UNKNOWN", 1)
	require.NoError(t, err)
	assert.False(t, changed)

	raw, _ := s.Raw()
	assert.Equal(t, "TEXT_RESULTS: 3", raw)
}

func TestSetEmptyKey(t *testing.T) {
	s := newStore(t, "TEXT_RESULTS: 3\n")
	changed, err := s.Set("", 1)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSetMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "absent.config"))
	_, err := s.Set(TextResults, 1)
	assert.ErrorIs(t, err, domain.ErrStoreIO)

	_, err = s.Raw()
	assert.ErrorIs(t, err, domain.ErrStoreIO)
}

func TestSplitLinesKeepEnds(t *testing.T) {
	assert.Equal(t, []string{"a\n", "b\n", "c"}, splitLinesKeepEnds("a\nb\nc"))
	assert.Nil(t, splitLinesKeepEnds(""))
}
