package extract

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeysFromSource(t *testing.T) {
	keys, err := KeysFromSource("./testdata/extractor")
	require.NoError(t, err)

	require.Len(t, keys, 9)
	require.True(t, sort.StringsAreSorted(keys))

	for _, find := range []string{"login.welcome", "zipcode", "use.func", "used.const", "unused.const", "used.var", "unused.var", "inline.var", "sub.translation"} {
		require.Contains(t, keys, find)
	}
}

func TestKeysFromSourceMissingDir(t *testing.T) {
	_, err := KeysFromSource("./testdata/does-not-exist")
	require.Error(t, err)
}
