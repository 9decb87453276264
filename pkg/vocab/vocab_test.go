package vocab

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
)

const testVocabulary = "apple = 0 = 10 = 4\n\nbanana = 2 = 7 = 3\n"

func TestRead(t *testing.T) {
	t.Parallel()

	v, err := Read(strings.NewReader(testVocabulary))
	require.NoError(t, err)

	require.Equal(t, 2, v.Len())
	assert.Equal(t, Entry{Term: "banana", ID: 2, CorpFreq: 7, DocFreq: 3}, v.Entries[1])
	assert.Equal(t, "apple", v.Term(0))
	assert.Equal(t, "1", v.Term(1))
}

func TestRead_Malformed(t *testing.T) {
	t.Parallel()

	_, err := Read(strings.NewReader("apple = 0 = 10\n"))
	require.ErrorIs(t, err, ErrMalformedEntry)

	_, err = Read(strings.NewReader("apple = x = 10 = 1\n"))

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 1, fe.Line)
}

func TestWriteWords(t *testing.T) {
	t.Parallel()

	v, err := Read(strings.NewReader(testVocabulary))
	require.NoError(t, err)

	db := listdb.FromLists(list.List{{ID: 0, Freq: 2}, {ID: 2, Freq: 1}}, list.List{})

	var buf bytes.Buffer
	require.NoError(t, v.WriteWords(&buf, db))

	assert.Equal(t, "apple[2] banana[1]\n\n", buf.String())
}
