package persist

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/ifindex"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
)

func sampleDB() *listdb.DB {
	return listdb.FromLists(
		list.FromIDs(1, 2),
		list.List{{ID: 3, Freq: 2}},
	)
}

func TestCodecFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, lz4Extension, CodecFor("out/mined.LZ4").Extension())
	assert.Equal(t, jsonExtension, CodecFor("clusters.json").Extension())
	assert.Equal(t, textExtension, CodecFor("corpus.corpus").Extension())
}

func TestCodecs_RoundTrip(t *testing.T) {
	t.Parallel()

	codecs := []Codec{TextCodec{}, LZ4Codec{}, NewJSONCodec(), &JSONCodec{}}

	for _, codec := range codecs {
		t.Run(codec.Extension(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			require.NoError(t, codec.Encode(&buf, sampleDB()))

			db, err := codec.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, sampleDB().Lists, db.Lists)
			assert.Equal(t, uint32(4), db.Dim)
		})
	}
}

func TestLZ4Codec_Compresses(t *testing.T) {
	t.Parallel()

	db := listdb.New(0, 0)
	for range 500 {
		db.Push(list.FromIDs(1, 2, 3, 4, 5, 6, 7, 8))
	}

	var plain, packed bytes.Buffer

	require.NoError(t, TextCodec{}.Encode(&plain, db))
	require.NoError(t, LZ4Codec{}.Encode(&packed, db))

	assert.Less(t, packed.Len(), plain.Len())
}

func TestSaveLoadDB(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, name := range []string{"db.txt", "db.lz4", "db.json"} {
		path := filepath.Join(dir, name)

		require.NoError(t, SaveDB(path, sampleDB()))

		db, err := LoadDB(path)
		require.NoError(t, err)
		assert.Equal(t, sampleDB().Lists, db.Lists, name)
	}
}

func TestLoadDB_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := LoadDB(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("2 1:1\n"), 0o600))

	_, err = LoadDB(bad)
	require.ErrorIs(t, err, listdb.ErrSizeMismatch)
}

func TestJSONCodec_DecodeRejectsUnorderedIDs(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{
		`{"lists":[[{"id":5,"freq":1},{"id":2,"freq":1},{"id":2,"freq":1}]],"dim":0}`,
		`{"lists":[[{"id":2,"freq":1},{"id":2,"freq":1}]],"dim":3}`,
	} {
		_, err := NewJSONCodec().Decode(strings.NewReader(doc))
		require.ErrorIs(t, err, listdb.ErrUnsorted, doc)

		var fe *listdb.FormatError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, 1, fe.Line)
	}
}

func TestJSONCodec_DecodeRaisesDim(t *testing.T) {
	t.Parallel()

	db, err := NewJSONCodec().Decode(strings.NewReader(`{"lists":[[{"id":1,"freq":1},{"id":5,"freq":2}],[]],"dim":2}`))
	require.NoError(t, err)

	assert.Equal(t, uint32(6), db.Dim)
	assert.Equal(t, 6, ifindex.FromCorpus(db).Len())
}

func TestJSONCodec_DecodeRejectsIDPastMax(t *testing.T) {
	t.Parallel()

	_, err := NewJSONCodec().Decode(strings.NewReader(`{"lists":[[{"id":4294967295,"freq":1}]]}`))
	require.ErrorIs(t, err, listdb.ErrIDOutOfRange)
}
