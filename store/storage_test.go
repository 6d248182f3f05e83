package store

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRows plays back the hit column of the search query. A nil entry is the
// NULL the lateral join produces for an existing but empty collection.
type fakeRows struct {
	hits []*string
	pos  int
	err  error
}

func (r *fakeRows) Next() bool {
	if r.pos < len(r.hits) {
		r.pos++
		return true
	}
	return false
}

func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(**string)) = r.hits[r.pos-1]
	return nil
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func strptr(s string) *string { return &s }

func TestCollectSearchHitsReturnsContentsInOrder(t *testing.T) {
	rows := &fakeRows{hits: []*string{strptr("first"), strptr("second")}}

	texts, err := collectSearchHits(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, texts)
}

func TestCollectSearchHitsEmptyCollection(t *testing.T) {
	// One NULL row: the collection exists but has no chunks.
	rows := &fakeRows{hits: []*string{nil}}

	texts, err := collectSearchHits(rows)
	require.NoError(t, err)
	assert.Empty(t, texts)
}

func TestCollectSearchHitsMissingCollection(t *testing.T) {
	// Zero rows: the collection row itself is gone, deleted between the
	// caller's registry lookup and the query.
	texts, err := collectSearchHits(&fakeRows{})
	assert.ErrorIs(t, err, ErrCollectionNotFound)
	assert.Nil(t, texts)
}

func TestCollectSearchHitsRowError(t *testing.T) {
	rows := &fakeRows{hits: []*string{strptr("first")}, err: assert.AnError}

	_, err := collectSearchHits(rows)
	assert.ErrorIs(t, err, assert.AnError)
}
