package journal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type memJournal struct {
	recs   []Record
	err    error
	closed bool
}

func (m *memJournal) Append(r Record) error {
	if m.err != nil {
		return m.err
	}
	m.recs = append(m.recs, r)
	return nil
}

func (m *memJournal) Close() error {
	m.closed = true
	return m.err
}

func TestMultiFansOut(t *testing.T) {
	t.Parallel()

	broken := &memJournal{err: errors.New("disk full")}
	a, b := &memJournal{}, &memJournal{}
	m := Multi{a, broken, b}

	err := m.Append(Record{Action: "BUY"})
	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, a.recs, 1)
	assert.Len(t, b.recs, 1)

	assert.Error(t, m.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)

	assert.NoError(t, Multi{a}.Append(Record{}))
}
