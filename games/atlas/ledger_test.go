/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package atlas

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerBucketsByFirstLetter(t *testing.T) {
	l := NewLedger()

	for _, w := range []string{"Berlin", "bogota", "Nairobi", "Amsterdam", "athens", "Zagreb"} {
		require.True(t, l.Add(w), w)
	}

	for letter := byte('a'); letter <= 'z'; letter++ {
		for _, w := range l.Bucket(letter) {
			assert.True(t, strings.HasPrefix(w, string(letter)), "%q in bucket %c", w, letter)
		}
	}

	assert.ElementsMatch(t, []string{"berlin", "bogota"}, l.Bucket('B'))
	assert.Equal(t, 6, l.Len())
}

func TestLedgerRejectsDuplicatesIgnoringCase(t *testing.T) {
	l := NewLedger()

	require.True(t, l.Add("Berlin"))

	for _, w := range []string{"berlin", "BERLIN", "bErLiN"} {
		assert.True(t, l.Contains(w))
		assert.False(t, l.Add(w))
	}

	assert.Equal(t, 1, l.Len())
}

func TestLedgerRejectsNonLetters(t *testing.T) {
	l := NewLedger()

	assert.False(t, l.Add(""))
	assert.False(t, l.Add("123 Street"))
	assert.False(t, l.Add("Évian"))
	assert.Zero(t, l.Len())
}

func TestLedgerReset(t *testing.T) {
	l := NewLedger()
	l.Add("Paris")

	l.Reset()

	assert.False(t, l.Contains("paris"))
	assert.Zero(t, l.Len())
}

func TestLastLetter(t *testing.T) {
	for word, want := range map[string]byte{
		"Berlin":           'n',
		"Washington, D.C.": 'c',
		"Lome ":            'e',
	} {
		got, ok := lastLetter(word)
		require.True(t, ok, word)
		assert.Equal(t, want, got, word)
	}

	_, ok := lastLetter("42")
	assert.False(t, ok)
}

func TestFirstUnused(t *testing.T) {
	l := NewLedger()
	l.Add("Nairobi")

	place, ok := firstUnused([]string{"nairobi", "Berlin", "Nepal"}, 'n', l)
	require.True(t, ok)
	assert.Equal(t, "Nepal", place)

	_, ok = firstUnused([]string{"NAIROBI"}, 'n', l)
	assert.False(t, ok)

	_, ok = firstUnused(nil, 'n', l)
	assert.False(t, ok)
}

func TestEventLogBoundedNewestFirst(t *testing.T) {
	var log eventLog

	for i := range 25 {
		log.push(fmt.Sprintf("entry %d", i))

		assert.LessOrEqual(t, len(log), maxLogEntries)
		assert.Equal(t, fmt.Sprintf("entry %d", i), log[0])
	}

	require.Len(t, log, maxLogEntries)

	for i, entry := range log {
		assert.Equal(t, fmt.Sprintf("entry %d", 24-i), entry)
	}
}
