/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package atlas

import (
	"strings"
	"unicode/utf8"
)

const maxLogEntries = 10

// Ledger records accepted places per leading letter, lower-cased.
type Ledger struct {
	buckets [26]map[string]struct{}
}

func NewLedger() *Ledger {
	l := &Ledger{}
	l.Reset()

	return l
}

func (l *Ledger) Reset() {
	for i := range l.buckets {
		l.buckets[i] = make(map[string]struct{})
	}
}

func bucketIndex(letter byte) (int, bool) {
	if letter < 'a' || letter > 'z' {
		return 0, false
	}

	return int(letter - 'a'), true
}

// Contains reports whether word was already accepted, ignoring case.
func (l *Ledger) Contains(word string) bool {
	word = strings.ToLower(word)
	if word == "" {
		return false
	}

	i, ok := bucketIndex(word[0])
	if !ok {
		return false
	}

	_, used := l.buckets[i][word]

	return used
}

// Add records word in the bucket of its first letter. It returns false if the
// word is already present or has no a-z leading letter.
func (l *Ledger) Add(word string) bool {
	word = strings.ToLower(word)
	if word == "" {
		return false
	}

	i, ok := bucketIndex(word[0])
	if !ok {
		return false
	}

	if _, used := l.buckets[i][word]; used {
		return false
	}

	l.buckets[i][word] = struct{}{}

	return true
}

// Bucket returns the accepted places starting with letter.
func (l *Ledger) Bucket(letter byte) []string {
	i, ok := bucketIndex(lower(letter))
	if !ok {
		return nil
	}

	out := make([]string, 0, len(l.buckets[i]))
	for w := range l.buckets[i] {
		out = append(out, w)
	}

	return out
}

// Len returns the number of accepted places.
func (l *Ledger) Len() int {
	n := 0
	for _, b := range l.buckets {
		n += len(b)
	}

	return n
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}

	return b
}

// lastLetter returns the final a-z letter of word, skipping trailing
// punctuation and spaces ("Washington, D.C." -> 'c').
func lastLetter(word string) (byte, bool) {
	for i := len(word) - 1; i >= 0; i-- {
		if b := lower(word[i]); b >= 'a' && b <= 'z' {
			return b, true
		}
	}

	return 0, false
}

func firstLetter(word string) (byte, bool) {
	if word == "" {
		return 0, false
	}

	r, _ := utf8.DecodeRuneInString(word)
	if r >= utf8.RuneSelf {
		return 0, false
	}

	b := lower(byte(r))

	return b, b >= 'a' && b <= 'z'
}

// firstUnused returns the first candidate starting with letter that is not
// yet in the ledger.
func firstUnused(candidates []string, letter byte, l *Ledger) (string, bool) {
	for _, c := range candidates {
		if f, ok := firstLetter(c); !ok || f != letter || l.Contains(c) {
			continue
		}

		return c, true
	}

	return "", false
}

type eventLog []string

// push inserts text as the newest entry, evicting the oldest beyond the cap.
func (e *eventLog) push(text string) {
	entries := append([]string{text}, (*e)...)
	if len(entries) > maxLogEntries {
		entries = entries[:maxLogEntries]
	}

	*e = entries
}
