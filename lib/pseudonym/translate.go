// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package pseudonym

import (
	"strings"
)

// IMSILength is the number of digits in an IMSI.
const IMSILength = 15

// Translator rewrites free-form log text, replacing every
// whitespace-separated word that looks like an IMSI with its pseudonym.
// It lets operators share core network logs that mention subscribers
// consistently with the archives.
type Translator struct {
	hash Func
	// prefix is the home network's MCC+MNC; only IMSIs starting with it
	// are replaced.
	prefix string
}

// NewTranslator returns a Translator for IMSIs beginning with prefix.
// An empty prefix matches any 15-digit word.
func NewTranslator(digest Digest, seed []byte, prefix string) (*Translator, error) {
	keyed, err := digest.Keyed(seed)
	if err != nil {
		return nil, err
	}
	return &Translator{hash: keyed, prefix: prefix}, nil
}

// Line translates one line. Words are rejoined with single spaces.
func (t *Translator) Line(line string) string {
	words := strings.Fields(line)
	for index, word := range words {
		if t.isIMSI(word) {
			words[index] = t.hash(word)
		}
	}
	return strings.Join(words, " ")
}

func (t *Translator) isIMSI(word string) bool {
	if len(word) != IMSILength || !strings.HasPrefix(word, t.prefix) {
		return false
	}
	for index := range len(word) {
		if word[index] < '0' || word[index] > '9' {
			return false
		}
	}
	return true
}
