// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"testing"

	"github.com/coimbrox/progress-4gl-formatter/formatter"
	"github.com/stretchr/testify/assert"
)

func TestListKeywords(t *testing.T) {
	table := formatter.NewKeywordTable(map[string]string{
		"DEFINE":    "def",
		"DEF":       "def",
		"AVAILABLE": "avail",
	})
	var buf bytes.Buffer
	listKeywords(&buf, table)
	assert.Equal(t, "avail\n    AVAIL, AVAILABLE\ndef\n    DEF, DEFINE\n", buf.String())
}

func TestLookupKeywords(t *testing.T) {
	table := formatter.NewKeywordTable(map[string]string{"DEFINE": "def"})
	var buf bytes.Buffer
	lookupKeywords(&buf, table, []string{"define", "customer"})
	assert.Equal(t, "define\tdef\ncustomer\tcustomer (not a keyword)\n", buf.String())
}

func TestListKeywords_Default(t *testing.T) {
	var buf bytes.Buffer
	listKeywords(&buf, formatter.DefaultKeywords())
	assert.Contains(t, buf.String(), "\ndef\n")
	assert.Contains(t, buf.String(), "DEFINE")
}
