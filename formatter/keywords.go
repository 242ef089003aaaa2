// Copyright © 2024 The ELPS authors

package formatter

import (
	"sort"
	"strings"
	"sync"
)

// Keyword is one entry of a KeywordTable: an upper-case spelling and the
// form it is rewritten to.
type Keyword struct {
	Key  string
	Form string
}

// KeywordTable maps upper-case keyword spellings to their normalized output
// form. A table is immutable once built and safe for concurrent use.
//
// Compound spellings such as "DEFINE VARIABLE" are matched before their
// parts, and every output form is also registered as a key of itself, so
// normalizing already normalized text changes nothing.
type KeywordTable struct {
	forms   map[string]string
	byFirst map[byte][]string
}

// NewKeywordTable builds a table from a map of spellings to forms. Keys are
// upper-cased; forms are used verbatim.
func NewKeywordTable(entries map[string]string) *KeywordTable {
	t := &KeywordTable{
		forms:   make(map[string]string, 2*len(entries)),
		byFirst: make(map[byte][]string),
	}
	for k, v := range entries {
		t.forms[asciiUpper(k)] = v
	}
	for _, v := range entries {
		if self := asciiUpper(v); t.forms[self] == "" {
			t.forms[self] = v
		}
	}
	for k := range t.forms {
		if k == "" {
			delete(t.forms, k)
			continue
		}
		t.byFirst[k[0]] = append(t.byFirst[k[0]], k)
	}
	for _, keys := range t.byFirst {
		sort.Slice(keys, func(i, j int) bool {
			if len(keys[i]) != len(keys[j]) {
				return len(keys[i]) > len(keys[j])
			}
			return keys[i] < keys[j]
		})
	}
	return t
}

var defaultKeywords = sync.OnceValue(func() *KeywordTable {
	return NewKeywordTable(defaultKeywordForms)
})

// DefaultKeywords returns the built-in keyword table.
func DefaultKeywords() *KeywordTable {
	return defaultKeywords()
}

// Len returns the number of spellings in the table.
func (t *KeywordTable) Len() int {
	return len(t.forms)
}

// Lookup returns the normalized form of a single spelling.
func (t *KeywordTable) Lookup(word string) (string, bool) {
	form, ok := t.forms[asciiUpper(word)]
	return form, ok
}

// Entries returns every spelling in alphabetical order.
func (t *KeywordTable) Entries() []Keyword {
	entries := make([]Keyword, 0, len(t.forms))
	for k, v := range t.forms {
		entries = append(entries, Keyword{Key: k, Form: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Normalize rewrites every keyword of line to its normalized form. Matches
// are whole words, case-insensitive, longest spelling first. Text inside
// strings and comments is left alone, as are field and attribute names
// qualified with a preceding "." or ":".
func (t *KeywordTable) Normalize(line string) string {
	kinds := classify(line)
	upper := asciiUpper(line)
	var b strings.Builder
	last := 0
	for i := 0; i < len(line); {
		c := upper[i]
		if kinds[i] != kindCode || !isLetter(c) || i > 0 && isIdentByte(upper[i-1]) {
			i++
			continue
		}
		if key := t.match(upper, kinds, i); key != "" && !qualified(upper, i) {
			if b.Len() == 0 {
				b.Grow(len(line))
			}
			b.WriteString(line[last:i])
			b.WriteString(t.forms[key])
			i += len(key)
			last = i
			continue
		}
		for i < len(line) && isIdentByte(upper[i]) {
			i++
		}
	}
	if last == 0 {
		return line
	}
	b.WriteString(line[last:])
	return b.String()
}

func (t *KeywordTable) match(upper string, kinds []byteKind, i int) string {
	for _, key := range t.byFirst[upper[i]] {
		j := i + len(key)
		if j > len(upper) || upper[i:j] != key {
			continue
		}
		if j < len(upper) && isIdentByte(upper[j]) {
			continue
		}
		if allCode(kinds, i, j) {
			return key
		}
	}
	return ""
}

// qualified reports whether the word at i follows "name." or "handle:".
func qualified(upper string, i int) bool {
	if i < 2 {
		return false
	}
	p := upper[i-1]
	return (p == '.' || p == ':') && isIdentByte(upper[i-2])
}

var defaultKeywordForms = map[string]string{
	// Abbreviated forms.
	"DEFINE":    "def",
	"VARIABLE":  "var",
	"PARAMETER": "param",
	"AVAILABLE": "avail",

	"DEFINE VARIABLE":                   "def var",
	"DEFINE PARAMETER":                  "def param",
	"DEFINE TEMP-TABLE":                 "def temp-table",
	"DEFINE BUFFER":                     "def buffer",
	"DEFINE STREAM":                     "def stream",
	"DEFINE NEW GLOBAL SHARED VAR":      "def new global shared var",
	"DEFINE NEW SHARED VAR":             "def new shared var",
	"DEFINE NEW GLOBAL SHARED VARIABLE": "def new global shared var",
	"DEFINE NEW SHARED VARIABLE":        "def new shared var",
	"DEF INPUT PARAM":                   "def input param",
	"DEFINE INPUT PARAMETER":            "def input param",
	"DEF OUTPUT PARAM":                  "def output param",
	"DEFINE OUTPUT PARAMETER":           "def output param",
	"DEFINE INPUT-OUTPUT PARAMETER":     "def input-output param",

	// Statements and options.
	"ACCUMULATE": "accumulate", "ADD": "add", "ADD-LAST": "add-last", "AND": "and",
	"AS": "as", "ASSIGN": "assign", "BEGIN-PROFILER": "begin-profiler", "BEGINS": "begins",
	"BREAK": "break", "BUFFER": "buffer", "BY": "by", "BY-REFERENCE": "by-reference",
	"CALL": "call", "CAN-FIND": "can-find", "CASE": "case", "CATCH": "catch",
	"CLASS": "class", "CLOSE": "close", "COLON": "colon", "COMBO-BOX": "combo-box",
	"COMMIT": "commit", "CONSTRUCTOR": "constructor", "COPY-DATASET": "copy-dataset",
	"COPY-FILE": "copy-file", "CREATE": "create", "DATA-SERVER": "data-server",
	"DATA-SOURCE": "data-source", "DATABASE": "database", "DATASET": "dataset",
	"DECODE": "decode", "DELETE": "delete", "DESCENDING": "descending",
	"DESTRUCTOR": "destructor", "DIALOG-BOX": "dialog-box", "DISABLE": "disable",
	"DISK-SPACE": "disk-space", "DISPLAY": "display", "DO": "do", "DYNAMIC": "dynamic",
	"EACH": "each", "ELSE": "else", "EMPTY": "empty", "ENABLE": "enable", "END": "end",
	"ENTRY": "entry", "ERROR": "error", "EXCLUSIVE-LOCK": "exclusive-lock",
	"EXISTS": "exists", "EXPORT": "export", "EXTENT": "extent", "FIELD": "field",
	"FILE-INFO": "file-info", "FILTER": "filter", "FINALLY": "finally", "FIND": "find",
	"FIRST": "first", "FIRST-OF": "first-of", "FOR": "for", "FORM": "form",
	"FORMAT": "format", "FORWARD": "forward", "FRAME": "frame", "FUNCTION": "function",
	"GET-BYTE": "get-byte", "GET-KEY-VALUE": "get-key-value", "GLOBAL": "global", "GO": "go",
	"HIDDEN": "hidden", "IF": "if", "IMAGE": "image", "IN": "in",
	"INDEX": "index", "INITIAL": "initial", "INNER-JOIN": "inner-join", "INPUT": "input",
	"INPUT-OUTPUT": "input-output", "INSERT": "insert", "IS": "is", "JOIN": "join",
	"LABEL": "label", "LAST": "last", "LAST-OF": "last-of", "LEAVE": "leave", "LIKE": "like",
	"LOG-MANAGER": "log-manager", "LOOKUP": "lookup", "MENU": "menu", "MESSAGE": "message",
	"METHOD": "method", "MOVE": "move", "NEW": "new", "NEXT": "next", "NO": "no",
	"NO-ERROR": "no-error", "NO-LOCK": "no-lock", "NO-UNDO": "no-undo", "NOT": "not",
	"NUM-ENTRIES": "num-entries", "OBJECT": "object", "OF": "of", "ON": "on", "OPEN": "open",
	"OR": "or", "OTHERWISE": "otherwise", "OUTER-JOIN": "outer-join", "OUTPUT": "output",
	"OVERLAY": "overlay", "PAUSE": "pause", "PERCENT": "percent", "PREPROCESS": "preprocess",
	"PRINTER": "printer", "PRIVATE": "private", "PROC-TEXT": "proc-text",
	"PROCEDURE": "procedure", "PROGRESS": "progress", "PROMPT-FOR": "prompt-for",
	"PROTECTED": "protected", "PUBLIC": "public", "QUERY": "query",
	"RADIO-BUTTON": "radio-button", "RELEASE": "release", "REPEAT": "repeat",
	"REPOSITION": "reposition", "RETURN": "return", "RETURNS": "returns",
	"ROW-FETCH": "row-fetch", "RUN": "run", "SCHEMA": "schema", "SCREEN": "screen",
	"SEARCH": "search", "SEEK": "seek", "SELF": "self", "SESSION": "session", "SET": "set",
	"SHARE": "share", "SHARE-LOCK": "share-lock", "SHARED": "shared", "SKIP": "skip",
	"SORT": "sort", "STATIC": "static", "STREAM": "stream", "SUBSTITUTE": "substitute",
	"SUPER": "super", "SYSTEM-DIALOGS": "system-dialogs", "TABLE": "table",
	"TEMP-TABLE": "temp-table", "TEXT": "text", "THEN": "then", "THIS-OBJECT": "this-object",
	"THROWS": "throws", "TO": "to", "TOP-ONLY": "top-only", "TRAIL": "trail",
	"TRANSACTION": "transaction", "TRIGGER": "trigger", "TRUNCATE": "truncate",
	"UNDO": "undo", "UNKNOWN": "unknown", "UNLOAD": "unload", "UPDATE": "update",
	"USE": "use", "USE-INDEX": "use-index", "USING": "using", "VALIDATE": "validate",
	"VIEW": "view", "VIEW-AS": "view-as", "VOID": "void", "WAIT-FOR": "wait-for",
	"WHEN": "when", "WHERE": "where", "WHILE": "while", "WIDGET": "widget",
	"WINDOW": "window", "WITH": "with", "XML-NODE": "xml-node", "XREF": "xref",
	"YES": "yes", "ZERO": "zero",

	// Data types.
	"BLOB": "blob", "CHAR": "char", "CHARACTER": "character", "CLOB": "clob", "COM-HANDLE": "com-handle",
	"DATE": "date", "DATETIME": "datetime", "DATETIME-TZ": "datetime-tz",
	"DEC": "dec", "DECIMAL": "decimal", "HANDLE": "handle", "INT": "int", "INT64": "int64", "INTEGER": "integer",
	"LOGICAL": "logical", "LONGCHAR": "longchar", "MEMPTR": "memptr", "RAW": "raw",
	"RECID": "recid", "ROWID": "rowid", "SMALLINT": "smallint",
}
