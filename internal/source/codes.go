package source

import (
	"fmt"
	"strconv"
	"strings"
)

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CodeMapper turns a display name into an official code.
// Names without a code are returned unchanged.
type CodeMapper interface {
	Code(name string) string
}

// CodeTable is an immutable, case insensitive name to code table.
type CodeTable struct {
	codes map[string]string
}

// NewCodeTable copies the given tables into one. Later tables win.
func NewCodeTable(tables ...map[string]string) CodeTable {
	codes := make(map[string]string)

	for _, table := range tables {
		for name, code := range table {
			codes[tableKey(name)] = code
		}
	}

	return CodeTable{codes: codes}
}

// Code implements CodeMapper.
func (t CodeTable) Code(name string) string {
	if code, ok := t.codes[tableKey(name)]; ok {
		return code
	}

	return name
}

// Len returns the number of entries.
func (t CodeTable) Len() int {
	return len(t.codes)
}

func tableKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DigitCode derives a code from the number embedded in a name, e.g.
// "LdapKoulu7" becomes "00007" with Width 5.
type DigitCode struct {
	Width int
}

// Code implements CodeMapper.
func (d DigitCode) Code(name string) string {
	n, err := strconv.Atoi(strings.Trim(strings.TrimSpace(name), asciiLetters))
	if err != nil {
		return name
	}

	return fmt.Sprintf("%0*d", d.Width, n)
}

// Codes groups the mappers applied while normalizing a role assignment.
// A nil mapper keeps the value as is.
type Codes struct {
	School       CodeMapper
	Municipality CodeMapper
	Role         CodeMapper
}

func code(m CodeMapper, name string) string {
	if m == nil || name == "" {
		return name
	}

	return m.Code(name)
}
