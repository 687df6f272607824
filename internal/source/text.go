// Package source reads raw transactions for itemset.Load.
//
// Two forms are supported: delimited text (one transaction per line) and SQL
// query results whose item-list column holds a bracketed, separator-joined
// string such as "[123,456,789]".
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultSeparator splits items when no separator is configured.
const DefaultSeparator = " "

// maxLineSize bounds a single transaction line.
const maxLineSize = 16 << 20

// ReadText reads one transaction per line from r.
//
// Empty lines and lines starting with '#', '%' or '@' are skipped as comments
// or metadata. Fields are split on sep; an empty sep means DefaultSeparator.
// Empty fields produced by repeated separators are dropped.
func ReadText(r io.Reader, sep string) ([][]string, error) {
	if sep == "" {
		sep = DefaultSeparator
	}

	var rows [][]string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if isSkipped(text) {
			continue
		}
		rows = append(rows, Split(text, sep))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read transactions at line %d: %w", line+1, err)
	}

	return rows, nil
}

// ReadFile reads a transaction file. See ReadText for the format.
func ReadFile(path, sep string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transactions: %w", err)
	}
	defer f.Close()

	rows, err := ReadText(f, sep)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Split splits a transaction line on sep, dropping empty fields.
func Split(line, sep string) []string {
	parts := strings.Split(line, sep)
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// StripBrackets removes one pair of enclosing '[' ']' from s, if present.
func StripBrackets(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return s
}

func isSkipped(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	switch line[0] {
	case '#', '%', '@':
		return true
	}
	return false
}
