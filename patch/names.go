// Package patch resolves commit ranges, allocates sequence numbers and
// extracts numbered patch files into a destination directory.
package patch

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Ext is the extension every numbered patch file carries.
const Ext = ".patch"

// Entry is a numbered patch file found in a directory.
type Entry struct {
	Name string
	// Prefix is the literal digits before the first hyphen.
	Prefix string
	Number int
}

// Prefix returns the part of name before the first hyphen, or the whole
// name when it has none.
func Prefix(name string) string {
	if i := strings.IndexByte(name, '-'); i >= 0 {
		return name[:i]
	}
	return name
}

// Parse reports whether name is a numbered patch file and returns its entry.
// A name qualifies when it ends in ".patch" and its prefix is made only of
// decimal digits that fit in an int; larger prefixes are not numbered patches.
func Parse(name string) (Entry, bool) {
	if !strings.HasSuffix(name, Ext) {
		return Entry{}, false
	}
	prefix := Prefix(name)
	if !isDigits(prefix) {
		return Entry{}, false
	}
	n, err := strconv.Atoi(prefix)
	if err != nil {
		return Entry{}, false
	}
	return Entry{Name: name, Prefix: prefix, Number: n}, true
}

// Scan lists the numbered patch files directly inside dir, ordered by
// sequence number and then by name.
func Scan(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if e, ok := Parse(de.Name()); ok {
			entries = append(entries, e)
		}
	}
	Sort(entries)
	return entries, nil
}

// Sort orders entries by sequence number, breaking ties by name.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Number != entries[j].Number {
			return entries[i].Number < entries[j].Number
		}
		return entries[i].Name < entries[j].Name
	})
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
