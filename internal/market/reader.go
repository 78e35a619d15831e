// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package market

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// HeaderLines is the number of leading lines discarded before data rows.
// The source export spreads its column names over two lines.
const HeaderLines = 2

// ReadLines opens path as UTF-8 text, drops the first HeaderLines lines
// without inspecting them, and returns the remaining lines with their
// terminators stripped. A leading byte order mark is removed.
//
// A missing file yields an error that wraps fs.ErrNotExist.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	defer f.Close()

	lines, err := readLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading source %s: %w", path, err)
	}
	return lines, nil
}

func readLines(r io.Reader) ([]string, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	br := bufio.NewReader(dec)

	var (
		lines   []string
		skipped int
	)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if skipped < HeaderLines {
				skipped++
			} else {
				lines = append(lines, strings.TrimRight(line, "\r\n"))
			}
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
