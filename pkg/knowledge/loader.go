// Package knowledge splits an uploaded text or markdown document into
// knowledge entries: one topic plus its sentences.
package knowledge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxBytes is the upload limit used when none is configured.
const DefaultMaxBytes = 700_000

var (
	ErrUnsupportedExtension = errors.New("only .txt and .md files are supported")
	ErrTooLarge             = errors.New("knowledge file too large")
	ErrEmpty                = errors.New("knowledge file has no content")
)

type Entry struct {
	Component string   `json:"component"`
	RawText   string   `json:"text"`
	Sentences []string `json:"-"`
}

// Supported reports whether a filename has an accepted extension.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return true
	}
	return false
}

// Load reads path and parses it. maxBytes <= 0 uses DefaultMaxBytes.
func Load(path string, maxBytes int) ([]Entry, error) {
	if !Supported(path) {
		return nil, ErrUnsupportedExtension
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > int64(maxBytes) {
		return nil, fmt.Errorf("%w: %dKB, limit %dKB", ErrTooLarge, info.Size()/1024, maxBytes/1024)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(filepath.Ext(path), data)
}

// Parse prefers markdown tables for .md input and falls back to
// blank-line separated blocks whose first line names the topic.
func Parse(ext string, data []byte) ([]Entry, error) {
	if !utf8.Valid(data) {
		data = []byte(strings.ToValidUTF8(string(data), ""))
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmpty
	}

	if strings.EqualFold(ext, ".md") {
		if entries := parseTable(text); len(entries) > 0 {
			return entries, nil
		}
	}
	return parseBlocks(text), nil
}

var (
	separatorRow = regexp.MustCompile(`^\|?[\s:|-]+\|?$`)
	linkRef      = regexp.MustCompile(`\[[^\]]*\]`)
	spaces       = regexp.MustCompile(`\s+`)
	blankLines   = regexp.MustCompile(`\n\s*\n`)
)

func parseTable(text string) []Entry {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "|") {
			rows = append(rows, line)
		}
	}

	var entries []Entry
	for i, row := range rows {
		if separatorRow.MatchString(row) {
			continue
		}
		// the row right above a separator is a header
		if i+1 < len(rows) && separatorRow.MatchString(rows[i+1]) {
			continue
		}
		cells := strings.Split(strings.Trim(row, "|"), "|")
		if len(cells) < 2 {
			continue
		}
		component := cleanMarkdown(cells[0])
		description := cleanMarkdown(strings.Join(cells[1:], " "))
		if description == "" {
			continue
		}
		if component == "" {
			component = fmt.Sprintf("Topic%d", len(entries)+1)
		}
		entries = append(entries, Entry{
			Component: component,
			RawText:   description,
			Sentences: SplitSentences(description),
		})
	}
	return entries
}

func parseBlocks(text string) []Entry {
	var entries []Entry
	for _, block := range blankLines.Split(text, -1) {
		var lines []string
		for _, l := range strings.Split(block, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}
		if len(lines) == 0 {
			continue
		}

		component := cleanMarkdown(strings.TrimLeft(lines[0], "# "))
		raw := cleanMarkdown(strings.Join(lines[1:], " "))
		if raw == "" {
			raw = component
			component = fmt.Sprintf("Topic%d", len(entries)+1)
		}
		entries = append(entries, Entry{
			Component: component,
			RawText:   raw,
			Sentences: SplitSentences(raw),
		})
	}
	return entries
}

func cleanMarkdown(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = linkRef.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "`", "")
	s = strings.ReplaceAll(s, `\n`, " ")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// SplitSentences breaks text on sentence terminators. A period only ends a
// sentence when followed by whitespace or the end of input, so "1.5" stays whole.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0
	flush := func(end int) {
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			out = append(out, s)
		}
		start = end
	}
	for i, r := range runes {
		switch r {
		case '。', '！', '？', '；', ';', '!', '?':
			flush(i + 1)
		case '\n':
			flush(i)
		case '.':
			if i+1 == len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' {
				flush(i + 1)
			}
		}
	}
	flush(len(runes))
	return out
}
