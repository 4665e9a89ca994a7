package fs

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// Attachment is a file whose contents accompany a prompt.
type Attachment struct {
	Path    string // slash-separated, relative to the search root
	Content string
}

// Attach returns the regular files under root matching any of patterns,
// deduplicated and sorted by path. Every pattern must match at least one
// file. maxBytes <= 0 selects DefaultMaxBytes.
func Attach(root string, patterns []string, maxBytes int64) ([]Attachment, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: path must be a directory", root)
	}
	fsys := os.DirFS(root)

	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
		}
		matched := false
		err := doublestar.GlobWalk(fsys, pattern, func(p string, d iofs.DirEntry) error {
			if d.IsDir() {
				return nil
			}
			matched = true
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error matching pattern %s: %w", pattern, err)
		}
		if !matched {
			return nil, fmt.Errorf("%w %q", ErrNoMatch, pattern)
		}
	}
	slices.Sort(paths)

	atts := make([]Attachment, 0, len(paths))
	for _, p := range paths {
		content, err := readText(fsys, p, maxBytes)
		if err != nil {
			return nil, err
		}
		atts = append(atts, Attachment{Path: p, Content: content})
	}
	return atts, nil
}

func readText(fsys iofs.FS, p string, maxBytes int64) (string, error) {
	info, err := iofs.Stat(fsys, p)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", p, err)
	}
	if info.Size() > maxBytes {
		return "", fmt.Errorf("%s: %w (%d bytes, limit %d)", p, ErrTooLarge, info.Size(), maxBytes)
	}
	data, err := iofs.ReadFile(fsys, p)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", p, ErrNotText)
	}
	return string(data), nil
}

// FormatAttachments renders attachments as fenced code blocks, one per file,
// suitable for appending to a user prompt. The fence is made longer than any
// backtick run inside the file.
func FormatAttachments(atts []Attachment) string {
	var b strings.Builder
	for i, a := range atts {
		if i > 0 {
			b.WriteString("\n")
		}
		fence := strings.Repeat("`", max(3, longestRun(a.Content, '`')+1))
		lang := strings.TrimPrefix(path.Ext(a.Path), ".")

		fmt.Fprintf(&b, "File: %s\n%s%s\n", a.Path, fence, lang)
		b.WriteString(a.Content)
		if !strings.HasSuffix(a.Content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString(fence)
		b.WriteString("\n")
	}
	return b.String()
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}
