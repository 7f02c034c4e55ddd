package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"renamer/internal/project"
)

// CursorMarker marks the cursor position inside fixture text.
const CursorMarker = "$0"

const fixtureHeader = "//- "

// Fixture is a small multi-file project written inline, used by tests and by
// `renamer check --fixture`. Files start with a `//- /path` header line; text
// without any header becomes /main.rs.
type Fixture struct {
	Files  []Source
	Cursor FixtureCursor
}

// FixtureCursor is the location of CursorMarker, if any.
type FixtureCursor struct {
	Path   string
	Offset uint32
	Set    bool
}

var ErrManyCursors = errors.New("fixture has more than one cursor")

// ParseFixture splits text into files and extracts the cursor.
func ParseFixture(text string) (Fixture, error) {
	text = trimIndent(text)
	var fx Fixture
	var cur *strings.Builder
	var path string
	flush := func() error {
		if cur == nil {
			return nil
		}
		body := cur.String()
		if i := strings.Index(body, CursorMarker); i >= 0 {
			if fx.Cursor.Set || strings.Contains(body[i+len(CursorMarker):], CursorMarker) {
				return ErrManyCursors
			}
			off, err := safecast.Conv[uint32](i)
			if err != nil {
				return fmt.Errorf("fixture cursor: %w", err)
			}
			body = body[:i] + body[i+len(CursorMarker):]
			fx.Cursor = FixtureCursor{Path: path, Offset: off, Set: true}
		}
		fx.Files = append(fx.Files, Source{Path: path, Text: []byte(body)})
		return nil
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if rest, ok := strings.CutPrefix(line, fixtureHeader); ok {
			if err := flush(); err != nil {
				return Fixture{}, err
			}
			path = strings.TrimPrefix(strings.TrimSpace(rest), "/")
			if path == "" {
				return Fixture{}, fmt.Errorf("fixture header without path: %q", strings.TrimSpace(line))
			}
			cur = &strings.Builder{}
			continue
		}
		if cur == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			path = "main.rs"
			cur = &strings.Builder{}
		}
		cur.WriteString(line)
	}
	if err := flush(); err != nil {
		return Fixture{}, err
	}
	return fx, nil
}

// trimIndent drops a leading blank line and the common indentation of all
// non-blank lines.
func trimIndent(text string) string {
	text = strings.TrimPrefix(text, "\n")
	lines := strings.Split(text, "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return text
	}
	for i, l := range lines {
		if len(l) >= indent {
			lines[i] = l[indent:]
		} else {
			lines[i] = strings.TrimLeft(l, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// LoadFixture resolves a fixture under the default manifest rooted at dir and
// returns the cursor position when the fixture has one.
func (h *Host) LoadFixture(ctx context.Context, dir string, fx Fixture) (*Snapshot, Position, error) {
	proj := project.New(dir, project.DefaultManifest())
	snap, err := h.LoadSources(ctx, proj, fx.Files)
	if err != nil {
		return nil, Position{}, err
	}
	if !fx.Cursor.Set {
		return snap, Position{}, nil
	}
	id, ok := snap.FileByPath(fx.Cursor.Path)
	if !ok {
		return nil, Position{}, fmt.Errorf("cursor file %s not loaded", fx.Cursor.Path)
	}
	return snap, Position{File: id, Offset: fx.Cursor.Offset}, nil
}
