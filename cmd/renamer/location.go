package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"renamer/internal/analysis"
	"renamer/internal/project"
	"renamer/internal/source"
)

// location is a parsed cursor argument: "file:line:col" or "file@offset".
type location struct {
	Path      string
	Line, Col uint32 // 1-based, Col in bytes
	Offset    uint32
	HasOffset bool
}

var errBadLocation = errors.New("expected <file>:<line>:<col> or <file>@<offset>")

func parseLocation(arg string) (location, error) {
	if i := strings.LastIndexByte(arg, '@'); i > 0 {
		off, err := strconv.ParseUint(arg[i+1:], 10, 32)
		if err == nil {
			return location{Path: arg[:i], Offset: uint32(off), HasOffset: true}, nil
		}
	}
	rest, colStr, ok := cutLast(arg, ':')
	if !ok {
		return location{}, fmt.Errorf("%q: %w", arg, errBadLocation)
	}
	path, lineStr, ok := cutLast(rest, ':')
	if !ok || path == "" {
		return location{}, fmt.Errorf("%q: %w", arg, errBadLocation)
	}
	line, err := strconv.ParseUint(lineStr, 10, 32)
	if err != nil || line == 0 {
		return location{}, fmt.Errorf("%q: bad line: %w", arg, errBadLocation)
	}
	col, err := strconv.ParseUint(colStr, 10, 32)
	if err != nil || col == 0 {
		return location{}, fmt.Errorf("%q: bad column: %w", arg, errBadLocation)
	}
	return location{Path: path, Line: uint32(line), Col: uint32(col)}, nil
}

func cutLast(s string, sep byte) (before, after string, ok bool) {
	i := strings.LastIndexByte(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

// resolve turns loc into a position of snap. The path is taken relative to
// the working directory.
func (loc location) resolve(proj *project.Project, snap *analysis.Snapshot) (analysis.Position, error) {
	rel, err := proj.Rel(loc.Path)
	if err != nil {
		return analysis.Position{}, err
	}
	id, ok := snap.FileByPath(rel)
	if !ok {
		return analysis.Position{}, fmt.Errorf("%s is not a source file of the project", loc.Path)
	}
	if loc.HasOffset {
		f := snap.Files().Get(id)
		if int(loc.Offset) > len(f.Content) {
			return analysis.Position{}, fmt.Errorf("%s: offset %d is past the end of the file", loc.Path, loc.Offset)
		}
		return analysis.Position{File: id, Offset: loc.Offset}, nil
	}
	off, err := snap.Files().Offset(id, source.LineCol{Line: loc.Line, Col: loc.Col})
	if err != nil {
		return analysis.Position{}, err
	}
	return analysis.Position{File: id, Offset: off}, nil
}

// formatSpan renders "path:line:col-line:col".
func formatSpan(fs *source.FileSet, sp source.Span) string {
	start, end := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d-%d:%d", fs.Get(sp.File).Path, start.Line, start.Col, end.Line, end.Col)
}
