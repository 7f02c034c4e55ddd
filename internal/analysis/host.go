package analysis

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"runtime"
	"slices"

	"renamer/internal/project"
	"renamer/internal/source"
	"renamer/internal/syntax"
	"renamer/internal/trace"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"
)

const defaultCacheSize = 512

// Options tunes snapshot loading.
type Options struct {
	Jobs      int // concurrent readers and parsers, 0 means GOMAXPROCS
	CacheSize int // parse trees kept between loads, 0 means 512
}

// Source is one in-memory source file with a project-relative path.
type Source struct {
	Path string
	Text []byte
}

type treeKey struct {
	path string
	hash [32]byte
}

// Host loads snapshots and reuses the parse trees of unchanged files across loads.
type Host struct {
	opts  Options
	cache *lru.Cache[treeKey, *sitter.Tree]
}

// NewHost creates a Host.
func NewHost(opts Options) (*Host, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[treeKey, *sitter.Tree](size)
	if err != nil {
		return nil, fmt.Errorf("parse cache: %w", err)
	}
	return &Host{opts: opts, cache: cache}, nil
}

func (h *Host) jobs() int {
	if h.opts.Jobs > 0 {
		return h.opts.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// Load reads every source file of proj from disk and resolves it.
func (h *Host) Load(ctx context.Context, proj *project.Project) (*Snapshot, error) {
	span, _ := trace.Start(ctx, trace.ScopePass, "load/read")
	paths, err := proj.Discover(ctx)
	if err != nil {
		span.End("error")
		return nil, err
	}

	sources := make([]Source, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.jobs())
	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// #nosec G304 -- paths come from walking the project roots
			data, err := os.ReadFile(proj.Abs(rel))
			if err != nil {
				return fmt.Errorf("read %s: %w", rel, err)
			}
			sources[i] = Source{Path: rel, Text: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("error")
		return nil, err
	}
	span.WithExtra("files", fmt.Sprint(len(paths))).End("")
	return h.load(ctx, proj, sources, 0)
}

// LoadSources resolves in-memory sources as if they were the files of proj.
func (h *Host) LoadSources(ctx context.Context, proj *project.Project, sources []Source) (*Snapshot, error) {
	return h.load(ctx, proj, slices.Clone(sources), source.FileVirtual)
}

func (h *Host) load(ctx context.Context, proj *project.Project, sources []Source, flags source.FileFlags) (*Snapshot, error) {
	slices.SortFunc(sources, func(a, b Source) int { return cmp.Compare(a.Path, b.Path) })

	files := source.NewFileSetWithBase(proj.Dir)
	ids := make([]source.FileID, 0, len(sources))
	for _, src := range sources {
		content, fileFlags := source.Normalize(src.Text)
		if _, dup := files.GetLatest(src.Path); dup {
			return nil, fmt.Errorf("duplicate source %s", src.Path)
		}
		ids = append(ids, files.Add(src.Path, content, fileFlags|flags))
	}

	span, _ := trace.Start(ctx, trace.ScopePass, "load/parse")
	parsed := make([]*syntax.Tree, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.jobs())
	for i, id := range ids {
		f := files.Get(id)
		g.Go(func() error {
			raw, err := h.parse(gctx, f)
			if err != nil {
				return err
			}
			parsed[i] = syntax.Bind(f, raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("error")
		return nil, err
	}
	span.End("")

	trees := make(map[source.FileID]*syntax.Tree, len(ids))
	for i, id := range ids {
		trees[id] = parsed[i]
	}
	snap, err := newSnapshot(proj, files, ids, trees)
	if err != nil {
		return nil, err
	}
	if err := snap.build(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

func (h *Host) parse(ctx context.Context, f *source.File) (*sitter.Tree, error) {
	key := treeKey{path: f.Path, hash: f.Hash}
	if raw, ok := h.cache.Get(key); ok {
		// у каждого снапшота своя копия: кэш узлов в биндингах не потокобезопасен
		return raw.Copy(), nil
	}
	trace.Point(trace.FromContext(ctx), trace.ScopeFile, "parse", f.Path)
	raw, err := syntax.ParseRaw(ctx, f.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	h.cache.Add(key, raw)
	return raw, nil
}

// CachedTrees reports how many parse trees the host keeps.
func (h *Host) CachedTrees() int {
	return h.cache.Len()
}

// BrokenFiles lists files whose parse needed error recovery.
func (s *Snapshot) BrokenFiles() []source.FileID {
	var out []source.FileID
	for _, id := range s.ids {
		if s.trees[id].HasErrors() {
			out = append(out, id)
		}
	}
	return out
}
