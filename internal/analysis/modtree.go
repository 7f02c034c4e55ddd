package analysis

import (
	"path"
	"strings"

	"renamer/internal/source"
	"renamer/internal/syntax"
)

// buildModuleTree creates one crate per root file found directly in a source
// root, follows `mod` declarations from there, and finally turns every file
// nobody declared into a detached crate of its own.
func (b *builder) buildModuleTree() {
	s := b.s
	owned := make(map[source.FileID]bool, len(s.ids))
	var roots []source.FileID
	for _, id := range s.ids {
		rel := s.RelativePath(id)
		if !strings.Contains(rel, "/") && s.Layout().IsRootFile(rel) {
			roots = append(roots, id)
		}
	}
	for _, id := range roots {
		if !owned[id] {
			b.addCrate(id, owned)
		}
	}
	for _, id := range s.ids {
		if !owned[id] {
			b.addCrate(id, owned)
		}
	}
}

func (b *builder) addCrate(file source.FileID, owned map[source.FileID]bool) {
	s := b.s
	owned[file] = true
	root := s.newModule(ModuleData{
		Parent:     NoModule,
		Decl:       NoDef,
		File:       file,
		Items:      s.trees[file].Root(),
		FileBacked: true,
		Dir:        s.Layout().ChildModuleDir(s.files.Get(file).Path),
	})
	s.modules[root].Root = root

	queue := []ModuleID{root}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		queue = append(queue, b.declareModules(m, owned)...)
	}
}

// declareModules creates the modules declared in the file of the file-backed
// module m and returns the newly discovered file-backed ones.
func (b *builder) declareModules(m ModuleID, owned map[source.FileID]bool) []ModuleID {
	s := b.s
	file := s.modules[m].File
	tree := s.trees[file]
	s.fileModule[file] = m

	items, err := tree.ModItems()
	if err != nil {
		b.errs = append(b.errs, err)
		return nil
	}

	var discovered []ModuleID
	inline := make(map[siteKey]ModuleID)
	layout := s.Layout()
	for _, item := range items {
		parent := m
		if enc := syntax.EnclosingModItems(item.Node); len(enc) > 0 {
			if p, ok := inline[keyOf(tree.Span(enc[len(enc)-1].Node))]; ok {
				parent = p
			}
		}
		name := tree.Text(item.Name)
		pd := &s.modules[parent]
		child := ModuleData{
			Name:   name,
			Parent: parent,
			Root:   pd.Root,
			File:   file,
			Dir:    path.Join(pd.Dir, name),
		}
		if item.Inline() {
			child.Items = item.Body
		} else {
			for _, cand := range layout.ModuleFileCandidates(pd.Dir, name) {
				id, ok := s.files.GetLatest(cand)
				if !ok || owned[id] {
					continue
				}
				if _, parsed := s.trees[id]; !parsed {
					continue
				}
				owned[id] = true
				child.File = id
				child.Items = s.trees[id].Root()
				child.FileBacked = true
				child.Dir = layout.ChildModuleDir(cand)
				break
			}
		}

		cm := s.newModule(child)
		decl := s.newDef(Def{
			Kind:   DefModule,
			Name:   name,
			Span:   tree.Span(item.Name),
			Module: parent,
			Owner:  NoDef,
			Target: cm,
		})
		s.modules[cm].Decl = decl
		s.modules[parent].Children[name] = cm
		s.bind(parent, name, decl)

		switch {
		case item.Inline():
			inline[keyOf(tree.Span(item.Node))] = cm
		case s.modules[cm].FileBacked:
			discovered = append(discovered, cm)
		}
	}
	return discovered
}

func (s *Snapshot) newModule(m ModuleData) ModuleID {
	m.ID = ModuleID(len(s.modules))
	m.Children = make(map[string]ModuleID)
	m.scope = make(map[source.StringID][]DefID)
	s.modules = append(s.modules, m)
	return m.ID
}
