// Package module resolves the dependency graph between parsed chunks: it
// collects each chunk's imports and exported top-level declarations, orders
// modules so that a module is always compiled after everything it imports,
// and (through CheckAmbiguousImports) flags two imports in one module that
// would bind the same local name.
package module

import (
	"fmt"
	"sort"

	"github.com/holoscript/holo/internal/diag"
	"github.com/holoscript/holo/lang/ast"
	"github.com/holoscript/holo/lang/token"
)

// Import records one import directive found in a module.
type Import struct {
	Path  string
	Alias string // "" if no alias; the import is then bare
	Pos   token.Pos
}

// Module is one parsed chunk along with its collected imports and exported
// top-level names.
type Module struct {
	Name    string // the import path other modules use to reach this one
	Chunk   *ast.Chunk
	Imports []Import
	// Exports maps an exported top-level name to the position of its
	// declaration.
	Exports map[string]token.Pos
}

// Graph is the fully resolved, dependency-ordered set of modules.
type Graph struct {
	// Order lists modules such that every module appears after all modules
	// it (transitively) imports.
	Order []*Module
}

// Build collects imports/exports from each chunk, keyed by name (the import
// path other chunks use to reference it), and returns the modules in
// dependency order. Diagnostics (missing imports, import cycles) are
// reported to sink; ambiguous imports are not checked here (see
// CheckAmbiguousImports). Build always returns a best-effort
// Graph even when diagnostics were reported, mirroring the scanner/parser's
// collect-don't-abort discipline.
func Build(fset *token.FileSet, sink *diag.Sink, names []string, chunks []*ast.Chunk) *Graph {
	if len(names) != len(chunks) {
		panic("module.Build: names and chunks must have the same length")
	}

	mods := make(map[string]*Module, len(chunks))
	order := make([]*Module, len(chunks))
	for i, ch := range chunks {
		m := &Module{Name: names[i], Chunk: ch, Exports: map[string]token.Pos{}}
		collectTopLevel(m, ch)
		mods[names[i]] = m
		order[i] = m
	}

	for _, m := range order {
		for _, imp := range m.Imports {
			if _, ok := mods[imp.Path]; !ok {
				sink.Addf(imp.Pos, "import of unknown module %q", imp.Path)
			}
		}
	}

	sorted, cyclePos := topoSort(order, mods)
	if cyclePos.IsValid() {
		sink.Add(cyclePos, "import cycle detected")
	}
	return &Graph{Order: sorted}
}

func collectTopLevel(m *Module, ch *ast.Chunk) {
	if ch.Block == nil {
		return
	}
	for _, stmt := range ch.Block.Stmts {
		switch s := stmt.(type) {
		case *ast.ImportDecl:
			alias := ""
			if s.Alias != nil {
				alias = s.Alias.Lit
			}
			m.Imports = append(m.Imports, Import{Path: s.Path, Alias: alias, Pos: s.Import})
		case *ast.VarDecl:
			if s.Export {
				m.Exports[s.Name.Lit] = s.Var
			}
		case *ast.FuncDecl:
			if s.Export {
				m.Exports[s.Name.Lit] = s.Fn
			}
		case *ast.ClassDecl:
			if s.Export {
				m.Exports[s.Name.Lit] = s.Class
			}
		case *ast.StructDecl:
			if s.Export {
				m.Exports[s.Name.Lit] = s.Struct
			}
		}
	}
}

// topoSort orders modules so dependencies precede dependents, using a
// depth-first post-order traversal (Kahn's algorithm would work as well;
// DFS is used here because it naturally reports the back-edge that closes a
// cycle). Modules are visited in name order so the result is deterministic.
func topoSort(mods []*Module, byName map[string]*Module) ([]*Module, token.Pos) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(mods))
	var out []*Module
	var cyclePos token.Pos

	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = m.Name
	}
	sort.Strings(names)

	var visit func(name string)
	visit = func(name string) {
		switch state[name] {
		case done:
			return
		case visiting:
			if !cyclePos.IsValid() {
				cyclePos = byName[name].Chunk.EOF
			}
			return
		}
		state[name] = visiting
		m := byName[name]
		if m != nil {
			for _, imp := range m.Imports {
				if _, ok := byName[imp.Path]; ok {
					visit(imp.Path)
				}
			}
		}
		state[name] = done
		if m != nil {
			out = append(out, m)
		}
	}
	for _, name := range names {
		visit(name)
	}
	return out, cyclePos
}

// ResolveImportName reports the name an importing module should bind an
// import under: the alias if given, otherwise the last path segment. It
// does not check for clashes; CheckAmbiguousImports does.
func ResolveImportName(path, alias string) string {
	if alias != "" {
		return alias
	}
	last := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			last = path[i+1:]
			break
		}
	}
	return last
}

// CheckAmbiguousImports reports, via sink, any two imports within the same
// module that would bind the same local name without an alias to
// disambiguate them.
func CheckAmbiguousImports(sink *diag.Sink, m *Module) {
	seen := make(map[string]token.Pos)
	for _, imp := range m.Imports {
		name := ResolveImportName(imp.Path, imp.Alias)
		if _, ok := seen[name]; ok {
			sink.Add(imp.Pos, fmt.Sprintf("import %q binds %q, already bound at a previous import", imp.Path, name))
			continue
		}
		seen[name] = imp.Pos
	}
}
