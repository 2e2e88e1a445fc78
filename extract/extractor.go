// Package extract finds translation keys used in Go source code.
package extract

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

const (
	keyType = "github.com/SLASH2NL/translationloader.Key"

	loadMode = packages.NeedName | packages.NeedSyntax |
		packages.NeedTypes | packages.NeedTypesInfo | packages.NeedCompiledGoFiles
)

// KeysFromSource finds all translationloader.Key values used in the Go packages under dir.
// Constants, variables and arguments of parameters typed as Key are collected.
// Imports are not traversed. The result is sorted and free of duplicates.
func KeysFromSource(dir string) ([]string, error) {
	dirs, err := packageDirs(dir)
	if err != nil {
		return nil, err
	}

	found := make(map[string]struct{})
	for _, dir := range dirs {
		pkgs, err := packages.Load(&packages.Config{
			Mode: loadMode,
			Dir:  dir,
			Fset: token.NewFileSet(),
		})
		if err != nil {
			return nil, fmt.Errorf("loading package %s: %w", dir, err)
		}

		if err := packageErrors(pkgs); err != nil {
			return nil, err
		}

		for _, pkg := range pkgs {
			collectKeys(pkg, found)
		}
	}

	keys := make([]string, 0, len(found))
	for k := range found {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys, nil
}

func packageErrors(pkgs []*packages.Package) error {
	var msgs []string
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, err := range pkg.Errors {
			if strings.HasPrefix(err.Msg, "build constraints exclude all Go files") {
				continue
			}

			msgs = append(msgs, err.Error())
		}
	})

	if len(msgs) > 0 {
		return fmt.Errorf("package load error: %s", strings.Join(msgs, "\n"))
	}

	return nil
}

// collectKeys adds the keys found in the package to found.
func collectKeys(pkg *packages.Package, found map[string]struct{}) {
	info := pkg.TypesInfo
	if info == nil {
		return
	}

	values := assignedValues(info, pkg.Syntax)

	for expr, tv := range info.Types {
		if tv.Type != nil && tv.Type.String() == keyType && tv.Value != nil {
			if key := constString(tv.Value.ExactString()); key != "" {
				found[key] = struct{}{}
			}
			continue
		}

		call, ok := expr.(*ast.CallExpr)
		if !ok {
			continue
		}

		for _, key := range keysFromCall(info, values, call) {
			found[key] = struct{}{}
		}
	}
}

// assignedValues maps variables to the expression they are declared or assigned with.
// Only single assignments are recorded.
func assignedValues(info *types.Info, files []*ast.File) map[types.Object]ast.Expr {
	values := make(map[types.Object]ast.Expr)

	for _, file := range files {
		ast.Inspect(file, func(n ast.Node) bool {
			switch decl := n.(type) {
			case *ast.ValueSpec:
				if len(decl.Names) != len(decl.Values) {
					return true
				}

				for i, name := range decl.Names {
					if obj := info.Defs[name]; obj != nil {
						values[obj] = decl.Values[i]
					}
				}
			case *ast.AssignStmt:
				if len(decl.Lhs) != 1 || len(decl.Rhs) != 1 {
					return true
				}

				if ident, ok := decl.Lhs[0].(*ast.Ident); ok {
					if obj := info.ObjectOf(ident); obj != nil {
						if _, seen := values[obj]; !seen {
							values[obj] = decl.Rhs[0]
						}
					}
				}
			}

			return true
		})
	}

	return values
}

// keysFromCall returns the keys passed to Key parameters of a function or method call.
func keysFromCall(info *types.Info, values map[types.Object]ast.Expr, call *ast.CallExpr) []string {
	var ident *ast.Ident
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		ident = fun
	case *ast.SelectorExpr:
		ident = fun.Sel
	default:
		return nil
	}

	sig, ok := info.TypeOf(ident).(*types.Signature)
	if !ok || sig.Params().Len() != len(call.Args) {
		return nil
	}

	var keys []string
	for i := 0; i < sig.Params().Len(); i++ {
		if sig.Params().At(i).Type().String() != keyType {
			continue
		}

		if key := valueOf(info, values, call.Args[i], 0); key != "" {
			keys = append(keys, key)
		}
	}

	return keys
}

// maxDepth stops resolving variables that are assigned from each other.
const maxDepth = 8

// valueOf resolves string literals, constants, conversions and simply assigned variables.
func valueOf(info *types.Info, values map[types.Object]ast.Expr, expr ast.Expr, depth int) string {
	if depth > maxDepth {
		return ""
	}

	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind == token.STRING {
			return constString(e.Value)
		}
	case *ast.ParenExpr:
		return valueOf(info, values, e.X, depth+1)
	case *ast.Ident:
		switch obj := info.ObjectOf(e).(type) {
		case *types.Const:
			return constString(obj.Val().ExactString())
		case *types.Var:
			if value, ok := values[obj]; ok {
				return valueOf(info, values, value, depth+1)
			}
		}
	case *ast.CallExpr:
		// Conversions like translationloader.Key(name).
		if tv, ok := info.Types[e.Fun]; ok && tv.IsType() && len(e.Args) == 1 {
			return valueOf(info, values, e.Args[0], depth+1)
		}
	}

	return ""
}

func constString(raw string) string {
	s, err := strconv.Unquote(raw)
	if err != nil {
		return strings.Trim(raw, "\"")
	}

	return s
}

// packageDirs returns root and every directory below it that contains go files.
func packageDirs(root string) ([]string, error) {
	root = filepath.Clean(root)
	dirs := []string{root}
	seen := map[string]bool{root: true}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || path == root || filepath.Ext(path) != ".go" {
			return nil
		}

		if dir := filepath.Dir(path); !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return dirs, nil
}
