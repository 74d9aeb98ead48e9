// Package analyzer implements the forbiddencalls checker.
package analyzer

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const (
	analyzerName = "forbiddencalls"
	analyzerDoc  = "reports panic, log.Fatal and os.Exit outside main.main, and outbound calls through net/http package-level helpers"
)

// Analyzer reports calls that must not appear in library code.
var Analyzer = &analysis.Analyzer{
	Name:     analyzerName,
	Doc:      analyzerDoc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// httpHelpers use http.DefaultClient, which has no timeout.
var httpHelpers = map[string]bool{
	"Get":           true,
	"Head":          true,
	"Post":          true,
	"PostForm":      true,
	"DefaultClient": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
		(*ast.SelectorExpr)(nil),
	}

	insp.WithStack(nodeFilter, func(node ast.Node, push bool, stack []ast.Node) bool {
		if !push || isTestFile(pass, node) {
			return true
		}

		switch n := node.(type) {
		case *ast.CallExpr:
			checkCall(pass, n, stack)
		case *ast.SelectorExpr:
			checkHTTPHelper(pass, n)
		}
		return true
	})

	return nil, nil
}

func checkCall(pass *analysis.Pass, callExpr *ast.CallExpr, stack []ast.Node) {
	switch fn := callExpr.Fun.(type) {
	case *ast.Ident:
		if _, ok := pass.TypesInfo.Uses[fn].(*types.Builtin); ok && fn.Name == "panic" {
			pass.Reportf(callExpr.Pos(), "panic is forbidden")
		}
	case *ast.SelectorExpr:
		pkgPath, ok := importedPackage(pass, fn)
		if !ok {
			return
		}

		name := fn.Sel.Name
		switch {
		case pkgPath == "log" && strings.HasPrefix(name, "Fatal"):
			if !inMainFunc(pass, stack) {
				pass.Reportf(callExpr.Pos(), "log.%s is forbidden outside main function", name)
			}
		case pkgPath == "os" && name == "Exit":
			if !inMainFunc(pass, stack) {
				pass.Reportf(callExpr.Pos(), "os.Exit is forbidden outside main function")
			}
		}
	}
}

func checkHTTPHelper(pass *analysis.Pass, sel *ast.SelectorExpr) {
	pkgPath, ok := importedPackage(pass, sel)
	if !ok || pkgPath != "net/http" || !httpHelpers[sel.Sel.Name] {
		return
	}
	pass.Reportf(sel.Pos(), "http.%s uses a client without timeout, use a configured http.Client", sel.Sel.Name)
}

// importedPackage returns the import path when sel is a qualified identifier
// such as os.Exit.
func importedPackage(pass *analysis.Pass, sel *ast.SelectorExpr) (string, bool) {
	ident, ok := sel.X.(*ast.Ident)
	if !ok || pass.TypesInfo == nil {
		return "", false
	}

	pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	if !ok {
		return "", false
	}
	return pkgName.Imported().Path(), true
}

func inMainFunc(pass *analysis.Pass, stack []ast.Node) bool {
	if pass.Pkg.Name() != "main" {
		return false
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if fd, ok := stack[i].(*ast.FuncDecl); ok {
			return fd.Recv == nil && fd.Name.Name == "main"
		}
	}
	return false
}

func isTestFile(pass *analysis.Pass, node ast.Node) bool {
	return strings.HasSuffix(pass.Fset.Position(node.Pos()).Filename, "_test.go")
}
