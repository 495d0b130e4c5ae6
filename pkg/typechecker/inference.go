package typechecker

import "github.com/tonirenner/lyrascript-sub001/pkg/ast"

// InferenceMap records the type inferred for each expression node.
type InferenceMap map[ast.Node]Type

func (m InferenceMap) set(node ast.Node, typ Type) {
	if node == nil || typ == nil {
		return
	}
	m[node] = typ
}

func (m InferenceMap) get(node ast.Node) (Type, bool) {
	typ, ok := m[node]
	return typ, ok
}
