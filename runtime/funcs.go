package runtime

import "apple2core/basic"

type userFunc struct {
	param string
	body  basic.Expr
}

// FunctionManager holds DEF FN definitions, keyed by canonical name.
type FunctionManager struct {
	funcs map[string]userFunc
}

func NewFunctionManager() *FunctionManager {
	return &FunctionManager{funcs: map[string]userFunc{}}
}

func (f *FunctionManager) Define(name, param string, body basic.Expr) {
	f.funcs[CanonicalName(name)] = userFunc{param: param, body: body}
}

// Lookup returns the parameter name and body expression for an FN call;
// ok is false when the name was never DEF FN'd, and raising an error for
// that case is left to the caller.
func (f *FunctionManager) Lookup(name string) (param string, body basic.Expr, ok bool) {
	uf, ok := f.funcs[CanonicalName(name)]
	return uf.param, uf.body, ok
}
