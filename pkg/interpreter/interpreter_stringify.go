package interpreter

import (
	"github.com/tonirenner/lyrascript-sub001/pkg/native"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

// Stringify renders a value the way print shows it.
func (i *Interpreter) Stringify(val runtime.Value) string {
	return i.stringify(val)
}

func (i *Interpreter) stringify(val runtime.Value) string {
	switch v := val.(type) {
	case runtime.ClassReference:
		return "<class " + v.Class.Name + ">"
	case runtime.BoundMethodValue:
		return "<method " + v.Method.Owner.Name + "." + v.Method.Name + ">"
	case runtime.NativeFunctionValue:
		return "<native " + v.Function.Name + ">"
	}
	host, err := i.toNative(val, nil)
	if err != nil {
		return "<" + runtime.TypeName(val) + ">"
	}
	return native.Format(host)
}
