package interpreter

import (
	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/native"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

// toNative converts a runtime value to the host representation used by native
// classes and functions.
func (i *Interpreter) toNative(val runtime.Value, node ast.Node) (any, error) {
	return i.toNativeSeen(val, node, make(map[*runtime.Instance]*native.ObjectView))
}

func (i *Interpreter) toNativeSeen(val runtime.Value, node ast.Node, seen map[*runtime.Instance]*native.ObjectView) (any, error) {
	switch v := val.(type) {
	case nil, runtime.NullValue:
		return nil, nil
	case runtime.NumberValue:
		return v.Val, nil
	case runtime.StringValue:
		return v.Val, nil
	case runtime.BoolValue:
		return v.Val, nil
	case *runtime.Instance:
		if v.Native != nil {
			return v.Native, nil
		}
		if view, ok := seen[v]; ok {
			return view, nil
		}
		view := &native.ObjectView{Class: v.Class.Name, Fields: make(map[string]any, len(v.Fields)), Origin: v}
		seen[v] = view
		for name, field := range v.Fields {
			host, err := i.toNativeSeen(field, node, seen)
			if err != nil {
				return nil, err
			}
			view.Fields[name] = host
		}
		return view, nil
	case *runtime.LambdaValue:
		return i.hostCallable(v, v.Arity(), node), nil
	case runtime.BoundMethodValue:
		return i.hostCallable(v, len(v.Method.Parameters()), node), nil
	case runtime.NativeFunctionValue:
		return i.hostCallable(v, 1, node), nil
	}
	return nil, diagnostics.Runtime(node, "cannot pass %s to native code", runtime.TypeName(val))
}

func (i *Interpreter) toNativeArgs(args []runtime.Value, node ast.Node) ([]any, error) {
	out := make([]any, 0, len(args))
	for _, arg := range args {
		host, err := i.toNative(arg, node)
		if err != nil {
			return nil, err
		}
		out = append(out, host)
	}
	return out, nil
}

// hostCallable lets host code call back into the interpreter.
func (i *Interpreter) hostCallable(fn runtime.Value, arity int, node ast.Node) *native.Callable {
	return &native.Callable{
		Arity:  arity,
		Origin: fn,
		Fn: func(hostArgs []any) (any, error) {
			args := make([]runtime.Value, 0, len(hostArgs))
			for _, host := range hostArgs {
				val, err := i.fromNative(host, node)
				if err != nil {
					return nil, err
				}
				args = append(args, val)
			}
			result, err := i.callValue(fn, args, node)
			if err != nil {
				return nil, err
			}
			return i.toNative(result, node)
		},
	}
}

// fromNative converts a host value back into a runtime value. Views and
// callables made by toNative return their original runtime value.
func (i *Interpreter) fromNative(host any, node ast.Node) (runtime.Value, error) {
	switch v := host.(type) {
	case nil:
		return runtime.Null, nil
	case bool:
		return runtime.Bool(v), nil
	case float64:
		return runtime.Number(v), nil
	case int:
		return runtime.Number(float64(v)), nil
	case string:
		return runtime.String(v), nil
	case *native.ObjectView:
		if origin, ok := v.Origin.(runtime.Value); ok {
			return origin, nil
		}
		return nil, diagnostics.Runtime(node, "native code returned a detached %s object", v.Class)
	case *native.Callable:
		if origin, ok := v.Origin.(runtime.Value); ok {
			return origin, nil
		}
		callable := v
		return runtime.NativeFunctionValue{Function: &native.Function{
			Name: "<native callable>",
			Impl: func(_ *native.CallContext, args []any) (any, error) {
				return callable.Call(args...)
			},
		}}, nil
	case native.Handle:
		return i.wrapHandle(v, node)
	}
	return nil, diagnostics.Runtime(node, "unsupported native value of type %T", host)
}
