package interpreter

import (
	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/native"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

// memberReceiver evaluates the object of a member expression; `super.x` reads
// and writes go through the current instance.
func (i *Interpreter) memberReceiver(object ast.Expression, env *runtime.Environment, fr *frame) (runtime.Value, error) {
	if _, ok := object.(*ast.SuperExpression); ok {
		if fr.this == nil {
			return nil, diagnostics.Runtime(object, "'super' is not available here")
		}
		return fr.this, nil
	}
	return i.evaluateExpression(object, env, fr)
}

func (i *Interpreter) evaluateMemberAccess(expr *ast.MemberAccessExpression, env *runtime.Environment, fr *frame) (runtime.Value, error) {
	if _, ok := expr.Object.(*ast.SuperExpression); ok {
		if method, err := i.superMethod(expr, fr); err == nil {
			return runtime.BoundMethodValue{Receiver: fr.this, Method: method}, nil
		}
	}
	object, err := i.memberReceiver(expr.Object, env, fr)
	if err != nil {
		return nil, err
	}
	return i.readMember(object, expr.Member.Name, expr)
}

func (i *Interpreter) readMember(object runtime.Value, name string, node ast.Node) (runtime.Value, error) {
	switch obj := object.(type) {
	case *runtime.Instance:
		if val, ok := obj.Field(name); ok {
			return val, nil
		}
		if method, ok := obj.Class.FindMethod(name); ok {
			return runtime.BoundMethodValue{Receiver: obj, Method: method}, nil
		}
		return nil, diagnostics.Runtime(node, "unknown member '%s' on %s", name, obj.Class.Name)
	case runtime.ClassReference:
		if err := i.ensureStatics(obj.Class, node); err != nil {
			return nil, err
		}
		if val, ok := obj.Class.Statics[name]; ok {
			return val, nil
		}
		if method, ok := obj.Class.FindStaticMethod(name); ok {
			return runtime.BoundMethodValue{Receiver: obj, Method: method}, nil
		}
		return nil, diagnostics.Runtime(node, "unknown static member '%s' on class '%s'", name, obj.Class.Name)
	case runtime.NumberValue, runtime.StringValue, runtime.BoolValue:
		if def, ok := i.primitiveClass(object); ok {
			if method, ok := def.Methods[name]; ok {
				return runtime.BoundMethodValue{Receiver: object, Method: method}, nil
			}
		}
		return nil, diagnostics.Runtime(node, "unknown member '%s' on %s", name, runtime.TypeName(object))
	}
	if runtime.IsNull(object) {
		return nil, diagnostics.Runtime(node, "cannot access member '%s' on null", name)
	}
	return nil, diagnostics.Runtime(node, "cannot access member '%s' on %s", name, runtime.TypeName(object))
}

func (i *Interpreter) evaluateCallExpression(call *ast.CallExpression, env *runtime.Environment, fr *frame) (runtime.Value, error) {
	switch callee := call.Callee.(type) {
	case *ast.SuperExpression:
		args, err := i.evaluateArguments(call.Arguments, env, fr)
		if err != nil {
			return nil, err
		}
		return runtime.Null, i.callSuperConstructor(call, args, fr)
	case *ast.MemberAccessExpression:
		if _, ok := callee.Object.(*ast.SuperExpression); ok {
			method, err := i.superMethod(callee, fr)
			if err != nil {
				return nil, err
			}
			args, err := i.evaluateArguments(call.Arguments, env, fr)
			if err != nil {
				return nil, err
			}
			return i.invokeMethod(method, fr.this, args, call)
		}
		receiver, err := i.evaluateExpression(callee.Object, env, fr)
		if err != nil {
			return nil, err
		}
		args, err := i.evaluateArguments(call.Arguments, env, fr)
		if err != nil {
			return nil, err
		}
		return i.invokeMember(receiver, callee.Member.Name, args, call)
	}
	target, err := i.evaluateExpression(call.Callee, env, fr)
	if err != nil {
		return nil, err
	}
	args, err := i.evaluateArguments(call.Arguments, env, fr)
	if err != nil {
		return nil, err
	}
	return i.callValue(target, args, call)
}

func (i *Interpreter) evaluateArguments(exprs []ast.Expression, env *runtime.Environment, fr *frame) ([]runtime.Value, error) {
	args := make([]runtime.Value, 0, len(exprs))
	for _, expr := range exprs {
		val, err := i.evaluateExpression(expr, env, fr)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return args, nil
}

// superMethod resolves `super.name` against the superclass of the class that
// declared the running code, not the class of `this`.
func (i *Interpreter) superMethod(expr *ast.MemberAccessExpression, fr *frame) (*runtime.MethodDefinition, error) {
	if fr.this == nil || fr.class == nil {
		return nil, diagnostics.Runtime(expr, "'super' is not available here")
	}
	super := fr.class.Superclass
	if super == nil {
		return nil, diagnostics.Runtime(expr, "class '%s' has no superclass", fr.class.Name)
	}
	method, ok := super.FindMethod(expr.Member.Name)
	if !ok {
		return nil, diagnostics.Runtime(expr.Member, "unknown method '%s' on superclass '%s'", expr.Member.Name, super.Name)
	}
	return method, nil
}

func (i *Interpreter) callSuperConstructor(call *ast.CallExpression, args []runtime.Value, fr *frame) error {
	if fr.this == nil || fr.class == nil {
		return diagnostics.Runtime(call, "'super' call outside of a constructor")
	}
	super := fr.class.Superclass
	if super == nil {
		return diagnostics.Runtime(call, "class '%s' has no superclass", fr.class.Name)
	}
	ctor := super.FindConstructor()
	if ctor == nil {
		if base := super.NativeBase(); base != nil {
			return i.constructNative(base, fr.this, args, call)
		}
		if len(args) > 0 {
			return diagnostics.Runtime(call, "class '%s' has no constructor taking arguments", super.Name)
		}
		return nil
	}
	if ctor.IsNative() {
		return i.constructNative(ctor.Owner, fr.this, args, call)
	}
	_, err := i.invokeMethod(ctor, fr.this, args, call)
	return err
}

// invokeMember dispatches a method call on any receiver: instances through
// their class chain, class references to statics, primitives to their wrapper
// native class. A field holding a callable can be called like a method.
func (i *Interpreter) invokeMember(receiver runtime.Value, name string, args []runtime.Value, node ast.Node) (runtime.Value, error) {
	switch recv := receiver.(type) {
	case *runtime.Instance:
		if method, ok := recv.Class.FindMethod(name); ok {
			return i.invokeMethod(method, recv, args, node)
		}
		if val, ok := recv.Field(name); ok {
			return i.callValue(val, args, node)
		}
		return nil, diagnostics.Runtime(node, "unknown method '%s' on %s", name, recv.Class.Name)
	case runtime.ClassReference:
		if err := i.ensureStatics(recv.Class, node); err != nil {
			return nil, err
		}
		if method, ok := recv.Class.FindStaticMethod(name); ok {
			return i.invokeMethod(method, recv, args, node)
		}
		if val, ok := recv.Class.Statics[name]; ok {
			return i.callValue(val, args, node)
		}
		return nil, diagnostics.Runtime(node, "unknown static method '%s' on class '%s'", name, recv.Class.Name)
	case runtime.NumberValue, runtime.StringValue, runtime.BoolValue:
		def, ok := i.primitiveClass(receiver)
		if ok {
			if method, ok := def.Methods[name]; ok {
				return i.invokeMethod(method, receiver, args, node)
			}
		}
		return nil, diagnostics.Runtime(node, "unknown method '%s' on %s", name, runtime.TypeName(receiver))
	}
	if runtime.IsNull(receiver) {
		return nil, diagnostics.Runtime(node, "cannot call method '%s' on null", name)
	}
	return nil, diagnostics.Runtime(node, "cannot call method '%s' on %s", name, runtime.TypeName(receiver))
}

// invokeMethod runs a resolved method with receiver as `this` (an Instance), as
// the autoboxed primitive, or as the ClassReference of a static call.
func (i *Interpreter) invokeMethod(method *runtime.MethodDefinition, receiver runtime.Value, args []runtime.Value, node ast.Node) (runtime.Value, error) {
	leave, err := i.enter(node)
	if err != nil {
		return nil, err
	}
	defer leave()

	fr := &frame{class: method.Owner}
	if inst, ok := receiver.(*runtime.Instance); ok {
		fr.this = inst
	}
	if method.IsNative() {
		return i.invokeNative(method, receiver, args, fr, node)
	}
	env := runtime.NewEnvironment(nil)
	if err := i.bindParameters(method.Parameters(), args, env, fr, node, method.Name); err != nil {
		return nil, err
	}
	ret, err := i.evaluateBlock(method.Declaration.Body.Body, env, fr)
	if err != nil {
		return nil, err
	}
	if ret != nil {
		return ret.value, nil
	}
	return runtime.Null, nil
}

// bindParameters defines each parameter in env: the passed argument, else the
// evaluated default, else null. Defaults see the parameters bound before them.
func (i *Interpreter) bindParameters(params []*ast.Parameter, args []runtime.Value, env *runtime.Environment, fr *frame, node ast.Node, name string) error {
	if len(args) > len(params) {
		return diagnostics.Runtime(node, "too many arguments for '%s': expected at most %d, got %d", name, len(params), len(args))
	}
	for idx, param := range params {
		var val runtime.Value = runtime.Null
		switch {
		case idx < len(args):
			val = args[idx]
		case param.Default != nil:
			def, err := i.evaluateExpression(param.Default, env, fr)
			if err != nil {
				return err
			}
			val = def
		}
		env.Define(param.Name.Name, val)
	}
	return nil
}

// completeArguments pads args with the parameters' defaults so host code always
// sees the full argument list of the signature.
func (i *Interpreter) completeArguments(params []*ast.Parameter, args []runtime.Value, fr *frame, node ast.Node, name string) ([]runtime.Value, error) {
	if len(args) >= len(params) {
		return args, nil
	}
	env := runtime.NewEnvironment(nil)
	if err := i.bindParameters(params, args, env, fr, node, name); err != nil {
		return nil, err
	}
	out := make([]runtime.Value, 0, len(params))
	for _, param := range params {
		val, _ := env.Get(param.Name.Name)
		out = append(out, val)
	}
	return out, nil
}

func (i *Interpreter) invokeNative(method *runtime.MethodDefinition, receiver runtime.Value, args []runtime.Value, fr *frame, node ast.Node) (runtime.Value, error) {
	owner := method.Owner
	table := owner.Native
	if table == nil {
		return nil, diagnostics.Runtime(node, "method '%s' of class '%s' has no body", method.Name, owner.Name)
	}
	args, err := i.completeArguments(method.Parameters(), args, fr, node, method.Name)
	if err != nil {
		return nil, err
	}
	hostArgs, err := i.toNativeArgs(args, node)
	if err != nil {
		return nil, err
	}

	var result any
	if method.Declaration.Modifiers.IsStatic() {
		fn, ok := table.StaticMethods[method.Name]
		if !ok {
			return nil, diagnostics.Runtime(node, "native static method %s.%s is not implemented", owner.Name, method.Name)
		}
		result, err = fn(i.ctx, hostArgs)
	} else {
		impl, ok := table.Methods[method.Name]
		if !ok {
			return nil, diagnostics.Runtime(node, "native method %s.%s is not implemented", owner.Name, method.Name)
		}
		self, selfErr := i.nativeSelf(receiver, owner, node)
		if selfErr != nil {
			return nil, selfErr
		}
		result, err = impl(i.ctx, self, hostArgs)
	}
	if err != nil {
		return nil, hostError(node, err)
	}
	return i.fromNative(result, node)
}

// nativeSelf is the host receiver of a native instance method.
func (i *Interpreter) nativeSelf(receiver runtime.Value, owner *runtime.ClassDefinition, node ast.Node) (any, error) {
	switch recv := receiver.(type) {
	case *runtime.Instance:
		if recv.Native == nil {
			return nil, diagnostics.Runtime(node, "%s instance has no native %s state", recv.Class.Name, owner.Name)
		}
		return recv.Native, nil
	case runtime.NumberValue:
		return recv.Val, nil
	case runtime.StringValue:
		return recv.Val, nil
	case runtime.BoolValue:
		return recv.Val, nil
	}
	return nil, diagnostics.Runtime(node, "invalid receiver %s for %s", runtime.TypeName(receiver), owner.Name)
}

func (i *Interpreter) primitiveClass(val runtime.Value) (*runtime.ClassDefinition, bool) {
	var name string
	switch val.(type) {
	case runtime.NumberValue:
		name = "Number"
	case runtime.StringValue:
		name = "String"
	case runtime.BoolValue:
		name = "Boolean"
	default:
		return nil, false
	}
	return i.classes.Lookup(name)
}

// callValue invokes a first-class callable.
func (i *Interpreter) callValue(callee runtime.Value, args []runtime.Value, node ast.Node) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.LambdaValue:
		return i.callLambda(fn, args, node)
	case runtime.BoundMethodValue:
		return i.invokeMethod(fn.Method, fn.Receiver, args, node)
	case runtime.NativeFunctionValue:
		hostArgs, err := i.toNativeArgs(args, node)
		if err != nil {
			return nil, err
		}
		result, err := fn.Function.Impl(i.ctx, hostArgs)
		if err != nil {
			return nil, hostError(node, err)
		}
		return i.fromNative(result, node)
	case runtime.ClassReference:
		return nil, diagnostics.Runtime(node, "class '%s' must be instantiated with new", fn.Class.Name)
	}
	if runtime.IsNull(callee) {
		return nil, diagnostics.Runtime(node, "cannot call null")
	}
	return nil, diagnostics.Runtime(node, "%s is not callable", runtime.TypeName(callee))
}

// callLambda runs a lambda body in a child of its closure. The result is the
// first executed return, else a trailing expression statement, else null.
func (i *Interpreter) callLambda(fn *runtime.LambdaValue, args []runtime.Value, node ast.Node) (runtime.Value, error) {
	leave, err := i.enter(node)
	if err != nil {
		return nil, err
	}
	defer leave()

	env := fn.Closure.Extend()
	fr := &frame{this: fn.This, class: fn.Owner}
	params := fn.Node.Parameters
	if len(args) > len(params) {
		args = args[:len(params)]
	}
	if err := i.bindParameters(params, args, env, fr, node, "lambda"); err != nil {
		return nil, err
	}
	body := fn.Node.Body
	for idx, stmt := range body {
		if expr, ok := stmt.(ast.Expression); ok && idx == len(body)-1 {
			return i.evaluateExpression(expr, env, fr)
		}
		ret, err := i.evaluateStatement(stmt, env, fr)
		if err != nil {
			return nil, err
		}
		if ret != nil {
			return ret.value, nil
		}
	}
	return runtime.Null, nil
}

func (i *Interpreter) evaluateNewExpression(expr *ast.NewExpression, env *runtime.Environment, fr *frame) (runtime.Value, error) {
	def, ok := i.classes.Lookup(expr.ClassName.Name)
	if !ok {
		return nil, diagnostics.Runtime(expr.ClassName, "unknown class '%s'", expr.ClassName.Name)
	}
	args, err := i.evaluateArguments(expr.Arguments, env, fr)
	if err != nil {
		return nil, err
	}
	return i.instantiate(def, args, expr)
}

// instantiate allocates an instance. Native classes get their handle from the
// host constructor. Other classes run instance field initializers, ancestors
// first, then the nearest constructor; a user class extending a native one that
// never reached the host constructor gets a default handle afterwards.
func (i *Interpreter) instantiate(def *runtime.ClassDefinition, args []runtime.Value, node ast.Node) (*runtime.Instance, error) {
	if err := i.ensureStatics(def, node); err != nil {
		return nil, err
	}
	inst := runtime.NewInstance(def)
	if def.Native != nil {
		if err := i.constructNative(def, inst, args, node); err != nil {
			return nil, err
		}
		return inst, nil
	}

	chain := def.Chain()
	for idx := len(chain) - 1; idx >= 0; idx-- {
		owner := chain[idx]
		fr := &frame{this: inst, class: owner}
		for _, field := range owner.Fields {
			var val runtime.Value = runtime.Null
			if field.Initializer != nil {
				v, err := i.evaluateExpression(field.Initializer, runtime.NewEnvironment(nil), fr)
				if err != nil {
					return nil, err
				}
				val = v
			}
			inst.Fields[field.Name] = val
		}
	}

	ctor := def.FindConstructor()
	switch {
	case ctor == nil:
		if len(args) > 0 && def.NativeBase() == nil {
			return nil, diagnostics.Runtime(node, "class '%s' has no constructor taking arguments", def.Name)
		}
		if base := def.NativeBase(); base != nil {
			if err := i.constructNative(base, inst, args, node); err != nil {
				return nil, err
			}
		}
	case ctor.IsNative():
		if err := i.constructNative(ctor.Owner, inst, args, node); err != nil {
			return nil, err
		}
	default:
		if _, err := i.invokeMethod(ctor, inst, args, node); err != nil {
			return nil, err
		}
	}
	if inst.Native == nil {
		if base := def.NativeBase(); base != nil && base.Native.Constructor != nil {
			if err := i.constructNative(base, inst, nil, node); err != nil {
				return nil, err
			}
		}
	}
	i.logger.Debug("instance created", "class", def.Name)
	return inst, nil
}

// constructNative runs owner's host constructor and stores the handle on inst.
func (i *Interpreter) constructNative(owner *runtime.ClassDefinition, inst *runtime.Instance, args []runtime.Value, node ast.Node) error {
	table := owner.Native
	if table == nil || table.Constructor == nil {
		return diagnostics.Runtime(node, "native class '%s' cannot be instantiated", owner.Name)
	}
	if owner.Constructor != nil {
		completed, err := i.completeArguments(owner.Constructor.Parameters(), args, &frame{this: inst, class: owner}, node, owner.Name)
		if err != nil {
			return err
		}
		args = completed
	}
	hostArgs, err := i.toNativeArgs(args, node)
	if err != nil {
		return err
	}
	handle, err := table.Constructor(i.ctx, hostArgs)
	if err != nil {
		return hostError(node, err)
	}
	inst.Native = handle
	return nil
}

// ensureStatics runs the static field initializers of def and its ancestors the
// first time the class is used. Fields read as null while their class is still
// initializing.
func (i *Interpreter) ensureStatics(def *runtime.ClassDefinition, node ast.Node) error {
	chain := def.Chain()
	for idx := len(chain) - 1; idx >= 0; idx-- {
		class := chain[idx]
		if !class.BeginStaticInit() {
			continue
		}
		for _, field := range class.StaticFields {
			class.Statics[field.Name] = runtime.Null
		}
		fr := &frame{class: class}
		for _, field := range class.StaticFields {
			if field.Initializer == nil {
				continue
			}
			val, err := i.evaluateExpression(field.Initializer, runtime.NewEnvironment(nil), fr)
			if err != nil {
				class.FinishStaticInit()
				return err
			}
			class.Statics[field.Name] = val
		}
		class.FinishStaticInit()
		i.logger.Debug("statics initialized", "class", class.Name)
	}
	return nil
}

// wrapHandle exposes a host object as an instance of its native class.
func (i *Interpreter) wrapHandle(handle native.Handle, node ast.Node) (*runtime.Instance, error) {
	def, ok := i.classes.Lookup(handle.NativeClass())
	if !ok {
		return nil, diagnostics.Runtime(node, "native class '%s' is not linked into this program", handle.NativeClass())
	}
	inst := runtime.NewInstance(def)
	inst.Native = handle
	return inst, nil
}
