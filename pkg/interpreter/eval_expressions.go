package interpreter

import (
	"math"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/native"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment, fr *frame) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.Number(n.Value), nil
	case *ast.StringLiteral:
		return runtime.String(n.Value), nil
	case *ast.BooleanLiteral:
		return runtime.Bool(n.Value), nil
	case *ast.NullLiteral:
		return runtime.Null, nil
	case *ast.ArrayLiteral:
		return i.evaluateArrayLiteral(n, env, fr)
	case *ast.Identifier:
		return i.evaluateIdentifier(n, env)
	case *ast.ThisExpression:
		if fr.this == nil {
			return nil, diagnostics.Runtime(n, "'this' is not available here")
		}
		return fr.this, nil
	case *ast.SuperExpression:
		return nil, diagnostics.Runtime(n, "'super' must be called or followed by a member")
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, env, fr)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env, fr)
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(n, env, fr)
	case *ast.MemberAccessExpression:
		return i.evaluateMemberAccess(n, env, fr)
	case *ast.IndexExpression:
		return i.evaluateIndexExpression(n, env, fr)
	case *ast.CallExpression:
		return i.evaluateCallExpression(n, env, fr)
	case *ast.NewExpression:
		return i.evaluateNewExpression(n, env, fr)
	case *ast.LambdaExpression:
		return &runtime.LambdaValue{Node: n, Closure: env, This: fr.this, Owner: fr.class}, nil
	case nil:
		return runtime.Null, nil
	default:
		return nil, diagnostics.Runtime(node, "unsupported expression %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateIdentifier(id *ast.Identifier, env *runtime.Environment) (runtime.Value, error) {
	if val, err := env.Get(id.Name); err == nil {
		return val, nil
	}
	if def, ok := i.classes.Lookup(id.Name); ok {
		return runtime.ClassReference{Class: def}, nil
	}
	if fn, ok := i.functions[id.Name]; ok {
		return runtime.NativeFunctionValue{Function: fn}, nil
	}
	return nil, diagnostics.Runtime(id, "undefined variable '%s'", id.Name)
}

func (i *Interpreter) evaluateArrayLiteral(lit *ast.ArrayLiteral, env *runtime.Environment, fr *frame) (runtime.Value, error) {
	items := make([]any, 0, len(lit.Elements))
	for _, elem := range lit.Elements {
		val, err := i.evaluateExpression(elem, env, fr)
		if err != nil {
			return nil, err
		}
		host, err := i.toNative(val, elem)
		if err != nil {
			return nil, err
		}
		items = append(items, host)
	}
	return i.wrapHandle(native.NewList(items), lit)
}

func (i *Interpreter) evaluateUnaryExpression(expr *ast.UnaryExpression, env *runtime.Environment, fr *frame) (runtime.Value, error) {
	operand, err := i.evaluateExpression(expr.Operand, env, fr)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "-":
		n, ok := operand.(runtime.NumberValue)
		if !ok {
			return nil, diagnostics.Runtime(expr, "unary '-' requires a number, got %s", runtime.TypeName(operand))
		}
		return runtime.Number(-n.Val), nil
	case "!":
		b, ok := operand.(runtime.BoolValue)
		if !ok {
			return nil, diagnostics.Runtime(expr, "unary '!' requires a boolean, got %s", runtime.TypeName(operand))
		}
		return runtime.Bool(!b.Val), nil
	}
	return nil, diagnostics.Runtime(expr, "unsupported unary operator %q", expr.Operator)
}

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, env *runtime.Environment, fr *frame) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env, fr)
	if err != nil {
		return nil, err
	}
	if expr.Operator == "&&" || expr.Operator == "||" {
		l, err := conditionValue(left, expr.Left, "'"+expr.Operator+"' operand")
		if err != nil {
			return nil, err
		}
		if (expr.Operator == "&&" && !l) || (expr.Operator == "||" && l) {
			return runtime.Bool(l), nil
		}
		right, err := i.evaluateExpression(expr.Right, env, fr)
		if err != nil {
			return nil, err
		}
		r, err := conditionValue(right, expr.Right, "'"+expr.Operator+"' operand")
		if err != nil {
			return nil, err
		}
		return runtime.Bool(r), nil
	}

	right, err := i.evaluateExpression(expr.Right, env, fr)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "==":
		return runtime.Bool(runtime.Equal(left, right)), nil
	case "!=":
		return runtime.Bool(!runtime.Equal(left, right)), nil
	case "+":
		_, ls := left.(runtime.StringValue)
		_, rs := right.(runtime.StringValue)
		if ls || rs {
			return runtime.String(i.stringify(left) + i.stringify(right)), nil
		}
	}

	l, lok := left.(runtime.NumberValue)
	r, rok := right.(runtime.NumberValue)
	if !lok || !rok {
		return nil, diagnostics.Runtime(expr, "'%s' requires numbers, got %s and %s", expr.Operator, runtime.TypeName(left), runtime.TypeName(right))
	}
	switch expr.Operator {
	case "+":
		return runtime.Number(l.Val + r.Val), nil
	case "-":
		return runtime.Number(l.Val - r.Val), nil
	case "*":
		return runtime.Number(l.Val * r.Val), nil
	case "/":
		if r.Val == 0 {
			return nil, diagnostics.Runtime(expr, "division by zero")
		}
		return runtime.Number(l.Val / r.Val), nil
	case "%":
		if r.Val == 0 {
			return nil, diagnostics.Runtime(expr, "division by zero")
		}
		return runtime.Number(math.Mod(l.Val, r.Val)), nil
	case "<":
		return runtime.Bool(l.Val < r.Val), nil
	case "<=":
		return runtime.Bool(l.Val <= r.Val), nil
	case ">":
		return runtime.Bool(l.Val > r.Val), nil
	case ">=":
		return runtime.Bool(l.Val >= r.Val), nil
	}
	return nil, diagnostics.Runtime(expr, "unsupported binary operator %q", expr.Operator)
}

func (i *Interpreter) evaluateAssignment(expr *ast.AssignmentExpression, env *runtime.Environment, fr *frame) (runtime.Value, error) {
	switch target := expr.Target.(type) {
	case *ast.Identifier:
		val, err := i.evaluateExpression(expr.Value, env, fr)
		if err != nil {
			return nil, err
		}
		if err := env.Set(target.Name, val); err != nil {
			return nil, diagnostics.Runtime(target, "%s", err.Error())
		}
		return val, nil
	case *ast.MemberAccessExpression:
		object, err := i.memberReceiver(target.Object, env, fr)
		if err != nil {
			return nil, err
		}
		val, err := i.evaluateExpression(expr.Value, env, fr)
		if err != nil {
			return nil, err
		}
		return val, i.assignMember(object, target, val)
	case *ast.IndexExpression:
		object, err := i.evaluateExpression(target.Object, env, fr)
		if err != nil {
			return nil, err
		}
		index, err := i.evaluateExpression(target.Index, env, fr)
		if err != nil {
			return nil, err
		}
		val, err := i.evaluateExpression(expr.Value, env, fr)
		if err != nil {
			return nil, err
		}
		if _, err := i.invokeMember(object, "set", []runtime.Value{index, val}, target); err != nil {
			return nil, err
		}
		return val, nil
	}
	return nil, diagnostics.Runtime(expr, "invalid assignment target")
}

func (i *Interpreter) assignMember(object runtime.Value, target *ast.MemberAccessExpression, val runtime.Value) error {
	name := target.Member.Name
	switch obj := object.(type) {
	case *runtime.Instance:
		obj.SetField(name, val)
		return nil
	case runtime.ClassReference:
		if err := i.ensureStatics(obj.Class, target); err != nil {
			return err
		}
		if _, ok := obj.Class.Statics[name]; !ok {
			return diagnostics.Runtime(target.Member, "unknown static field '%s' on class '%s'", name, obj.Class.Name)
		}
		obj.Class.Statics[name] = val
		return nil
	}
	if runtime.IsNull(object) {
		return diagnostics.Runtime(target, "cannot set field '%s' on null", name)
	}
	return diagnostics.Runtime(target, "cannot set field '%s' on %s", name, runtime.TypeName(object))
}

func (i *Interpreter) evaluateIndexExpression(expr *ast.IndexExpression, env *runtime.Environment, fr *frame) (runtime.Value, error) {
	object, err := i.evaluateExpression(expr.Object, env, fr)
	if err != nil {
		return nil, err
	}
	index, err := i.evaluateExpression(expr.Index, env, fr)
	if err != nil {
		return nil, err
	}
	if runtime.IsNull(object) {
		return nil, diagnostics.Runtime(expr, "cannot index into null")
	}
	return i.invokeMember(object, "get", []runtime.Value{index}, expr)
}
