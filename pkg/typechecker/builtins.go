package typechecker

// wrapperClasses maps primitives to the native classes whose methods they expose.
var wrapperClasses = map[PrimitiveKind]string{
	PrimitiveString:  "String",
	PrimitiveNumber:  "Number",
	PrimitiveBoolean: "Boolean",
}

// autobox returns the wrapper class type for a primitive receiver.
func (c *Checker) autobox(t Type) (ClassRef, bool) {
	prim, ok := t.(PrimitiveType)
	if !ok {
		return ClassRef{}, false
	}
	sym, ok := c.table.Class(wrapperClasses[prim.Kind])
	if !ok {
		return ClassRef{}, false
	}
	return ClassRef{Symbol: sym}, true
}
