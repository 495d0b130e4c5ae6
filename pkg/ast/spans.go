package ast

// Span locates a node in its source as a half-open byte range. It is only used for
// diagnostics; the zero Span means "unknown location".
type Span struct {
	Source string `json:"source,omitempty"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

func (s Span) IsZero() bool { return s == Span{} }

// Cover returns the smallest span containing both s and other. Spans from different
// sources are not merged.
func (s Span) Cover(other Span) Span {
	if s.IsZero() {
		return other
	}
	if other.IsZero() || other.Source != s.Source {
		return s
	}
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// WithSpan sets the span and returns the node, for use inside constructors chains.
func WithSpan[T Node](node T, span Span) T {
	SetSpan(node, span)
	return node
}
