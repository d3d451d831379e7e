package bytecode

// VisitorFactory hands out a new, empty visitor for every entry.
// Implementations must be safe for concurrent use.
type VisitorFactory interface {
	Create() ResultGatheringVisitor
}

// FactoryFunc adapts a constructor to VisitorFactory.
type FactoryFunc func() ResultGatheringVisitor

func (f FactoryFunc) Create() ResultGatheringVisitor {
	return f()
}

// NewDelegatingFactory returns a factory whose visitors run a freshly
// constructed instance of every rule.
func NewDelegatingFactory(rules ...func() ResultGatheringVisitor) VisitorFactory {
	rules = append([]func() ResultGatheringVisitor(nil), rules...)
	return FactoryFunc(func() ResultGatheringVisitor {
		visitors := make([]ResultGatheringVisitor, 0, len(rules))
		for _, newRule := range rules {
			visitors = append(visitors, newRule())
		}
		return NewDelegatingVisitor(visitors...)
	})
}
