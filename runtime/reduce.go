package runtime

import "golang.org/x/exp/constraints"

// Value constrains the per-lane value types the reductions accept.
type Value interface {
	constraints.Integer | constraints.Float
}

// Group is a reduction scope: a set of lanes with local ids in
// [0, LocalLinearRange) sharing one rendezvous barrier. SubGroup satisfies
// it, as does groups.NonUniformGroup.
type Group interface {
	LocalLinearID() uint64
	LocalLinearRange() uint64
	Rendezvous() *Rendezvous
}

// Every reduction is a barrier scoped to g: each member contributes, the
// last arrival combines, and all members observe the same result. The
// predicate forms evaluate pred(x) inside the call; the bool forms take the
// already evaluated contribution. Both forms agree for identical inputs.

// AnyOfGroup reports whether pred(x) holds on at least one member of g.
func AnyOfGroup[T Value](g Group, x T, pred func(T) bool) bool {
	anyOf, _ := g.Rendezvous().arrive(pred(x))
	return anyOf
}

// AllOfGroup reports whether pred(x) holds on every member of g.
func AllOfGroup[T Value](g Group, x T, pred func(T) bool) bool {
	_, allOf := g.Rendezvous().arrive(pred(x))
	return allOf
}

// NoneOfGroup reports whether pred(x) holds on no member of g.
func NoneOfGroup[T Value](g Group, x T, pred func(T) bool) bool {
	anyOf, _ := g.Rendezvous().arrive(pred(x))
	return !anyOf
}

// AnyOfGroupBool reports whether v is true on at least one member of g.
func AnyOfGroupBool(g Group, v bool) bool {
	anyOf, _ := g.Rendezvous().arrive(v)
	return anyOf
}

// AllOfGroupBool reports whether v is true on every member of g.
func AllOfGroupBool(g Group, v bool) bool {
	_, allOf := g.Rendezvous().arrive(v)
	return allOf
}

// NoneOfGroupBool reports whether v is true on no member of g.
func NoneOfGroupBool(g Group, v bool) bool {
	anyOf, _ := g.Rendezvous().arrive(v)
	return !anyOf
}
