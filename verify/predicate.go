// Package verify implements the predicate reduction conformance harness: it
// partitions sub-groups into non-uniform groups, runs the boolean group
// reductions over four canonical predicate shapes in both call shapes, and
// checks every result against the closed-form truth table.
package verify

import "github.com/wavelane/groupcheck/runtime"

// Predicate is a closed set of predicate shapes over the per-lane value
// local_id+1. Keeping the set closed makes the expected truth table
// exhaustive instead of depending on arbitrary captured functions.
type Predicate int

const (
	// PredNoneTrue holds for no lane: the value is never 0.
	PredNoneTrue Predicate = iota
	// PredOneTrue holds for exactly the lane with local id 0.
	PredOneTrue
	// PredSomeTrue holds for the upper half of the group, degenerating to
	// every lane when the group has size 1.
	PredSomeTrue
	// PredAllTrue holds for every lane: the value never exceeds the size.
	PredAllTrue
)

// Predicates lists the shapes in result-matrix order.
var Predicates = []Predicate{PredNoneTrue, PredOneTrue, PredSomeTrue, PredAllTrue}

func (p Predicate) String() string {
	switch p {
	case PredNoneTrue:
		return "none true"
	case PredOneTrue:
		return "one true"
	case PredSomeTrue:
		return "some true"
	case PredAllTrue:
		return "all true"
	}
	return "unknown"
}

// evalPredicate applies the shape to one lane's value. Division in the
// "some true" shape is integer division over the group size, so for odd
// sizes slightly more than half the lanes qualify.
func evalPredicate[T runtime.Value](p Predicate, i T, size uint64) bool {
	switch p {
	case PredNoneTrue:
		return i == 0
	case PredOneTrue:
		return i == 1
	case PredSomeTrue:
		return i > T(size/2)
	default:
		return i <= T(size)
	}
}

// Op identifies one boolean group reduction.
type Op int

const (
	OpAnyOf Op = iota
	OpAllOf
	OpNoneOf
)

// Ops lists the reductions in result-matrix order.
var Ops = []Op{OpAnyOf, OpAllOf, OpNoneOf}

func (o Op) String() string {
	switch o {
	case OpAnyOf:
		return "any_of_group"
	case OpAllOf:
		return "all_of_group"
	case OpNoneOf:
		return "none_of_group"
	}
	return "unknown"
}

// CallShape distinguishes the two reduction overloads under test.
type CallShape int

const (
	// CallPredicate passes the lane value and a predicate evaluated inside
	// the reduction.
	CallPredicate CallShape = iota
	// CallBool passes the predicate result evaluated before the call.
	CallBool
)

func (s CallShape) String() string {
	if s == CallBool {
		return "bool"
	}
	return "predicate function"
}

// Signature returns the call signature text used in diagnostics.
func (o Op) Signature(s CallShape) string {
	if s == CallBool {
		return "bool " + o.String() + "(GroupT g, bool pred)"
	}
	return "bool " + o.String() + "(GroupT g, T x, Predicate pred)"
}

// Expected returns the correct reduction result for a group of the given
// size, whose lanes hold the values 1..size:
//
//	predicate | any_of | all_of      | none_of
//	none true | false  | false       | true
//	one true  | true   | size == 1   | false
//	some true | true   | size == 1   | false
//	all true  | true   | true        | false
func Expected(o Op, p Predicate, size uint64) bool {
	var anyOf, allOf bool
	switch p {
	case PredNoneTrue:
		anyOf, allOf = false, false
	case PredOneTrue, PredSomeTrue:
		anyOf, allOf = true, size == 1
	default:
		anyOf, allOf = true, true
	}
	switch o {
	case OpAnyOf:
		return anyOf
	case OpAllOf:
		return allOf
	default:
		return !anyOf
	}
}

// slot maps an (operator, predicate) pair to its result-matrix index,
// operator-major: 0..3 any_of, 4..7 all_of, 8..11 none_of.
func slot(o Op, p Predicate) int {
	return int(o)*len(Predicates) + int(p)
}
