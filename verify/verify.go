package verify

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/wavelane/groupcheck/groups"
	"github.com/wavelane/groupcheck/runtime"
)

// Outcome classifies one report. Skipped configurations are excluded from
// pass/fail accounting.
type Outcome int

const (
	Passed Outcome = iota
	Failed
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "pass"
	case Failed:
		return "fail"
	default:
		return "skip"
	}
}

// Check is the result of one (operator, predicate) verification for one
// test case, with the context needed to diagnose a mismatch.
type Check struct {
	Group     string
	TestCase  string
	WorkGroup string
	Op        Op
	Predicate Predicate
	Shape     CallShape
	Passed    bool
}

func (c Check) String() string {
	return fmt.Sprintf("%s with %q predicate, %s, %s, work-group %s",
		c.Op.Signature(c.Shape), c.Predicate, c.Group, c.TestCase, c.WorkGroup)
}

// Report is the outcome of running one group kind through one call shape
// and value type. Failed checks accumulate; they never abort the remaining
// combinations. Err is set only for setup failures (a launch that could not
// run), which do abort the report.
type Report struct {
	Group      string
	ValueType  string
	Shape      CallShape
	Outcome    Outcome
	SkipReason string
	Err        error
	Checks     []Check
}

// FailedChecks returns the checks that did not pass.
func (r Report) FailedChecks() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

// workGroupRange picks the launch size for a device: the device limit,
// capped at four sub-groups so runs stay small while still covering
// multiple sub-groups.
func workGroupRange(d *runtime.Device) int {
	n := d.MaxWorkGroupSize()
	if c := 4 * d.SubGroupSize(); n > c {
		n = c
	}
	return n
}

// groupChecks runs the full operator x predicate matrix for one lane's
// group and returns the per-slot correctness vector. Every member of the
// group executes the identical call sequence, so each reduction call is a
// group-wide rendezvous and every member derives the identical vector.
func groupChecks[T runtime.Value](g groups.NonUniformGroup, shape CallShape) [matrixSlots]bool {
	size := g.LocalLinearRange()

	// The local value has the well-defined range [1, size] across the
	// group's members, which the predicate shapes are written against.
	x := T(g.LocalLinearID() + 1)

	var local [matrixSlots]bool
	for _, op := range Ops {
		for _, p := range Predicates {
			var got bool
			if shape == CallPredicate {
				pred := func(i T) bool { return evalPredicate(p, i, size) }
				switch op {
				case OpAnyOf:
					got = runtime.AnyOfGroup(g, x, pred)
				case OpAllOf:
					got = runtime.AllOfGroup(g, x, pred)
				default:
					got = runtime.NoneOfGroup(g, x, pred)
				}
			} else {
				v := evalPredicate(p, x, size)
				switch op {
				case OpAnyOf:
					got = runtime.AnyOfGroupBool(g, v)
				case OpAllOf:
					got = runtime.AllOfGroupBool(g, v)
				default:
					got = runtime.NoneOfGroupBool(g, v)
				}
			}
			local[slot(op, p)] = got == Expected(op, p, size)
		}
	}
	return local
}

// runChecks is the shared harness: for every test case of the group kind it
// launches one kernel over the work-group range, lets participating lanes
// fold their correctness vectors into a shared matrix, and turns the folded
// matrix into checks.
func runChecks(q *runtime.Queue, h groups.Helper, shape CallShape, valueType string,
	body func(groups.NonUniformGroup, *resultMatrix)) Report {

	rep := Report{Group: h.Name(), ValueType: valueType, Shape: shape}

	d := q.Device()
	if !h.IsSupported(d) {
		rep.Outcome = Skipped
		rep.SkipReason = fmt.Sprintf("device %q does not support %s", d.Name(), h.Name())
		return rep
	}

	n := workGroupRange(d)
	wg := fmt.Sprintf("{%d}, sub-group %d", n, d.SubGroupSize())

	rep.Outcome = Passed
	for tc := 0; tc < h.NumTestCases(); tc++ {
		m := newResultMatrix()
		err := q.Submit(n, func(it *runtime.Item) {
			sg := it.SubGroup()
			// Lanes outside every group of this strategy leave early and
			// must not touch the shared matrix.
			if !h.ShouldParticipate(sg, tc) {
				return
			}
			g, err := h.Create(sg, tc)
			if err != nil {
				panic(err)
			}
			body(g, m)
		})
		if err != nil {
			rep.Err = errors.Wrapf(err, "%s test case %d (%s)", h.Name(), tc, h.TestCaseName(tc))
			rep.Outcome = Failed
			return rep
		}

		snap := m.snapshot()
		for _, idx := range combin.Cartesian([]int{len(Ops), len(Predicates)}) {
			op, p := Ops[idx[0]], Predicates[idx[1]]
			c := Check{
				Group:     h.Name(),
				TestCase:  h.TestCaseName(tc),
				WorkGroup: wg,
				Op:        op,
				Predicate: p,
				Shape:     shape,
				Passed:    snap[slot(op, p)],
			}
			if !c.Passed {
				rep.Outcome = Failed
			}
			rep.Checks = append(rep.Checks, c)
		}
	}
	return rep
}

// PredicateFunctionOf verifies the deferred-predicate call shape of the
// reductions for one group kind, with T as the lane value type.
func PredicateFunctionOf[T runtime.Value](q *runtime.Queue, h groups.Helper) Report {
	var zero T
	return runChecks(q, h, CallPredicate, fmt.Sprintf("%T", zero),
		func(g groups.NonUniformGroup, m *resultMatrix) {
			m.fold(groupChecks[T](g, CallPredicate))
		})
}

// BoolFunctionOf verifies the pre-evaluated-boolean call shape of the
// reductions for one group kind.
func BoolFunctionOf(q *runtime.Queue, h groups.Helper) Report {
	return runChecks(q, h, CallBool, "uint64",
		func(g groups.NonUniformGroup, m *resultMatrix) {
			m.fold(groupChecks[uint64](g, CallBool))
		})
}

// predicateRunners enumerates the supported lane value types for the
// deferred-predicate shape.
var predicateRunners = []struct {
	name string
	run  func(*runtime.Queue, groups.Helper) Report
}{
	{"int32", PredicateFunctionOf[int32]},
	{"uint32", PredicateFunctionOf[uint32]},
	{"int64", PredicateFunctionOf[int64]},
	{"uint64", PredicateFunctionOf[uint64]},
	{"float32", PredicateFunctionOf[float32]},
	{"float64", PredicateFunctionOf[float64]},
}

// ValueTypes lists the lane value types the suite instantiates.
func ValueTypes() []string {
	names := make([]string, len(predicateRunners))
	for i, r := range predicateRunners {
		names[i] = r.name
	}
	return names
}

// RunKind runs one group kind through every value type of the
// deferred-predicate shape plus the pre-evaluated-boolean shape.
func RunKind(q *runtime.Queue, h groups.Helper) []Report {
	reports := make([]Report, 0, len(predicateRunners)+1)
	for _, r := range predicateRunners {
		reports = append(reports, r.run(q, h))
	}
	return append(reports, BoolFunctionOf(q, h))
}

// RunSuite runs every (group kind, value type) pair through both call
// shapes on the given device and returns one report per run.
func RunSuite(d *runtime.Device) []Report {
	q := d.NewQueue()
	var reports []Report
	for _, h := range groups.All() {
		reports = append(reports, RunKind(q, h)...)
	}
	return reports
}
