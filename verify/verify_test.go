package verify

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavelane/groupcheck/groups"
	"github.com/wavelane/groupcheck/runtime"
)

func hostDevice(t *testing.T, cfg runtime.Config) *runtime.Device {
	t.Helper()
	d, err := runtime.New("host", cfg)
	require.NoError(t, err)
	return d
}

func TestRunSuiteOnHostDevice(t *testing.T) {
	d := hostDevice(t, runtime.Config{WorkGroupSize: 32, SubGroupSize: 8})
	reports := RunSuite(d)

	// 4 kinds x (6 value types + the bool shape).
	require.Len(t, reports, 4*(len(ValueTypes())+1))

	for _, rep := range reports {
		assert.Equal(t, Passed, rep.Outcome,
			"%s %s (%s): %v, failed checks %v",
			rep.Group, rep.ValueType, rep.Shape, rep.Err, rep.FailedChecks())
		assert.NoError(t, rep.Err)
		assert.NotEmpty(t, rep.Checks)
		assert.Empty(t, rep.FailedChecks())

		h, err := groups.ByName(rep.Group)
		require.NoError(t, err)
		assert.Len(t, rep.Checks, h.NumTestCases()*matrixSlots)
	}
}

func TestRunSuiteSkipsUnsupportedKinds(t *testing.T) {
	d := hostDevice(t, runtime.Config{
		WorkGroupSize: 32,
		SubGroupSize:  8,
		Disable:       []runtime.Capability{runtime.CapTangleGroups},
	})

	for _, rep := range RunSuite(d) {
		if rep.Group == "tangle_group" {
			assert.Equal(t, Skipped, rep.Outcome)
			assert.Contains(t, rep.SkipReason, "tangle_group")
			assert.Empty(t, rep.Checks, "skipped runs must not count checks")
		} else {
			assert.Equal(t, Passed, rep.Outcome, "%s %s", rep.Group, rep.ValueType)
		}
	}
}

func TestChunkKindSkippedOnNarrowDevice(t *testing.T) {
	d := hostDevice(t, runtime.Config{WorkGroupSize: 16, SubGroupSize: 4})
	rep := BoolFunctionOf(d.NewQueue(), groups.ChunkGroups{})
	assert.Equal(t, Skipped, rep.Outcome)
	assert.NotEmpty(t, rep.SkipReason)
}

// TestLanesOfOneGroupFoldIdenticalVectors asserts the invariant the shared
// matrix depends on: the reductions combine group-wide before any lane
// folds, so every member of a group derives the identical slot vector.
func TestLanesOfOneGroupFoldIdenticalVectors(t *testing.T) {
	const lanes = 16
	d := hostDevice(t, runtime.Config{WorkGroupSize: lanes, SubGroupSize: 8})
	q := d.NewQueue()
	h := groups.ChunkGroups{}

	type obs struct {
		key   string
		local [matrixSlots]bool
	}
	views := make([]obs, lanes)

	const tc = 1 // chunks of 2
	err := q.Submit(lanes, func(it *runtime.Item) {
		sg := it.SubGroup()
		if !h.ShouldParticipate(sg, tc) {
			return
		}
		g, err := h.Create(sg, tc)
		if err != nil {
			panic(err)
		}
		views[it.GlobalLinearID()] = obs{
			key:   g.String(),
			local: groupChecks[int64](g, CallPredicate),
		}
	})
	require.NoError(t, err)

	byGroup := make(map[string][matrixSlots]bool)
	for lane, v := range views {
		if v.key == "" {
			continue
		}
		if prev, ok := byGroup[v.key]; ok {
			assert.Equal(t, prev, v.local, "lane %d of %s disagrees with its group", lane, v.key)
		} else {
			byGroup[v.key] = v.local
		}
	}
	assert.NotEmpty(t, byGroup)
}

// TestCallShapesAgreeLaneByLane verifies the two overload shapes return the
// identical result for every (operator, predicate, group) triple.
func TestCallShapesAgreeLaneByLane(t *testing.T) {
	const lanes = 16
	d := hostDevice(t, runtime.Config{WorkGroupSize: lanes, SubGroupSize: 8})
	q := d.NewQueue()
	h := groups.BallotGroups{}

	agree := make([]bool, lanes)
	err := q.Submit(lanes, func(it *runtime.Item) {
		sg := it.SubGroup()
		g, err := h.Create(sg, 0)
		if err != nil {
			panic(err)
		}
		size := g.LocalLinearRange()
		x := uint64(g.LocalLinearID() + 1)

		ok := true
		for _, p := range Predicates {
			pred := func(i uint64) bool { return evalPredicate(p, i, size) }
			ok = ok && runtime.AnyOfGroup(g, x, pred) == runtime.AnyOfGroupBool(g, pred(x))
			ok = ok && runtime.AllOfGroup(g, x, pred) == runtime.AllOfGroupBool(g, pred(x))
			ok = ok && runtime.NoneOfGroup(g, x, pred) == runtime.NoneOfGroupBool(g, pred(x))
		}
		agree[it.GlobalLinearID()] = ok
	})
	require.NoError(t, err)
	for lane, ok := range agree {
		assert.True(t, ok, "lane %d saw the overloads disagree", lane)
	}
}

// TestNonParticipantsLeaveMatrixUntouched runs a strategy whose sub-groups
// have no members at all; every slot must keep its initial true.
func TestNonParticipantsLeaveMatrixUntouched(t *testing.T) {
	// Width-1 sub-groups have no odd lane, so "odd lanes only" excludes
	// every lane of the launch.
	d := hostDevice(t, runtime.Config{WorkGroupSize: 4, SubGroupSize: 1})
	rep := BoolFunctionOf(d.NewQueue(), groups.OpportunisticGroups{})
	assert.Equal(t, Passed, rep.Outcome)
	for _, c := range rep.Checks {
		assert.True(t, c.Passed, "%s", c)
	}
}

// brokenHelper reports participation but fails group construction, driving
// the launch into the unrecoverable-setup path.
type brokenHelper struct {
	groups.BallotGroups
}

func (brokenHelper) Name() string { return "broken_group" }

func (brokenHelper) Create(runtime.SubGroup, int) (groups.NonUniformGroup, error) {
	return groups.NonUniformGroup{}, errors.New("membership mask unavailable")
}

func TestSetupFailureSurfacesImmediately(t *testing.T) {
	d := hostDevice(t, runtime.Config{WorkGroupSize: 8, SubGroupSize: 8})
	rep := BoolFunctionOf(d.NewQueue(), brokenHelper{})

	assert.Equal(t, Failed, rep.Outcome)
	require.Error(t, rep.Err)
	assert.Contains(t, rep.Err.Error(), "membership mask unavailable")
	assert.Empty(t, rep.Checks, "setup failures abort before check accounting")
}

func TestWorkGroupRange(t *testing.T) {
	assert.Equal(t, 32,
		workGroupRange(hostDevice(t, runtime.Config{WorkGroupSize: 64, SubGroupSize: 8})))
	assert.Equal(t, 16,
		workGroupRange(hostDevice(t, runtime.Config{WorkGroupSize: 16, SubGroupSize: 8})))
}
