// Package groups models non-uniform groups: dynamically-sized subsets of a
// sub-group's lanes whose membership is a pure, per-lane recomputable
// function of lane id and sub-group width. No group object is shared between
// lanes; every member independently derives the same size, local id, and
// rendezvous key.
package groups

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/wavelane/groupcheck/runtime"
)

// NonUniformGroup is one lane's view of the partition it belongs to. It
// satisfies runtime.Group, so the group reduction functions apply directly.
type NonUniformGroup struct {
	key     string
	size    uint64
	localID uint64
	rv      *runtime.Rendezvous
}

// LocalLinearRange returns the number of member lanes, at least 1.
func (g NonUniformGroup) LocalLinearRange() uint64 { return g.size }

// LocalLinearID returns the calling lane's rank among the members, in
// [0, LocalLinearRange).
func (g NonUniformGroup) LocalLinearID() uint64 { return g.localID }

// Rendezvous returns the group's shared barrier.
func (g NonUniformGroup) Rendezvous() *runtime.Rendezvous { return g.rv }

// String returns the group's identity for diagnostics.
func (g NonUniformGroup) String() string {
	return fmt.Sprintf("%s(size=%d)", g.key, g.size)
}

// Helper describes one non-uniform group kind: how many partition strategies
// (test cases) it offers, whether a device supports it, and how a lane
// determines participation and membership for a given strategy.
type Helper interface {
	// Name returns the kind name used in diagnostics.
	Name() string

	// NumTestCases returns the number of partition strategies.
	NumTestCases() int

	// TestCaseName returns a human-readable strategy name.
	TestCaseName(testCase int) string

	// IsSupported reports whether the device can run this kind at all.
	IsSupported(d *runtime.Device) bool

	// ShouldParticipate reports whether the calling lane is a member of any
	// group under the strategy. Consistent with Create: a participating lane
	// always obtains a group, a non-participating lane must not call Create.
	ShouldParticipate(sg runtime.SubGroup, testCase int) bool

	// Create derives the calling lane's group under the strategy.
	Create(sg runtime.SubGroup, testCase int) (NonUniformGroup, error)
}

// All returns every group kind the harness models.
func All() []Helper {
	return []Helper{
		BallotGroups{},
		ChunkGroups{},
		TangleGroups{},
		OpportunisticGroups{},
	}
}

// ByName returns the helper with the given Name.
func ByName(name string) (Helper, error) {
	for _, h := range All() {
		if h.Name() == name {
			return h, nil
		}
	}
	return nil, errors.Errorf("unknown group kind %q", name)
}

// branchFunc assigns each lane of a sub-group to a branch id, or -1 for
// lanes outside every group of the strategy. Lanes sharing a branch id form
// one non-uniform group. It must depend only on lane id and width.
type branchFunc func(lane, width uint64) int

// derive computes the calling lane's group under branch: its size is the
// branch's member count, its local id the lane's rank among members. Every
// member runs the same loop over the same inputs, so all of them derive the
// identical group identity and rendezvous key.
func derive(sg runtime.SubGroup, kind string, testCase int, branch branchFunc) (NonUniformGroup, error) {
	width := sg.LocalLinearRange()
	me := sg.LocalLinearID()
	myBranch := branch(me, width)
	if myBranch < 0 {
		return NonUniformGroup{}, errors.Errorf(
			"%s: lane %d does not participate in test case %d", kind, me, testCase)
	}

	var size, rank uint64
	for lane := uint64(0); lane < width; lane++ {
		if branch(lane, width) != myBranch {
			continue
		}
		if lane < me {
			rank++
		}
		size++
	}

	key := fmt.Sprintf("%s/%d/sg%d/b%d", kind, testCase, sg.GroupLinearID(), myBranch)
	return NonUniformGroup{
		key:     key,
		size:    size,
		localID: rank,
		rv:      sg.GroupRendezvous(key, int(size)),
	}, nil
}

func participates(sg runtime.SubGroup, branch branchFunc) bool {
	return branch(sg.LocalLinearID(), sg.LocalLinearRange()) >= 0
}

func checkTestCase(h Helper, testCase int) error {
	if testCase < 0 || testCase >= h.NumTestCases() {
		return errors.Errorf("%s: test case %d out of range [0,%d)",
			h.Name(), testCase, h.NumTestCases())
	}
	return nil
}
