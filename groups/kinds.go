package groups

import (
	"github.com/wavelane/groupcheck/runtime"
)

// BallotGroups splits a sub-group into two groups by a membership predicate
// over the lane id. Every lane participates: it lands in the group of lanes
// that voted the same way.
type BallotGroups struct{}

var ballotCases = []string{
	"low half split",
	"even odd split",
	"first lane vs rest",
}

func (BallotGroups) Name() string { return "ballot_group" }
func (BallotGroups) NumTestCases() int { return len(ballotCases) }
func (BallotGroups) TestCaseName(tc int) string { return ballotCases[tc] }
func (BallotGroups) IsSupported(d *runtime.Device) bool {
	return d.Supports(runtime.CapBallotGroups)
}

func ballotBranch(testCase int) branchFunc {
	return func(lane, width uint64) int {
		var vote bool
		switch testCase {
		case 0:
			vote = lane < width/2
		case 1:
			vote = lane%2 == 0
		default:
			vote = lane == 0
		}
		if vote {
			return 0
		}
		return 1
	}
}

func (b BallotGroups) ShouldParticipate(sg runtime.SubGroup, tc int) bool {
	return participates(sg, ballotBranch(tc))
}

func (b BallotGroups) Create(sg runtime.SubGroup, tc int) (NonUniformGroup, error) {
	if err := checkTestCase(b, tc); err != nil {
		return NonUniformGroup{}, err
	}
	return derive(sg, b.Name(), tc, ballotBranch(tc))
}

// ChunkGroups partitions a sub-group into fixed-size contiguous chunks.
// Lanes past the last full chunk do not participate. A device narrower than
// the largest chunk size reports the kind unsupported.
type ChunkGroups struct{}

var chunkSizes = []uint64{1, 2, 4, 8}

var chunkCases = []string{
	"chunks of 1",
	"chunks of 2",
	"chunks of 4",
	"chunks of 8",
}

func (ChunkGroups) Name() string { return "chunk_group" }
func (ChunkGroups) NumTestCases() int { return len(chunkCases) }
func (ChunkGroups) TestCaseName(tc int) string { return chunkCases[tc] }
func (ChunkGroups) IsSupported(d *runtime.Device) bool {
	return d.Supports(runtime.CapChunkGroups) &&
		uint64(d.SubGroupSize()) >= chunkSizes[len(chunkSizes)-1]
}

func chunkBranch(testCase int) branchFunc {
	size := chunkSizes[testCase]
	return func(lane, width uint64) int {
		full := width - width%size
		if lane >= full {
			return -1
		}
		return int(lane / size)
	}
}

func (c ChunkGroups) ShouldParticipate(sg runtime.SubGroup, tc int) bool {
	return participates(sg, chunkBranch(tc))
}

func (c ChunkGroups) Create(sg runtime.SubGroup, tc int) (NonUniformGroup, error) {
	if err := checkTestCase(c, tc); err != nil {
		return NonUniformGroup{}, err
	}
	return derive(sg, c.Name(), tc, chunkBranch(tc))
}

// TangleGroups groups the lanes that took the same control-flow branch.
// Every lane participates in the group of its branch.
type TangleGroups struct{}

var tangleCases = []string{
	"modulo-3 branches",
	"low quarter branch",
}

func (TangleGroups) Name() string { return "tangle_group" }
func (TangleGroups) NumTestCases() int { return len(tangleCases) }
func (TangleGroups) TestCaseName(tc int) string { return tangleCases[tc] }
func (TangleGroups) IsSupported(d *runtime.Device) bool {
	return d.Supports(runtime.CapTangleGroups)
}

func tangleBranch(testCase int) branchFunc {
	return func(lane, width uint64) int {
		switch testCase {
		case 0:
			return int(lane % 3)
		default:
			quarter := width / 4
			if quarter == 0 {
				quarter = 1
			}
			if lane < quarter {
				return 0
			}
			return 1
		}
	}
}

func (t TangleGroups) ShouldParticipate(sg runtime.SubGroup, tc int) bool {
	return participates(sg, tangleBranch(tc))
}

func (t TangleGroups) Create(sg runtime.SubGroup, tc int) (NonUniformGroup, error) {
	if err := checkTestCase(t, tc); err != nil {
		return NonUniformGroup{}, err
	}
	return derive(sg, t.Name(), tc, tangleBranch(tc))
}

// OpportunisticGroups collects only the lanes that reach the call into a
// single group; the remaining lanes do not participate at all and must
// leave the kernel without touching shared results.
type OpportunisticGroups struct{}

var opportunisticCases = []string{
	"odd lanes only",
	"first quarter only",
	"single lane",
}

func (OpportunisticGroups) Name() string { return "opportunistic_group" }
func (OpportunisticGroups) NumTestCases() int { return len(opportunisticCases) }
func (OpportunisticGroups) TestCaseName(tc int) string { return opportunisticCases[tc] }
func (OpportunisticGroups) IsSupported(d *runtime.Device) bool {
	return d.Supports(runtime.CapOpportunisticGroups)
}

func opportunisticBranch(testCase int) branchFunc {
	return func(lane, width uint64) int {
		var member bool
		switch testCase {
		case 0:
			member = lane%2 == 1
		case 1:
			quarter := width / 4
			if quarter == 0 {
				quarter = 1
			}
			member = lane < quarter
		default:
			member = lane == 0
		}
		if member {
			return 0
		}
		return -1
	}
}

func (o OpportunisticGroups) ShouldParticipate(sg runtime.SubGroup, tc int) bool {
	return participates(sg, opportunisticBranch(tc))
}

func (o OpportunisticGroups) Create(sg runtime.SubGroup, tc int) (NonUniformGroup, error) {
	if err := checkTestCase(o, tc); err != nil {
		return NonUniformGroup{}, err
	}
	return derive(sg, o.Name(), tc, opportunisticBranch(tc))
}
