package utils

import "fmt"

// ChunkCrosscheckKernelName is the kernel entry point generated by
// ChunkCrosscheckKernelSource.
const ChunkCrosscheckKernelName = "chunkTruthTable"

// ChunkCrosscheckKernelSource generates an OKL kernel that replays the
// chunk-partition truth table on an OCCA device: each lane derives its chunk
// membership, serially recomputes every member's predicate values (lane
// values are a pure function of local id, so any member can reconstruct
// them), reduces, and ANDs the comparison against the expected table into
// the 12-slot result array.
//
// The kernel uses a single @outer iteration so the @inner lanes of one block
// fold into res without racing, matching the idempotent-AND discipline of
// the host harness. res holds one int per (operator, predicate) slot,
// operator-major, initialized to 1 by the caller.
func ChunkCrosscheckKernelSource(width, chunk int) string {
	return fmt.Sprintf(`
#define WIDTH %d
#define CHUNK %d

@kernel void chunkTruthTable(int *res) {
  for (int blk = 0; blk < 1; ++blk; @outer) {
    for (int lane = 0; lane < WIDTH; ++lane; @inner) {
      const int full = WIDTH - (WIDTH %% CHUNK);
      if (lane < full) {
        const int size = CHUNK;
        int anyv[4];
        int allv[4];
        for (int p = 0; p < 4; ++p) {
          anyv[p] = 0;
          allv[p] = 1;
        }
        for (int j = 0; j < CHUNK; ++j) {
          const int v = j + 1;
          int pv[4];
          pv[0] = (v == 0) ? 1 : 0;
          pv[1] = (v == 1) ? 1 : 0;
          pv[2] = (v > size / 2) ? 1 : 0;
          pv[3] = (v <= size) ? 1 : 0;
          for (int p = 0; p < 4; ++p) {
            anyv[p] |= pv[p];
            allv[p] &= pv[p];
          }
        }
        int expAny[4];
        int expAll[4];
        expAny[0] = 0;
        expAny[1] = 1;
        expAny[2] = 1;
        expAny[3] = 1;
        expAll[0] = 0;
        expAll[1] = (size == 1) ? 1 : 0;
        expAll[2] = (size == 1) ? 1 : 0;
        expAll[3] = 1;
        for (int p = 0; p < 4; ++p) {
          res[p] &= (anyv[p] == expAny[p]) ? 1 : 0;
          res[4 + p] &= (allv[p] == expAll[p]) ? 1 : 0;
          res[8 + p] &= ((1 - anyv[p]) == (1 - expAny[p])) ? 1 : 0;
        }
      }
    }
  }
}
`, width, chunk)
}
