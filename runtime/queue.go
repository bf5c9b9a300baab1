package runtime

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Queue submits data-parallel work to a device.
type Queue struct {
	device *Device
}

// Device returns the device the queue is bound to.
func (q *Queue) Device() *Device { return q.device }

// Item identifies one lane inside a launch.
type Item struct {
	launch *launch
	global int
}

// GlobalLinearID returns the lane's zero-based id within the launch.
func (it *Item) GlobalLinearID() uint64 { return uint64(it.global) }

// SubGroup returns the wavefront the lane belongs to. Sub-groups are
// contiguous runs of SubGroupSize lanes; a trailing partial sub-group keeps
// its reduced size.
func (it *Item) SubGroup() SubGroup {
	sg := it.launch.device.subGroupSize
	id := it.global / sg
	start := id * sg
	size := sg
	if rem := it.launch.lanes - start; rem < size {
		size = rem
	}
	return SubGroup{
		launch:  it.launch,
		id:      id,
		localID: it.global - start,
		size:    size,
	}
}

// SubGroup identifies one wavefront of a launch. It is itself a reduction
// group covering all of its lanes.
type SubGroup struct {
	launch  *launch
	id      int
	localID int
	size    int
}

// GroupLinearID returns the sub-group's zero-based id within the launch.
func (sg SubGroup) GroupLinearID() uint64 { return uint64(sg.id) }

// LocalLinearID returns the calling lane's id within the sub-group.
func (sg SubGroup) LocalLinearID() uint64 { return uint64(sg.localID) }

// LocalLinearRange returns the number of lanes in the sub-group.
func (sg SubGroup) LocalLinearRange() uint64 { return uint64(sg.size) }

// Rendezvous returns the whole-sub-group barrier, making SubGroup usable as
// a Group for the reduction functions.
func (sg SubGroup) Rendezvous() *Rendezvous {
	return sg.launch.rendezvous(fmt.Sprintf("sg/%d", sg.id), sg.size)
}

// GroupRendezvous returns the barrier for a derived group of the given
// membership size. Every member must derive the identical key and size.
func (sg SubGroup) GroupRendezvous(key string, size int) *Rendezvous {
	return sg.launch.rendezvous(key, size)
}

// Submit launches n lanes executing kernel concurrently and blocks until all
// of them return. A lane panic tears the launch down: lanes blocked in a
// group reduction unwind, and the first panic is returned as the submission
// error. Reductions reached by only part of a group otherwise block, so a
// kernel must make every member of a group reach each of its reduction calls.
func (q *Queue) Submit(n int, kernel func(*Item)) error {
	if n < 1 {
		return errors.Errorf("invalid lane count %d", n)
	}
	if n > q.device.workGroupSize {
		return errors.Errorf("lane count %d exceeds device work-group size %d",
			n, q.device.workGroupSize)
	}

	l := newLaunch(q.device)
	l.lanes = n

	var eg errgroup.Group
	for i := 0; i < n; i++ {
		it := &Item{launch: l, global: i}
		eg.Go(func() (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if _, ok := r.(launchAbortedError); ok {
					// A peer failed first; its error is the one reported.
					return
				}
				l.doAbort()
				err = errors.Errorf("lane %d: %v", it.global, r)
			}()
			kernel(it)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return errors.Wrap(err, "kernel launch failed")
	}
	return nil
}
