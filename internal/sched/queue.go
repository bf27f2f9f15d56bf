// Package sched runs deferred work cooperatively on a single goroutine.
package sched

import "context"

// Queue is a FIFO of tasks run one at a time by its owner. It does no
// locking: Post and the Run methods must be called from the same
// goroutine.
type Queue struct {
	tasks []func()
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Post enqueues task to run at the next opportunity
func (q *Queue) Post(task func()) {
	q.tasks = append(q.tasks, task)
}

// Pending returns the number of queued tasks
func (q *Queue) Pending() int {
	return len(q.tasks)
}

// RunOne runs the oldest task. It returns false if the queue was empty.
func (q *Queue) RunOne() bool {
	if len(q.tasks) == 0 {
		return false
	}
	task := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	task()
	return true
}

// Drain runs tasks, including ones posted while draining, until the queue
// is empty or ctx is done
func (q *Queue) Drain(ctx context.Context) error {
	for q.Pending() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.RunOne()
	}
	return nil
}
