// Package anim runs frame-stepped animation tasks.
//
// Every task is advanced once per frame by Animator.Advance on the frame
// goroutine. Cancelling a task sets a flag that Advance honours before the
// task's next step, so once Cancel returns the task never writes again.
package anim

import "time"

// Task is one animation. Step applies the value for the elapsed time and
// reports whether the task has finished.
type Task interface {
	Step(dt time.Duration) (done bool)
}

// TaskFunc adapts a function to Task.
type TaskFunc func(dt time.Duration) bool

// Step implements Task.
func (f TaskFunc) Step(dt time.Duration) bool { return f(dt) }

// Handle controls a started task.
type Handle struct {
	task      Task
	cancelled bool
	done      bool
}

// Cancel stops the task. It is safe to call more than once and on nil.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.cancelled = true
}

// Active reports whether the task will be stepped again.
func (h *Handle) Active() bool {
	return h != nil && !h.cancelled && !h.done
}

// Animator owns the running tasks.
type Animator struct {
	tasks []*Handle
}

// New creates an empty Animator.
func New() *Animator {
	return &Animator{}
}

// Start schedules t; its first step happens on the next Advance.
func (a *Animator) Start(t Task) *Handle {
	h := &Handle{task: t}
	a.tasks = append(a.tasks, h)
	return h
}

// Advance steps every live task once, in start order. Tasks started during
// Advance wait for the next frame.
func (a *Animator) Advance(dt time.Duration) {
	n := len(a.tasks)
	for i := 0; i < n; i++ {
		h := a.tasks[i]
		if h.cancelled || h.done {
			continue
		}
		if h.task.Step(dt) {
			h.done = true
		}
	}
	a.compact()
}

func (a *Animator) compact() {
	live := a.tasks[:0]
	for _, h := range a.tasks {
		if h.cancelled || h.done {
			continue
		}
		live = append(live, h)
	}
	for i := len(live); i < len(a.tasks); i++ {
		a.tasks[i] = nil
	}
	a.tasks = live
}

// Len returns the number of live tasks.
func (a *Animator) Len() int {
	n := 0
	for _, h := range a.tasks {
		if h.Active() {
			n++
		}
	}
	return n
}

// CancelAll cancels every task.
func (a *Animator) CancelAll() {
	for _, h := range a.tasks {
		h.Cancel()
	}
	a.compact()
}
