package plugin

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ayusman/betterkle/internal/config"
	"github.com/ayusman/betterkle/internal/detector"
	"github.com/ayusman/betterkle/internal/motion"
)

// DefaultQueueLen is the number of pending press actions a Dispatcher buffers.
const DefaultQueueLen = 16

// Result reports the outcome of one dispatched action.
type Result struct {
	Plugin   string
	Request  Request
	Response *Response
	Err      error
}

// Dispatcher maps finger presses to plugin actions and runs them on a
// background worker. Dispatch never blocks the frame loop: when the queue
// is full the press is dropped.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	bindings map[detector.Finger]config.Binding
	queue    chan job

	// OnResult, when set, is called from the worker after each run.
	OnResult func(Result)

	dropped atomic.Int64
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type job struct {
	plugin string
	req    Request
}

// NewDispatcher creates a Dispatcher. Bindings keyed by unknown finger
// names are ignored.
func NewDispatcher(m *Manager, e *Executor, bindings map[string]config.Binding, queueLen int) *Dispatcher {
	if queueLen <= 0 {
		queueLen = DefaultQueueLen
	}

	byFinger := make(map[detector.Finger]config.Binding, len(bindings))
	for name, b := range bindings {
		f, ok := detector.ParseFinger(name)
		if !ok {
			log.Printf("plugin: ignoring binding for unknown finger %q", name)
			continue
		}
		byFinger[f] = b
	}

	return &Dispatcher{
		manager:  m,
		executor: e,
		bindings: byFinger,
		queue:    make(chan job, queueLen),
	}
}

// Bound reports whether a press of f triggers an action.
func (d *Dispatcher) Bound(f detector.Finger) bool {
	_, ok := d.bindings[f]
	return ok
}

// Dispatch queues the action bound to the event's finger. It returns false
// when the finger is unbound or the queue is full.
func (d *Dispatcher) Dispatch(ev motion.PressEvent) bool {
	b, ok := d.bindings[ev.Finger]
	if !ok {
		return false
	}

	j := job{
		plugin: b.Plugin,
		req: Request{
			Action:     b.Action,
			Finger:     ev.Finger.String(),
			Hand:       ev.Hand,
			Handedness: ev.Handedness,
			Params:     b.Params,
		},
	}

	select {
	case d.queue <- j:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// Dropped returns how many presses were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Start runs the worker until ctx is cancelled or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case j := <-d.queue:
				d.run(ctx, j)
			}
		}
	}()
}

// Stop cancels the worker and waits for it to exit. Queued actions that
// have not started are discarded.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, j job) {
	res := Result{Plugin: j.plugin, Request: j.req}

	p, err := d.manager.Get(j.plugin)
	if err != nil {
		res.Err = err
	} else if !p.Manifest.Supports(j.req.Action) {
		res.Err = &UnsupportedActionError{Plugin: j.plugin, Action: j.req.Action}
	} else {
		res.Response, res.Err = d.executor.Execute(ctx, p, &j.req)
	}

	switch {
	case res.Err != nil:
		log.Printf("plugin: %s %s (%s press): %v", j.plugin, j.req.Action, j.req.Finger, res.Err)
	case !res.Response.Success:
		log.Printf("plugin: %s %s reported failure: %s", j.plugin, j.req.Action, res.Response.Error)
	}

	if d.OnResult != nil {
		d.OnResult(res)
	}
}

// UnsupportedActionError is returned when a binding names an action the
// plugin manifest does not list.
type UnsupportedActionError struct {
	Plugin string
	Action string
}

func (e *UnsupportedActionError) Error() string {
	return "plugin " + e.Plugin + " does not support action " + e.Action
}
