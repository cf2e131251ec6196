package framework

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"
)

// Task is a Runnable started in its own goroutine which can be stopped
// cooperatively: Stop cancels its context and waits for Run to return.
type Task struct {
	name   string
	cancel context.CancelFunc
	doneCh chan struct{}
	err    error
}

// Go starts a Task.
func Go(ctx context.Context, runnable Runnable) *Task {
	t := &Task{doneCh: make(chan struct{})}
	if named, ok := runnable.(Named); ok {
		t.name = named.Name()
	}
	ctx, t.cancel = context.WithCancel(ctx)
	go func() {
		defer close(t.doneCh)
		err := runnable.Run(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		if err != nil {
			glog.Errorf("task %s: %v", t.name, err)
		} else {
			glog.V(4).Infof("task %s stopped", t.name)
		}
		t.err = err
	}()
	return t
}

// Stop requests the task to stop and waits until it does.
// It returns the error from Run, excluding context.Canceled.
func (t *Task) Stop() error {
	t.cancel()
	<-t.doneCh
	return t.err
}

// Done returns a chan closed when the task stops.
func (t *Task) Done() <-chan struct{} {
	return t.doneCh
}

// Err returns the error from Run once Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.doneCh:
		return t.err
	default:
		return nil
	}
}

// RunWithContextCancel runs a func which doesn't accept a context.
// onCancel is called only when the context is canceled and must make fn
// return; RunWithContextCancel always waits for fn.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case <-ctx.Done():
		if onCancel != nil {
			onCancel()
		}
		<-errCh
		return context.Canceled
	case err := <-errCh:
		return err
	}
}

// RunWithContextCloser is a convenient wrapper for RunWithContextCancel and
// ensures closer.Close is called exactly once, either on cancel or after fn
// returns.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	var once sync.Once
	closeFn := func() { once.Do(func() { closer.Close() }) }
	defer closeFn()
	return RunWithContextCancel(ctx, closeFn, fn)
}
