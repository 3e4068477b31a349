package fleet

import (
	"context"
	"errors"
	"time"

	"github.com/telenornms/skuld"
	"github.com/telenornms/skuld/parse"
)

// worker drives one device end to end: connect, run the catalog in
// declared order, retry where retrying can help, and leave an audit row
// per command. Nothing escapes run() as an error: every failure ends up
// in the DeviceResult.
type worker struct {
	dev   skuld.Device
	specs []skuld.CommandSpec
	opts  Options
	cred  skuld.Credential
	nf    parse.NumberFormat
	sess  skuld.Execer
}

func (w *worker) run(ctx context.Context) (res skuld.DeviceResult) {
	res = skuld.DeviceResult{
		Device:   w.dev,
		Started:  time.Now(),
		Outcomes: make([]skuld.Outcome, 0, len(w.specs)),
	}
	defer func() {
		if w.sess != nil {
			w.sess.Finalize()
			w.sess = nil
		}
		res.Elapsed = time.Since(res.Started)
		res.Classify()
	}()
	skuld.Debugf("%s - starting run", w.dev.Name)
	for i, spec := range w.specs {
		// Cancellation is cooperative and checked between commands.
		if ctx.Err() != nil {
			skipFrom(&res, w.specs[i:], skuld.ErrClass(skuld.ErrPassTimeout))
			return res
		}
		res.LastCommand = spec.Command
		out, terminal := w.execute(ctx, spec)
		res.Outcomes = append(res.Outcomes, out)
		if out.Status != skuld.CmdOK && res.Err == "" {
			res.Err = out.Err
		}
		if terminal != nil {
			skipFrom(&res, w.specs[i+1:], skuld.ErrClass(terminal))
			return res
		}
	}
	return res
}

// execute runs a single command with the retry state machine. The
// returned error is non-nil only for failures that terminate the whole
// device (auth rejection, a connection we can't re-establish, the pass
// deadline); command-local failures are recorded in the outcome and the
// sequence continues.
func (w *worker) execute(ctx context.Context, spec skuld.CommandSpec) (skuld.Outcome, error) {
	out := skuld.Outcome{Spec: spec}
	start := time.Now()
	defer func() {
		out.Elapsed = time.Since(start)
	}()
	for attempt := 0; ; attempt++ {
		out.Attempts = attempt + 1
		if w.sess == nil {
			if terminal := w.connect(ctx, &out, attempt); terminal != nil {
				return out, terminal
			}
			if w.sess == nil {
				// Connect failed but is worth another attempt.
				if !w.backoff(ctx, attempt) {
					fail(&out, skuld.ErrPassTimeout)
					return out, skuld.ErrPassTimeout
				}
				continue
			}
		}
		resp, err := w.sess.Exec(ctx, spec.Command, w.opts.CommandTimeout)
		if err == nil {
			recs, perr := parse.Parse(resp, spec.Class, w.nf)
			if perr != nil {
				// The data arrived; retrying won't change the format.
				fail(&out, perr)
				return out, nil
			}
			out.Status = skuld.CmdOK
			out.Records = recs
			return out, nil
		}
		if errors.Is(err, skuld.ErrPassTimeout) || ctx.Err() != nil {
			fail(&out, skuld.ErrPassTimeout)
			return out, skuld.ErrPassTimeout
		}
		var te *skuld.TransportError
		if errors.As(err, &te) && te.Kind == skuld.SessionBroken {
			// The transport said the session is gone. Drop it; a retry
			// will dial a fresh one.
			w.sess.Finalize()
			w.sess = nil
		}
		if !skuld.Retryable(err) {
			fail(&out, err)
			return out, nil
		}
		if attempt >= w.opts.Retries {
			fail(&out, err)
			return out, nil
		}
		skuld.Debugf("%s - %s failed (%s), retry %d/%d", w.dev.Name, spec.Name,
			skuld.ErrClass(err), attempt+1, w.opts.Retries)
		if !w.backoff(ctx, attempt) {
			fail(&out, skuld.ErrPassTimeout)
			return out, skuld.ErrPassTimeout
		}
	}
}

// connect establishes the session. Auth rejection is terminal for the
// device immediately; other dial failures consume the retry budget and
// become terminal once it is spent, since the remaining commands need the
// same connection.
func (w *worker) connect(ctx context.Context, out *skuld.Outcome, attempt int) error {
	sess, err := w.opts.Dial(ctx, w.dev, w.cred)
	if err == nil {
		w.sess = sess
		return nil
	}
	if ctx.Err() != nil {
		fail(out, skuld.ErrPassTimeout)
		return skuld.ErrPassTimeout
	}
	var te *skuld.TransportError
	if errors.As(err, &te) && te.Kind == skuld.AuthFailed {
		fail(out, err)
		return err
	}
	if attempt >= w.opts.Retries {
		fail(out, err)
		return err
	}
	skuld.Debugf("%s - connect failed (%s), retry %d/%d", w.dev.Name,
		skuld.ErrClass(err), attempt+1, w.opts.Retries)
	return nil
}

// backoff sleeps the exponential delay for the given attempt, bounded by
// the pass deadline. Returns false if the deadline fired first.
func (w *worker) backoff(ctx context.Context, attempt int) bool {
	d := w.opts.BackoffBase << uint(attempt)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func fail(out *skuld.Outcome, err error) {
	out.Status = skuld.CmdFailed
	out.Err = skuld.ErrClass(err)
}

// skipFrom marks the remaining commands as skipped with the terminating
// reason, preserving an audit row per command.
func skipFrom(res *skuld.DeviceResult, rest []skuld.CommandSpec, reason string) {
	for _, spec := range rest {
		res.Outcomes = append(res.Outcomes, skuld.Outcome{
			Spec:   spec,
			Status: skuld.CmdSkipped,
			Err:    reason,
		})
	}
	if res.Err == "" {
		res.Err = reason
	}
}
