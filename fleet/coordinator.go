/*
 * skuld fleet coordinator
 *
 * Copyright (c) 2023 Telenor Norge AS
 * Author(s):
 *  - Kristian Lyngstøl <kly@kly.no>
 *
 * This library is free software; you can redistribute it and/or
 * modify it under the terms of the GNU Lesser General Public
 * License as published by the Free Software Foundation; either
 * version 2.1 of the License, or (at your option) any later version.
 *
 * This library is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public
 * License along with this library; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
 * 02110-1301  USA
 */

/*
Package fleet fans device workers out across the device list and collects
exactly one result per device. Admission is first-in-first-out under a
bounded concurrency cap; failure isolation is per device. The only way a
pass fails outright is a configuration problem caught before any worker
starts.
*/
package fleet

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/telenornms/skuld"
	"github.com/telenornms/skuld/inventory"
	"github.com/telenornms/skuld/parse"
	"github.com/telenornms/skuld/session"
)

// Options controls one pass. Zero values are filled in from the global
// config, so the common case is just Creds.
type Options struct {
	Concurrency    int
	Retries        int
	BackoffBase    time.Duration
	CommandTimeout time.Duration
	PassTimeout    time.Duration
	Locale         string
	Creds          skuld.CredentialSource
	Dial           skuld.Dialer // Defaults to the SSH session dialer
}

func (o *Options) defaults() {
	if o.Concurrency == 0 {
		o.Concurrency = skuld.Config.Workers
	}
	if o.Retries == 0 {
		o.Retries = skuld.Config.Retries
	}
	if o.BackoffBase == 0 {
		o.BackoffBase = skuld.Config.BackoffBase
	}
	if o.CommandTimeout == 0 {
		o.CommandTimeout = skuld.Config.CommandTimeout
	}
	if o.PassTimeout == 0 {
		o.PassTimeout = skuld.Config.PassTimeout
	}
	if o.Locale == "" {
		o.Locale = skuld.Config.Locale
	}
	if o.Dial == nil {
		o.Dial = session.Dial
	}
}

// Run performs one bounded polling pass and materializes the snapshot
// only after every worker has terminated. Workers write to private result
// slots; no partial snapshot is ever exposed.
func Run(ctx context.Context, devices []skuld.Device, specs []skuld.CommandSpec, opts Options) (*inventory.Snapshot, error) {
	opts.defaults()
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: empty device list", skuld.ErrConfig)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: empty command catalog", skuld.ErrConfig)
	}
	if opts.Creds == nil {
		return nil, fmt.Errorf("%w: no credential source", skuld.ErrConfig)
	}
	if opts.Concurrency < 1 {
		return nil, fmt.Errorf("%w: concurrency %d", skuld.ErrConfig, opts.Concurrency)
	}

	started := time.Now()
	if opts.PassTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.PassTimeout)
		defer cancel()
	}
	nf := parse.FormatFor(opts.Locale)

	sem := semaphore.NewWeighted(int64(opts.Concurrency))
	results := make([]skuld.DeviceResult, len(devices))
	var wg sync.WaitGroup
	for i, dev := range devices {
		cat := catalogFor(dev, specs)
		// Acquiring here, in input order, is what makes admission FIFO.
		if err := sem.Acquire(ctx, 1); err != nil {
			// Pass deadline expired while this device was queued.
			results[i] = skippedResult(dev, cat, skuld.ErrClass(skuld.ErrPassTimeout))
			continue
		}
		wg.Add(1)
		go func(i int, dev skuld.Device, cat []skuld.CommandSpec) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = poll(ctx, dev, cat, opts, nf)
		}(i, dev, cat)
	}
	wg.Wait()

	snap := inventory.Aggregate(uuid.NewString(), results)
	snap.Started = started
	snap.Finished = time.Now()
	return snap, nil
}

// poll runs one device worker under the host lock and logs the verdict.
func poll(ctx context.Context, dev skuld.Device, specs []skuld.CommandSpec, opts Options, nf parse.NumberFormat) skuld.DeviceResult {
	if err := lockTarget(dev.Addr); err != nil {
		skuld.Logf("%-15s SKIP duplicate target %s", dev.Name, dev.Addr)
		return skippedResult(dev, specs, "duplicate-target")
	}
	defer unlockTarget(dev.Addr)

	cred, err := opts.Creds.Lookup(dev)
	if err != nil {
		skuld.Logf("%-15s FAIL no credentials: %s", dev.Name, err)
		return skippedResult(dev, specs, skuld.ErrClass(err))
	}

	w := worker{dev: dev, specs: specs, opts: opts, cred: cred, nf: nf}
	res := w.run(ctx)
	verdict := strings.ToUpper(res.Status.String())
	if res.Status == skuld.StatusFull {
		verdict = "OK"
	}
	skuld.Logf("%-15s %s %s", dev.Name, verdict, res.Elapsed.Round(time.Millisecond*10))
	return res
}

// catalogFor filters the catalog down to a device's declared subset,
// preserving catalog order. No subset means the whole catalog.
func catalogFor(dev skuld.Device, specs []skuld.CommandSpec) []skuld.CommandSpec {
	if len(dev.Commands) == 0 {
		return specs
	}
	want := make(map[string]bool, len(dev.Commands))
	for _, n := range dev.Commands {
		want[n] = true
	}
	out := make([]skuld.CommandSpec, 0, len(dev.Commands))
	for _, s := range specs {
		if want[s.Name] {
			out = append(out, s)
		}
	}
	return out
}

// skippedResult builds a failed result where nothing ran at all, with an
// audit row per command.
func skippedResult(dev skuld.Device, specs []skuld.CommandSpec, reason string) skuld.DeviceResult {
	res := skuld.DeviceResult{
		Device:  dev,
		Started: time.Now(),
		Err:     reason,
	}
	for _, spec := range specs {
		res.Outcomes = append(res.Outcomes, skuld.Outcome{
			Spec:   spec,
			Status: skuld.CmdSkipped,
			Err:    reason,
		})
	}
	res.Classify()
	return res
}
