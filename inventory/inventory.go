/*
 * skuld inventory aggregation
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
Package inventory merges per-device results into the cross-device tables
of one fleet snapshot. It runs strictly after every worker has
terminated, single-threaded over the collected results, so it needs no
locking and is deterministic for a given result set: row order comes from
sorting, never from completion timing.
*/
package inventory

import (
	"sort"
	"time"

	"github.com/telenornms/skuld"
)

// SummaryRow is the per-device audit row for the report's summary sheet.
type SummaryRow struct {
	Device      string        `json:"device"`
	Addr        string        `json:"addr"`
	Status      skuld.Status  `json:"status"`
	OK          int           `json:"ok"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	Err         string        `json:"error,omitempty"`
	LastCommand string        `json:"last_command,omitempty"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Snapshot is the aggregated, point-in-time view of one pass. Built
// once, handed off to the report layer, never mutated again.
type Snapshot struct {
	ID          string                    `json:"id"`
	Started     time.Time                 `json:"started"`
	Finished    time.Time                 `json:"finished"`
	Results     []skuld.DeviceResult      `json:"results"`
	Summary     []SummaryRow              `json:"summary"`
	Hardware    []skuld.HardwareComponent `json:"hardware"`
	Utilization []skuld.UtilizationSample `json:"utilization"`
	Ports       []skuld.PortStatus        `json:"ports"`
	Alarms      []skuld.AlarmEvent        `json:"alarms"`
}

// Aggregate builds the snapshot tables from a full set of device
// results. Hardware and port rows are keyed (device+item, device+port);
// a component reported twice within one pass keeps the later sample.
func Aggregate(id string, results []skuld.DeviceResult) *Snapshot {
	snap := &Snapshot{ID: id}
	snap.Results = append(snap.Results, results...)
	sort.SliceStable(snap.Results, func(i, j int) bool {
		return snap.Results[i].Device.Name < snap.Results[j].Device.Name
	})

	hw := map[string]skuld.HardwareComponent{}
	ports := map[string]skuld.PortStatus{}
	for _, res := range snap.Results {
		recs := res.Records()
		for _, h := range recs.Hardware {
			key := h.Device + "\x00" + h.Item
			if old, ok := hw[key]; !ok || h.Time.After(old.Time) {
				hw[key] = h
			}
		}
		for _, p := range recs.Ports {
			key := p.Device + "\x00" + p.Port
			if old, ok := ports[key]; !ok || p.Time.After(old.Time) {
				ports[key] = p
			}
		}
		snap.Utilization = append(snap.Utilization, recs.Utilization...)
		snap.Alarms = append(snap.Alarms, recs.Alarms...)
		snap.Summary = append(snap.Summary, summarize(res))
	}

	for _, h := range hw {
		snap.Hardware = append(snap.Hardware, h)
	}
	sort.Slice(snap.Hardware, func(i, j int) bool {
		a, b := snap.Hardware[i], snap.Hardware[j]
		if a.Device != b.Device {
			return a.Device < b.Device
		}
		return a.Item < b.Item
	})

	for _, p := range ports {
		snap.Ports = append(snap.Ports, p)
	}
	sort.Slice(snap.Ports, func(i, j int) bool {
		a, b := snap.Ports[i], snap.Ports[j]
		if a.Device != b.Device {
			return a.Device < b.Device
		}
		return a.Port < b.Port
	})

	sort.SliceStable(snap.Utilization, func(i, j int) bool {
		a, b := snap.Utilization[i], snap.Utilization[j]
		if a.Device != b.Device {
			return a.Device < b.Device
		}
		if a.Applicable != b.Applicable {
			return a.Applicable
		}
		if a.Ratio != b.Ratio {
			return a.Ratio > b.Ratio
		}
		if a.Component != b.Component {
			return a.Component < b.Component
		}
		return a.Resource < b.Resource
	})

	sort.SliceStable(snap.Alarms, func(i, j int) bool {
		a, b := snap.Alarms[i], snap.Alarms[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if !a.Raised.Equal(b.Raised) {
			return a.Raised.After(b.Raised)
		}
		if a.Device != b.Device {
			return a.Device < b.Device
		}
		return a.Description < b.Description
	})

	return snap
}

func summarize(res skuld.DeviceResult) SummaryRow {
	row := SummaryRow{
		Device:      res.Device.Name,
		Addr:        res.Device.Addr,
		Status:      res.Status,
		Err:         res.Err,
		LastCommand: res.LastCommand,
		Elapsed:     res.Elapsed,
	}
	for _, o := range res.Outcomes {
		switch o.Status {
		case skuld.CmdOK:
			row.OK++
		case skuld.CmdFailed:
			row.Failed++
		case skuld.CmdSkipped:
			row.Skipped++
		}
	}
	return row
}
