/*
 * skuld per-device results
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

package skuld

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CmdStatus is the outcome of one command on one device.
type CmdStatus int

const (
	CmdOK      CmdStatus = iota
	CmdFailed            // Exhausted retries, or a non-retryable error
	CmdSkipped           // Never attempted: terminal failure or cancellation earlier in the sequence
)

func (s CmdStatus) String() string {
	switch s {
	case CmdOK:
		return "ok"
	case CmdFailed:
		return "failed"
	case CmdSkipped:
		return "skipped"
	default:
		return "invalid"
	}
}

func (s CmdStatus) MarshalJSON() ([]byte, error) {
	return []byte("\"" + s.String() + "\""), nil
}

func (s *CmdStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	switch strings.ToLower(str) {
	case "ok":
		*s = CmdOK
	case "failed":
		*s = CmdFailed
	case "skipped":
		*s = CmdSkipped
	default:
		return fmt.Errorf("invalid command status: %s", str)
	}
	return nil
}

// Outcome is the audit row for one command: what ran, how often, what
// came out of it.
type Outcome struct {
	Spec     CommandSpec   `json:"spec"`
	Status   CmdStatus     `json:"status"`
	Err      string        `json:"error,omitempty"` // Error classification, blank on success
	Attempts int           `json:"attempts"`
	Elapsed  time.Duration `json:"elapsed"`
	Records  Records       `json:"records,omitempty"`
}

// Status is the overall outcome for one device.
type Status int

const (
	StatusFailed  Status = iota // No command produced records
	StatusPartial               // Some did, some didn't
	StatusFull                  // Every command produced records
)

func (s Status) String() string {
	switch s {
	case StatusFull:
		return "full"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	default:
		return "invalid"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return []byte("\"" + s.String() + "\""), nil
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	switch strings.ToLower(str) {
	case "full":
		*s = StatusFull
	case "partial":
		*s = StatusPartial
	case "failed":
		*s = StatusFailed
	default:
		return fmt.Errorf("invalid device status: %s", str)
	}
	return nil
}

// DeviceResult is the outcome of polling one device: exactly one per
// device per pass, never less, never more.
type DeviceResult struct {
	Device      Device        `json:"device"`
	Status      Status        `json:"status"`
	Outcomes    []Outcome     `json:"outcomes"`
	Err         string        `json:"error,omitempty"` // Classification of the terminating error, if any
	LastCommand string        `json:"last_command,omitempty"`
	Started     time.Time     `json:"started"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Classify recomputes the device status from the command outcomes.
func (r *DeviceResult) Classify() {
	ok := 0
	for _, o := range r.Outcomes {
		if o.Status == CmdOK {
			ok++
		}
	}
	switch {
	case len(r.Outcomes) > 0 && ok == len(r.Outcomes):
		r.Status = StatusFull
	case ok > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusFailed
	}
}

// Records flattens all successful command output for the device.
func (r *DeviceResult) Records() Records {
	var recs Records
	for _, o := range r.Outcomes {
		recs.Append(o.Records)
	}
	return recs
}
