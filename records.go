/*
 * skuld metric records
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
	"strings"
	"time"
)

// HardwareComponent is one row of chassis hardware inventory: a chassis,
// line card, PIC, fan tray and so on. Keyed by device+item.
type HardwareComponent struct {
	Device      string    `json:"device"`
	Time        time.Time `json:"time"`
	Item        string    `json:"item"`
	Version     string    `json:"version,omitempty"`
	PartNumber  string    `json:"part_number,omitempty"`
	Serial      string    `json:"serial,omitempty"`
	Description string    `json:"description,omitempty"`
}

// UtilizationSample is one resource measurement for one component, e.g.
// CPU or heap for an FPC slot. Ratio is Used/Capacity clamped to [0,1].
// Applicable is false when the capacity is zero or the slot is empty, in
// which case Ratio carries no meaning.
type UtilizationSample struct {
	Device     string    `json:"device"`
	Time       time.Time `json:"time"`
	Component  string    `json:"component"`
	Resource   string    `json:"resource"`
	State      string    `json:"state,omitempty"`
	TempC      int       `json:"temp_c,omitempty"`
	Used       float64   `json:"used"`
	Capacity   float64   `json:"capacity"`
	Ratio      float64   `json:"ratio"`
	Applicable bool      `json:"applicable"`
}

// Ratio computes used/capacity clamped to [0,1]. A zero capacity yields
// not-applicable rather than a division fault.
func Ratio(used, capacity float64) (float64, bool) {
	if capacity == 0 {
		return 0, false
	}
	r := used / capacity
	if r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}
	return r, true
}

// PortState classifies a port from its raw state and error counters.
type PortState int

const (
	PortDown PortState = iota
	PortDegraded
	PortUp
)

func (p PortState) String() string {
	switch p {
	case PortUp:
		return "up"
	case PortDown:
		return "down"
	case PortDegraded:
		return "degraded"
	default:
		return "invalid"
	}
}

func (p PortState) MarshalJSON() ([]byte, error) {
	return []byte("\"" + p.String() + "\""), nil
}

// PortStatus is one row of port state. Keyed by device+port.
type PortStatus struct {
	Device    string    `json:"device"`
	Time      time.Time `json:"time"`
	Port      string    `json:"port"`
	Admin     string    `json:"admin"`
	Oper      string    `json:"oper"`
	InErrors  uint64    `json:"in_errors"`
	OutErrors uint64    `json:"out_errors"`
	State     PortState `json:"state"`
}

// ClassifyPort derives the port state: down beats everything, errors on a
// live port mean degraded.
func ClassifyPort(admin, oper string, inErrors, outErrors uint64) PortState {
	if !strings.EqualFold(oper, "up") || !strings.EqualFold(admin, "up") {
		return PortDown
	}
	if inErrors > 0 || outErrors > 0 {
		return PortDegraded
	}
	return PortUp
}

// Severity of an alarm. Ordered so a descending sort puts the worst
// first. Unknown sorts last but is never dropped: an alarm we can't
// classify is still an alarm.
type Severity int

const (
	SevUnknown Severity = iota
	SevInfo
	SevWarning
	SevMinor
	SevMajor
	SevCritical
)

var severities = map[string]Severity{
	"critical": SevCritical,
	"major":    SevMajor,
	"minor":    SevMinor,
	"warning":  SevWarning,
	"info":     SevInfo,
}

// ParseSeverity maps a device severity string through a fixed lookup.
// Anything unrecognized maps to SevUnknown.
func ParseSeverity(s string) Severity {
	return severities[strings.ToLower(strings.TrimSpace(s))]
}

func (s Severity) String() string {
	switch s {
	case SevCritical:
		return "critical"
	case SevMajor:
		return "major"
	case SevMinor:
		return "minor"
	case SevWarning:
		return "warning"
	case SevInfo:
		return "info"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte("\"" + s.String() + "\""), nil
}

// AlarmEvent is one active alarm. Raised is the device's own timestamp
// for the alarm, Time is when we captured it.
type AlarmEvent struct {
	Device      string    `json:"device"`
	Time        time.Time `json:"time"`
	Raised      time.Time `json:"raised"`
	Severity    Severity  `json:"severity"`
	RawSeverity string    `json:"raw_severity"`
	Description string    `json:"description"`
}

// Records holds the typed output of parsing, one slice per record kind.
// Immutable once handed off by the worker.
type Records struct {
	Hardware    []HardwareComponent `json:"hardware,omitempty"`
	Utilization []UtilizationSample `json:"utilization,omitempty"`
	Ports       []PortStatus        `json:"ports,omitempty"`
	Alarms      []AlarmEvent        `json:"alarms,omitempty"`
}

func (r *Records) Len() int {
	return len(r.Hardware) + len(r.Utilization) + len(r.Ports) + len(r.Alarms)
}

func (r *Records) Append(o Records) {
	r.Hardware = append(r.Hardware, o.Hardware...)
	r.Utilization = append(r.Utilization, o.Utilization...)
	r.Ports = append(r.Ports, o.Ports...)
	r.Alarms = append(r.Alarms, o.Alarms...)
}
