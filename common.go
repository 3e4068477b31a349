/*
 * skuld common types
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
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Device is one polling target. It is immutable for the duration of a
// pass. Commands can name a subset of the command catalog, overriding the
// default of running everything.
type Device struct {
	Name     string   // Logical name, used for locking and reporting
	Addr     string   // IP address or resolvable hostname
	Port     int      // 0 means the configured default
	User     string   `json:",omitempty"` // Per-device user override
	Commands []string `json:",omitempty"` // Catalog subset, blank == all
}

func (d Device) String() string {
	return d.Name
}

// Credential is a transport-layer secret, looked up per device. The
// String method exists so a stray %v never lands a password in a log.
type Credential struct {
	User     string
	Password string
}

func (c Credential) String() string {
	return c.User + ":<redacted>"
}

// CredentialSource is an opaque lookup keyed by device identity. The
// config accidentally implements it, but anything can.
type CredentialSource interface {
	Lookup(d Device) (Credential, error)
}

// Class is the command classification: it decides which parser handles
// the output of a command.
type Class int

const (
	Hardware    Class = iota // Chassis hardware inventory
	Utilization              // Line card CPU/memory utilization
	Port                     // Port state and error counters
	Alarm                    // Active chassis alarms
)

func (c Class) String() string {
	switch c {
	case Hardware:
		return "hardware"
	case Utilization:
		return "utilization"
	case Port:
		return "port"
	case Alarm:
		return "alarm"
	default:
		return "invalid"
	}
}

func (c *Class) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.ToLower(s)
	switch s {
	case "hardware":
		*c = Hardware
	case "utilization":
		*c = Utilization
	case "port":
		*c = Port
	case "alarm":
		*c = Alarm
	default:
		return fmt.Errorf("invalid class: %s", s)
	}
	return nil
}

func (c Class) MarshalJSON() ([]byte, error) {
	if c < Hardware || c > Alarm {
		return []byte("\"\""), fmt.Errorf("invalid class %d!", c)
	}
	return []byte("\"" + c.String() + "\""), nil
}

// CommandSpec is one entry in the static command catalog: a named command
// and the classification that picks its parser. Not mutated at runtime.
type CommandSpec struct {
	Name    string
	Command string
	Class   Class
}

// DefaultCatalog returns the built-in command catalog, in execution
// order. The commands are the Juniper-style show-commands the parsers
// understand.
func DefaultCatalog() []CommandSpec {
	return []CommandSpec{
		{Name: "hardware", Command: "show chassis hardware", Class: Hardware},
		{Name: "fpc", Command: "show chassis fpc", Class: Utilization},
		{Name: "ports", Command: "show interfaces summary", Class: Port},
		{Name: "alarms", Command: "show chassis alarms", Class: Alarm},
	}
}

// RawResponse is the captured output of one command on one device. It is
// produced by the session layer, handed to a parser exactly once and then
// discarded.
type RawResponse struct {
	Device  Device
	Command string
	Text    string
	When    time.Time
	Elapsed time.Duration
}

// Execer is an established session capable of running commands. It's
// defined up here, rather than in the session package, to avoid circular
// dependencies: the fleet package drives it, the session package
// implements it, and tests fake it.
type Execer interface {
	Exec(ctx context.Context, command string, timeout time.Duration) (RawResponse, error)
	Finalize()
}

// Dialer opens a session against one device. One dial, one network
// connection, held for the lifetime of the worker that dialed it.
type Dialer func(ctx context.Context, d Device, cred Credential) (Execer, error)
