/*
 * skuld error taxonomy
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
	"errors"
	"fmt"
	"strings"
)

// ErrConfig marks a fleet-level configuration problem detected before
// any worker starts. It is the only error class that aborts a whole pass.
var ErrConfig = errors.New("invalid configuration")

// ErrPassTimeout marks work cancelled by the pass-level deadline. It is a
// cancellation marker, not a device fault.
var ErrPassTimeout = errors.New("pass deadline exceeded")

// TransportKind classifies transport failures. The kind decides retry
// behavior, so get it right rather than close.
type TransportKind int

const (
	Unreachable    TransportKind = iota // Connect failed or timed out
	AuthFailed                          // Credentials rejected, never retried
	ProtocolFailed                      // Handshake broke down
	CommandTimeout                      // No response in time, session still usable
	SessionBroken                       // Connection is gone, do not reuse
)

func (k TransportKind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case AuthFailed:
		return "auth-failed"
	case ProtocolFailed:
		return "protocol-failed"
	case CommandTimeout:
		return "command-timeout"
	case SessionBroken:
		return "session-broken"
	default:
		return "invalid"
	}
}

// TransportError is any failure between us and the device.
type TransportError struct {
	Kind TransportKind
	Op   string // "dial", "exec", ...
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func Transport(kind TransportKind, op string, err error) *TransportError {
	return &TransportError{Kind: kind, Op: op, Err: err}
}

// ParseError means the output arrived but matched none of the known line
// shapes. Retrying won't change the format, so it is never retried.
// Sample carries the first few lines for the audit trail.
type ParseError struct {
	Reason string
	Sample []string
}

func (e *ParseError) Error() string {
	if len(e.Sample) == 0 {
		return fmt.Sprintf("parse: %s", e.Reason)
	}
	return fmt.Sprintf("parse: %s (sample: %s)", e.Reason, strings.Join(e.Sample, " | "))
}

// Retryable reports whether an error is worth another attempt: command
// timeouts and broken sessions are, everything else is not.
func Retryable(err error) bool {
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	return te.Kind == CommandTimeout || te.Kind == SessionBroken
}

// ErrClass renders an error as a stable classification string for
// per-command audit rows.
func ErrClass(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrPassTimeout) {
		return "pass-timeout"
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind.String()
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return "parse"
	}
	if errors.Is(err, ErrConfig) {
		return "config"
	}
	return "other"
}
