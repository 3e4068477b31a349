/*
 * skuld documentation-dummy
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
Package skuld is a library and toolset for collecting hardware and
utilization inventory from large amounts of network devices over regular
command-line sessions.

One invocation is one bounded pass: a fleet of devices is polled
concurrently, each device runs through a fixed catalog of show-commands,
the output is parsed into typed records and everything is merged into a
single snapshot. The snapshot is reported using Skogul, and optionally
published to a message broker.
*/
package skuld
