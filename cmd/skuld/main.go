/*
 * skuld polling pass
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

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/telenornms/skuld"
	"github.com/telenornms/skuld/fleet"
	"github.com/telenornms/skuld/report"
)

func main() {
	var configFile string
	var deviceFile string
	var dryRun bool
	flag.BoolVar(&skuld.Config.Debug, "debug", false, "enable debug")
	flag.StringVar(&configFile, "f", "/etc/skuld/skuld.toml", "skuld config file")
	flag.StringVar(&deviceFile, "devices", "", "device list file, one name,address[,user] per line")
	flag.BoolVar(&dryRun, "dry-run", false, "print the JSON snapshot instead of sending it")
	flag.Parse()

	if err := skuld.ParseConfig(configFile); err != nil {
		skuld.Fatalf("Couldn't parse config: %s", err)
	}
	skuld.Init()
	skuld.Debugf("Read config file: %s", configFile)

	if deviceFile == "" {
		skuld.Fatalf("no device list supplied, use -devices")
	}
	devices, err := readDevices(deviceFile)
	if err != nil {
		skuld.Fatalf("Couldn't read device list: %s", err)
	}
	skuld.Logf("Polling %d devices with %d workers", len(devices), skuld.Config.Workers)

	start := time.Now()
	snap, err := fleet.Run(context.Background(), devices, skuld.DefaultCatalog(), fleet.Options{
		Creds: &skuld.Config,
	})
	if err != nil {
		skuld.Fatalf("pass failed: %s", err)
	}
	skuld.Logf("Pass %s done in %s: %d hardware rows, %d utilization samples, %d ports, %d alarms",
		snap.ID, time.Since(start).Round(time.Millisecond*10),
		len(snap.Hardware), len(snap.Utilization), len(snap.Ports), len(snap.Alarms))

	if dryRun {
		b, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			skuld.Fatalf("snapshot json marshal: %s", err)
		}
		fmt.Println(string(b))
		return
	}

	if skuld.Config.OutputConfig != "" {
		sender, err := report.NewSender(skuld.Config.OutputConfig)
		if err != nil {
			skuld.Fatalf("Couldn't set up report sender: %s", err)
		}
		if err := sender.Send(snap); err != nil {
			skuld.Logf("Report send failed: %s", err)
		}
	}
	if skuld.Config.Broker != "" {
		if err := report.Publish(skuld.Config.Broker, skuld.Config.Queue, snap); err != nil {
			skuld.Logf("Snapshot publish failed: %s", err)
		}
	}
}

// readDevices parses the device list: one device per line as
// name,address[,user], or just an address. Blank lines and #-comments are
// skipped.
func readDevices(file string) ([]skuld.Device, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var devices []skuld.Device
	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		d := skuld.Device{Name: parts[0], Addr: parts[0]}
		if len(parts) > 1 && parts[1] != "" {
			d.Addr = parts[1]
		}
		if len(parts) > 2 {
			d.User = parts[2]
		}
		if d.Name == "" {
			return nil, fmt.Errorf("%s:%d: blank device name", file, lineno)
		}
		devices = append(devices, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}
