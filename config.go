/*
 * skuld config
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
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

type conf struct {
	Workers         int
	Debug           bool
	Retries         int
	BackoffBase     time.Duration
	ConnectTimeout  time.Duration
	CommandTimeout  time.Duration
	PassTimeout     time.Duration
	Locale          string
	Port            int
	DefaultUser     string
	DefaultPassword string
	Credentials     map[string]Credential
	Broker          string
	Queue           string
	OutputConfig    string
}

var Config conf = conf{
	Workers:        10,
	Debug:          true,
	Retries:        2,
	BackoffBase:    time.Millisecond * 500,
	ConnectTimeout: time.Second * 10,
	CommandTimeout: time.Second * 30,
	Locale:         "en",
	Port:           22,
	Queue:          "skuld",
}

// ParseConfig reads a TOML config file on top of the defaults. A missing
// file is an error: if you point skuld at a config, it has to exist.
func ParseConfig(file string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := toml.Unmarshal(b, &Config); err != nil {
		return fmt.Errorf("config %s: %w", file, err)
	}
	return nil
}

// Lookup satisfies CredentialSource using the parsed configuration:
// per-host overrides keyed on device name or address, falling back to the
// fleet-wide default user.
func (c *conf) Lookup(d Device) (Credential, error) {
	if cred, ok := c.Credentials[d.Name]; ok {
		return cred, nil
	}
	if cred, ok := c.Credentials[d.Addr]; ok {
		return cred, nil
	}
	if d.User != "" {
		return Credential{User: d.User, Password: c.DefaultPassword}, nil
	}
	if c.DefaultUser == "" {
		return Credential{}, fmt.Errorf("%w: no credentials for %s", ErrConfig, d.Name)
	}
	return Credential{User: c.DefaultUser, Password: c.DefaultPassword}, nil
}
