/*
 * skuld core type tests
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

package skuld_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telenornms/skuld"
)

func TestRatio(t *testing.T) {
	r, ok := skuld.Ratio(80, 100)
	assert.True(t, ok)
	assert.InDelta(t, 0.80, r, 0.0001)

	r, ok = skuld.Ratio(150, 100)
	assert.True(t, ok)
	assert.InDelta(t, 1.0, r, 0.0001, "ratio is clamped to [0,1]")

	_, ok = skuld.Ratio(80, 0)
	assert.False(t, ok, "zero capacity is not applicable, never a fault")
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, skuld.SevMajor, skuld.ParseSeverity("Major"))
	assert.Equal(t, skuld.SevCritical, skuld.ParseSeverity(" critical "))
	assert.Equal(t, skuld.SevUnknown, skuld.ParseSeverity("Wobbly"))
	assert.Greater(t, skuld.SevCritical, skuld.SevMajor)
	assert.Greater(t, skuld.SevInfo, skuld.SevUnknown)
}

func TestClassifyPort(t *testing.T) {
	assert.Equal(t, skuld.PortUp, skuld.ClassifyPort("up", "up", 0, 0))
	assert.Equal(t, skuld.PortDown, skuld.ClassifyPort("up", "down", 0, 0))
	assert.Equal(t, skuld.PortDown, skuld.ClassifyPort("down", "down", 0, 0))
	assert.Equal(t, skuld.PortDegraded, skuld.ClassifyPort("up", "up", 3, 0))
	assert.Equal(t, skuld.PortDegraded, skuld.ClassifyPort("Up", "Up", 0, 9))
}

func TestClassJSON(t *testing.T) {
	for _, c := range []skuld.Class{skuld.Hardware, skuld.Utilization, skuld.Port, skuld.Alarm} {
		b, err := json.Marshal(c)
		require.NoError(t, err)
		var back skuld.Class
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, c, back)
	}
	var c skuld.Class
	assert.Error(t, json.Unmarshal([]byte(`"frobnitz"`), &c))
}

func TestResultClassify(t *testing.T) {
	res := skuld.DeviceResult{Outcomes: []skuld.Outcome{
		{Status: skuld.CmdOK},
		{Status: skuld.CmdOK},
	}}
	res.Classify()
	assert.Equal(t, skuld.StatusFull, res.Status)

	res.Outcomes = append(res.Outcomes, skuld.Outcome{Status: skuld.CmdFailed})
	res.Classify()
	assert.Equal(t, skuld.StatusPartial, res.Status)

	res.Outcomes = []skuld.Outcome{{Status: skuld.CmdFailed}, {Status: skuld.CmdSkipped}}
	res.Classify()
	assert.Equal(t, skuld.StatusFailed, res.Status)

	res.Outcomes = nil
	res.Classify()
	assert.Equal(t, skuld.StatusFailed, res.Status)
}

func TestErrClass(t *testing.T) {
	assert.Equal(t, "", skuld.ErrClass(nil))
	assert.Equal(t, "auth-failed", skuld.ErrClass(skuld.Transport(skuld.AuthFailed, "handshake", errors.New("nope"))))
	assert.Equal(t, "command-timeout", skuld.ErrClass(skuld.Transport(skuld.CommandTimeout, "exec", nil)))
	assert.Equal(t, "parse", skuld.ErrClass(&skuld.ParseError{Reason: "no records matched"}))
	assert.Equal(t, "pass-timeout", skuld.ErrClass(skuld.ErrPassTimeout))
	assert.Equal(t, "other", skuld.ErrClass(errors.New("wat")))
}

func TestRetryable(t *testing.T) {
	assert.True(t, skuld.Retryable(skuld.Transport(skuld.CommandTimeout, "exec", nil)))
	assert.True(t, skuld.Retryable(skuld.Transport(skuld.SessionBroken, "exec", nil)))
	assert.False(t, skuld.Retryable(skuld.Transport(skuld.AuthFailed, "handshake", nil)))
	assert.False(t, skuld.Retryable(&skuld.ParseError{Reason: "no records matched"}))
	assert.False(t, skuld.Retryable(nil))
}

func TestCredentialNeverLogsSecrets(t *testing.T) {
	c := skuld.Credential{User: "poller", Password: "hunter2"}
	assert.NotContains(t, c.String(), "hunter2")
}

func TestParseConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "skuld.toml")
	body := `
Workers = 4
Retries = 1
Locale = "nb"
DefaultUser = "poller"
CommandTimeout = 5000000000

[Credentials]
[Credentials."lab-switch"]
User = "lab"
Password = "labpw"
`
	require.NoError(t, os.WriteFile(file, []byte(body), 0644))

	old := skuld.Config
	defer func() { skuld.Config = old }()

	require.NoError(t, skuld.ParseConfig(file))
	assert.Equal(t, 4, skuld.Config.Workers)
	assert.Equal(t, 1, skuld.Config.Retries)
	assert.Equal(t, "nb", skuld.Config.Locale)
	assert.Equal(t, 5*time.Second, skuld.Config.CommandTimeout)

	cred, err := skuld.Config.Lookup(skuld.Device{Name: "lab-switch", Addr: "192.0.2.9"})
	require.NoError(t, err)
	assert.Equal(t, "lab", cred.User)

	cred, err = skuld.Config.Lookup(skuld.Device{Name: "other", Addr: "192.0.2.10"})
	require.NoError(t, err)
	assert.Equal(t, "poller", cred.User)

	assert.Error(t, skuld.ParseConfig(filepath.Join(dir, "missing.toml")))
}

func TestLookupNoCredentials(t *testing.T) {
	old := skuld.Config
	defer func() { skuld.Config = old }()
	skuld.Config.DefaultUser = ""
	skuld.Config.Credentials = nil

	_, err := skuld.Config.Lookup(skuld.Device{Name: "r1"})
	assert.ErrorIs(t, err, skuld.ErrConfig)
}

func TestDefaultCatalogOrder(t *testing.T) {
	cat := skuld.DefaultCatalog()
	require.Len(t, cat, 4)
	assert.Equal(t, skuld.Hardware, cat[0].Class)
	assert.Equal(t, skuld.Utilization, cat[1].Class)
	assert.Equal(t, skuld.Port, cat[2].Class)
	assert.Equal(t, skuld.Alarm, cat[3].Class)
	for _, spec := range cat {
		assert.NotEmpty(t, spec.Name)
		assert.NotEmpty(t, spec.Command)
	}
}
