package parse

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telenornms/skuld"
)

func resp(text string) skuld.RawResponse {
	return skuld.RawResponse{
		Device:  skuld.Device{Name: "r1", Addr: "192.0.2.1"},
		Command: "show something",
		Text:    text,
		When:    time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}
}

var en = FormatFor("en")

const hardwareOut = `Hardware inventory:
Item             Version  Part number  Serial number     Description
Chassis                                JN12345678AA      MX480
Routing Engine 0  REV 07   740-013063   1000745244        RE-S-2000
FPC 0             REV 28   750-031089   YL3974            MPC Type 2 3D

`

func TestParseHardware(t *testing.T) {
	recs, err := Parse(resp(hardwareOut), skuld.Hardware, en)
	require.NoError(t, err)
	require.Len(t, recs.Hardware, 3)

	assert.Equal(t, "Chassis", recs.Hardware[0].Item)
	assert.Equal(t, "JN12345678AA", recs.Hardware[0].Serial)
	assert.Equal(t, "MX480", recs.Hardware[0].Description)

	assert.Equal(t, "Routing Engine 0", recs.Hardware[1].Item)
	assert.Equal(t, "REV 07", recs.Hardware[1].Version)
	assert.Equal(t, "740-013063", recs.Hardware[1].PartNumber)

	assert.Equal(t, "FPC 0", recs.Hardware[2].Item)
	for _, h := range recs.Hardware {
		assert.Equal(t, "r1", h.Device)
		assert.False(t, h.Time.IsZero())
	}
}

func TestParseHardwareNoDescription(t *testing.T) {
	out := "Item             Version  Part number  Serial number     Description\n" +
		"Midplane          REV 07   710-017414   ABAA1234\n"
	recs, err := Parse(resp(out), skuld.Hardware, en)
	require.NoError(t, err)
	require.Len(t, recs.Hardware, 1)
	assert.Equal(t, "Midplane", recs.Hardware[0].Item)
	assert.Equal(t, "ABAA1234", recs.Hardware[0].Serial)
	assert.Empty(t, recs.Hardware[0].Description)
}

func TestParseNoRecordsMatched(t *testing.T) {
	out := "% Unknown command: show chassi hardware\nrouter> \n"
	_, err := Parse(resp(out), skuld.Hardware, en)
	require.Error(t, err)

	var pe *skuld.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "no records matched", pe.Reason)
	assert.Equal(t, []string{"% Unknown command: show chassi hardware", "router>"}, pe.Sample)
}

func TestParseEmptyResponse(t *testing.T) {
	for _, text := range []string{"", "   \n\n  \n"} {
		recs, err := Parse(resp(text), skuld.Hardware, en)
		require.NoError(t, err)
		assert.Zero(t, recs.Len())
	}
}

const fpcOut = `                     Temp  CPU Utilization (%)   Memory    Utilization (%)
Slot State            (C)  Total  Interrupt      DRAM (MB) Heap     Buffer
  0  Online            39     10          0       2048       14         21
  1  Empty
  2  Online            41      5          0          0       12         19
`

func TestParseFPC(t *testing.T) {
	recs, err := Parse(resp(fpcOut), skuld.Utilization, en)
	require.NoError(t, err)
	// Slot 0 and 2 yield cpu/heap/buffer, slot 1 a single empty-slot row.
	require.Len(t, recs.Utilization, 7)

	cpu := recs.Utilization[0]
	assert.Equal(t, "FPC 0", cpu.Component)
	assert.Equal(t, "cpu", cpu.Resource)
	assert.Equal(t, 39, cpu.TempC)
	assert.InDelta(t, 0.10, cpu.Ratio, 0.0001)
	assert.True(t, cpu.Applicable)

	heap := recs.Utilization[1]
	assert.Equal(t, "heap", heap.Resource)
	assert.InDelta(t, 0.14, heap.Ratio, 0.0001)
	assert.InDelta(t, 2048*0.14, heap.Used, 0.01)
	assert.InDelta(t, 2048, heap.Capacity, 0.01)

	empty := recs.Utilization[3]
	assert.Equal(t, "FPC 1", empty.Component)
	assert.Equal(t, "Empty", empty.State)
	assert.False(t, empty.Applicable)

	// Slot 2 reports zero DRAM: memory utilization is not applicable,
	// never a division fault.
	for _, s := range recs.Utilization[4:] {
		assert.Equal(t, "FPC 2", s.Component)
		if s.Resource != "cpu" {
			assert.False(t, s.Applicable)
			assert.Zero(t, s.Ratio)
		}
	}
}

func TestParseFPCLocale(t *testing.T) {
	out := "Slot State            (C)  Total  Interrupt      DRAM (MB) Heap     Buffer\n" +
		"  0  Online            39     10          0       1.024      50         25\n"
	recs, err := Parse(resp(out), skuld.Utilization, FormatFor("nb"))
	require.NoError(t, err)
	require.Len(t, recs.Utilization, 3)
	assert.InDelta(t, 1024, recs.Utilization[1].Capacity, 0.01)
	assert.InDelta(t, 512, recs.Utilization[1].Used, 0.01)
}

const portsOut = `Interface   Admin  Link  Input errors  Output errors
ge-0/0/0    up     up    0             0
ge-0/0/1    up     down  0             0
xe-0/1/0    up     up    1,204         7
`

func TestParsePorts(t *testing.T) {
	recs, err := Parse(resp(portsOut), skuld.Port, en)
	require.NoError(t, err)
	require.Len(t, recs.Ports, 3)

	assert.Equal(t, skuld.PortUp, recs.Ports[0].State)
	assert.Equal(t, skuld.PortDown, recs.Ports[1].State)

	degraded := recs.Ports[2]
	assert.Equal(t, skuld.PortDegraded, degraded.State)
	assert.Equal(t, uint64(1204), degraded.InErrors)
	assert.Equal(t, uint64(7), degraded.OutErrors)
}

const alarmsOut = `2 alarms currently active
Alarm time               Class  Description
2026-08-29 04:10:21 UTC  Major  PEM 0 Not Present
2026-08-28 11:02:03 UTC  Wobbly Fan Tray Failure
`

func TestParseAlarms(t *testing.T) {
	recs, err := Parse(resp(alarmsOut), skuld.Alarm, en)
	require.NoError(t, err)
	require.Len(t, recs.Alarms, 2)

	assert.Equal(t, skuld.SevMajor, recs.Alarms[0].Severity)
	assert.Equal(t, "PEM 0 Not Present", recs.Alarms[0].Description)
	assert.Equal(t, time.Date(2026, 8, 29, 4, 10, 21, 0, time.UTC), recs.Alarms[0].Raised)

	// Unknown severity strings are kept, never dropped.
	assert.Equal(t, skuld.SevUnknown, recs.Alarms[1].Severity)
	assert.Equal(t, "Wobbly", recs.Alarms[1].RawSeverity)
}

func TestParseNoAlarms(t *testing.T) {
	recs, err := Parse(resp("No alarms currently active\n"), skuld.Alarm, en)
	require.NoError(t, err)
	assert.Zero(t, recs.Len())
}

func TestNumberFormats(t *testing.T) {
	en := FormatFor("en")
	nb := FormatFor("nb")
	fr := FormatFor("fr")

	f, err := en.Float("1,234.5")
	require.NoError(t, err)
	assert.InDelta(t, 1234.5, f, 0.0001)

	f, err = nb.Float("1.234,5")
	require.NoError(t, err)
	assert.InDelta(t, 1234.5, f, 0.0001)

	f, err = fr.Float("1 234,5")
	require.NoError(t, err)
	assert.InDelta(t, 1234.5, f, 0.0001)

	u, err := en.Uint("1,204")
	require.NoError(t, err)
	assert.Equal(t, uint64(1204), u)

	_, err = en.Uint("12.5")
	assert.Error(t, err)

	// Garbage locales fall back to English conventions.
	bogus := FormatFor("not a locale")
	f, err = bogus.Float("2.5")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, f, 0.0001)
}
