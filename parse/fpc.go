package parse

import (
	"strconv"
	"strings"

	"github.com/telenornms/skuld"
)

/*
parseFPC handles line-card utilization tables of the shape:

	                     Temp  CPU Utilization (%)   Memory    Utilization (%)
	Slot State            (C)  Total  Interrupt      DRAM (MB) Heap     Buffer
	  0  Online            39     10          0       2048       14         21
	  1  Empty
	  2  Online            41      5          0       1.024      12         19

Each online slot yields three samples: cpu (total percent against 100),
heap and buffer (percent of DRAM converted to megabytes against the DRAM
capacity). The DRAM column goes through the locale-aware number parser:
the last row above is 1024 MB on a comma-decimal device. A slot with no
card yields a single not-applicable sample so the slot still shows up in
the inventory.
*/
func parseFPC(lines []string, resp skuld.RawResponse, nf NumberFormat) (skuld.Records, int) {
	var recs skuld.Records
	matched := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.Contains(trimmed, "Utilization") || strings.HasPrefix(trimmed, "Slot") {
			matched++
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			continue
		}
		slot, err := strconv.Atoi(fields[0])
		if err != nil || slot < 0 {
			continue
		}
		component := "FPC " + fields[0]
		state := fields[1]
		if !strings.EqualFold(state, "Online") {
			recs.Utilization = append(recs.Utilization, skuld.UtilizationSample{
				Device:    resp.Device.Name,
				Time:      resp.When,
				Component: component,
				Resource:  "slot",
				State:     state,
			})
			matched++
			continue
		}
		if len(fields) < 8 {
			continue
		}
		temp, err := nf.Int(fields[2])
		if err != nil {
			continue
		}
		cpu, err1 := nf.Float(fields[3])
		dram, err2 := nf.Float(fields[5])
		heap, err3 := nf.Float(fields[6])
		buffer, err4 := nf.Float(fields[7])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		recs.Utilization = append(recs.Utilization,
			sampleFor(resp, component, state, temp, "cpu", cpu, 100),
			sampleFor(resp, component, state, temp, "heap", dram*heap/100, dram),
			sampleFor(resp, component, state, temp, "buffer", dram*buffer/100, dram))
		matched++
	}
	return recs, matched
}

func sampleFor(resp skuld.RawResponse, component, state string, temp int, resource string, used, capacity float64) skuld.UtilizationSample {
	ratio, ok := skuld.Ratio(used, capacity)
	return skuld.UtilizationSample{
		Device:     resp.Device.Name,
		Time:       resp.When,
		Component:  component,
		Resource:   resource,
		State:      state,
		TempC:      temp,
		Used:       used,
		Capacity:   capacity,
		Ratio:      ratio,
		Applicable: ok,
	}
}
