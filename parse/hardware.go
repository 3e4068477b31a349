package parse

import (
	"regexp"
	"strings"

	"github.com/telenornms/skuld"
)

var columnSplit = regexp.MustCompile(`\s{2,}`)

/*
parseHardware handles chassis hardware inventory of the shape:

	Hardware inventory:
	Item             Version  Part number  Serial number     Description
	Chassis                                JN12345678AA      MX480
	Routing Engine 0 REV 07   740-013063   1000745244        RE-S-2000
	FPC 0            REV 28   750-031089   YL3974            MPC Type 2 3D
	  PIC 0          REV 18   BUILTIN      BUILTIN           10x 1GE(LAN)

Column widths vary between platforms, so the fields are split on runs of
two or more spaces rather than fixed offsets. Item names legitimately
contain single spaces ("Routing Engine 0"), which survive that split.
Lines with a column layout we can't place are skipped.
*/
func parseHardware(lines []string, resp skuld.RawResponse, nf NumberFormat) (skuld.Records, int) {
	var recs skuld.Records
	matched := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "Hardware inventory") {
			matched++
			continue
		}
		if strings.HasPrefix(trimmed, "Item") && strings.Contains(trimmed, "Serial") {
			matched++
			continue
		}
		fields := columnSplit.Split(trimmed, -1)
		var hc skuld.HardwareComponent
		switch {
		case len(fields) >= 5:
			hc = skuld.HardwareComponent{
				Item:        fields[0],
				Version:     fields[1],
				PartNumber:  fields[2],
				Serial:      fields[3],
				Description: strings.Join(fields[4:], " "),
			}
		case len(fields) == 4 && strings.HasPrefix(fields[1], "REV"):
			// Description column empty.
			hc = skuld.HardwareComponent{
				Item:       fields[0],
				Version:    fields[1],
				PartNumber: fields[2],
				Serial:     fields[3],
			}
		case len(fields) == 3:
			// Version and part number empty, typical for the chassis
			// itself: Item, Serial, Description.
			hc = skuld.HardwareComponent{
				Item:        fields[0],
				Serial:      fields[1],
				Description: fields[2],
			}
		default:
			continue
		}
		hc.Device = resp.Device.Name
		hc.Time = resp.When
		recs.Hardware = append(recs.Hardware, hc)
		matched++
	}
	return recs, matched
}
