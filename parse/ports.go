package parse

import (
	"strings"

	"github.com/telenornms/skuld"
)

/*
parsePorts handles port status tables of the shape:

	Interface   Admin  Link  Input errors  Output errors
	ge-0/0/0    up     up    0             0
	ge-0/0/1    up     down  0             0
	xe-0/1/0    up     up    1,204         7

The derived state is computed here, close to the raw fields: a port that
isn't administratively and operationally up is down, a live port with
error counters ticking is degraded, the rest are up.
*/
func parsePorts(lines []string, resp skuld.RawResponse, nf NumberFormat) (skuld.Records, int) {
	var recs skuld.Records
	matched := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "Interface") {
			matched++
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 5 {
			continue
		}
		admin, oper := fields[1], fields[2]
		if !upDown(admin) || !upDown(oper) {
			continue
		}
		inErr, err1 := nf.Uint(fields[3])
		outErr, err2 := nf.Uint(fields[4])
		if err1 != nil || err2 != nil {
			continue
		}
		recs.Ports = append(recs.Ports, skuld.PortStatus{
			Device:    resp.Device.Name,
			Time:      resp.When,
			Port:      fields[0],
			Admin:     strings.ToLower(admin),
			Oper:      strings.ToLower(oper),
			InErrors:  inErr,
			OutErrors: outErr,
			State:     skuld.ClassifyPort(admin, oper, inErr, outErr),
		})
		matched++
	}
	return recs, matched
}

func upDown(s string) bool {
	return strings.EqualFold(s, "up") || strings.EqualFold(s, "down")
}
