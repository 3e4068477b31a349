package parse

import (
	"regexp"
	"time"

	"github.com/telenornms/skuld"
)

var (
	noAlarms   = regexp.MustCompile(`^No alarms currently active`)
	alarmCount = regexp.MustCompile(`^\d+ alarms? currently active`)
	alarmRow   = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})(?: ([A-Z]{1,5}))? {2,}(\S+) +(\S.*)$`)
	alarmHdr   = regexp.MustCompile(`^Alarm time\b`)
)

const alarmTimeLayout = "2006-01-02 15:04:05"

/*
parseAlarms handles active-alarm listings of the shape:

	2 alarms currently active
	Alarm time               Class  Description
	2026-08-29 04:10:21 UTC  Major  PEM 0 Not Present
	2026-08-28 11:02:03 UTC  Minor  Fan Tray Failure

"No alarms currently active" is a recognized, valid, zero-record
response; it must not be confused with a format mismatch. Severity
strings go through the fixed lookup; anything we don't know about becomes
unknown but is never dropped. Silently losing an alarm is the one thing
this parser is not allowed to do.
*/
func parseAlarms(lines []string, resp skuld.RawResponse, nf NumberFormat) (skuld.Records, int) {
	var recs skuld.Records
	matched := 0
	for _, line := range lines {
		trimmed := trimIndent(line)
		if trimmed == "" {
			continue
		}
		if noAlarms.MatchString(trimmed) || alarmCount.MatchString(trimmed) || alarmHdr.MatchString(trimmed) {
			matched++
			continue
		}
		m := alarmRow.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		raised, err := time.Parse(alarmTimeLayout, m[1])
		if err != nil {
			continue
		}
		recs.Alarms = append(recs.Alarms, skuld.AlarmEvent{
			Device:      resp.Device.Name,
			Time:        resp.When,
			Raised:      raised.UTC(),
			Severity:    skuld.ParseSeverity(m[3]),
			RawSeverity: m[3],
			Description: m[4],
		})
		matched++
	}
	return recs, matched
}

func trimIndent(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	return s
}
