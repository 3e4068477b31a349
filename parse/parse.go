/*
Package parse turns raw command output into typed metric records.

Parsers are line-oriented pattern matchers, one per command
classification, dispatched through a registry map. New command families
register a new parser without touching the existing ones. Unrecognized
line shapes are skipped, not fatal; what IS fatal is a non-empty response
where nothing at all matched, because that usually means the output format
changed under us.
*/
package parse

import (
	"fmt"
	"strings"

	"github.com/telenornms/skuld"
)

// parser consumes the response line by line and reports how many line
// shapes it recognized. Recognized includes headers and valid
// "nothing to report" markers, so an empty-but-well-formed response is
// distinguishable from format drift.
type parser func(lines []string, resp skuld.RawResponse, nf NumberFormat) (skuld.Records, int)

var parsers = map[skuld.Class]parser{
	skuld.Hardware:    parseHardware,
	skuld.Utilization: parseFPC,
	skuld.Port:        parsePorts,
	skuld.Alarm:       parseAlarms,
}

// Parse dispatches a raw response to the parser for its classification.
// An empty (or all-blank) response yields zero records and no error: the
// device simply has nothing to report.
func Parse(resp skuld.RawResponse, class skuld.Class, nf NumberFormat) (skuld.Records, error) {
	p := parsers[class]
	if p == nil {
		return skuld.Records{}, fmt.Errorf("%w: no parser for class %s", skuld.ErrConfig, class)
	}
	lines := splitLines(resp.Text)
	if empty(lines) {
		return skuld.Records{}, nil
	}
	recs, matched := p(lines, resp, nf)
	if matched == 0 {
		return skuld.Records{}, &skuld.ParseError{
			Reason: "no records matched",
			Sample: sample(lines, 3),
		}
	}
	return recs, nil
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, strings.TrimRight(l, " \t\r"))
	}
	// Trailing blank lines are just padding.
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func empty(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

func sample(lines []string, n int) []string {
	out := make([]string, 0, n)
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
		if len(out) == n {
			break
		}
	}
	return out
}
