package warcraftlogs

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidReportCode = errors.New("invalid report code")

var (
	reportURLRe = regexp.MustCompile(`warcraftlogs\.com/reports/([A-Za-z0-9]+)`)
	bareCodeRe  = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// ParseReportCode accepts a report URL from any regional or classic host, or
// a bare report code.
func ParseReportCode(input string) (string, error) {
	input = strings.TrimSpace(input)
	if m := reportURLRe.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	if bareCodeRe.MatchString(input) {
		return input, nil
	}
	return "", ErrInvalidReportCode
}
