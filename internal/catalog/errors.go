package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedZone = errors.New("unsupported zone")
	ErrInvalidCatalog  = errors.New("invalid catalog")
)

// ZoneError reports the zones seen in a report that matched no raid type.
type ZoneError struct {
	Zones     []string
	Supported []string
}

func (e *ZoneError) Error() string {
	seen := "none"
	if len(e.Zones) > 0 {
		seen = strings.Join(e.Zones, ", ")
	}
	return fmt.Sprintf("unsupported zone: %s; supported raids: %s", seen, strings.Join(e.Supported, ", "))
}

func (e *ZoneError) Unwrap() error {
	return ErrUnsupportedZone
}
