package parse

import (
	"fmt"
	"regexp"
	"strings"
)

var containerRe = regexp.MustCompile(`^([A-Z]{3})([A-Z])([0-9]{6})([0-9])$`)

// ContainerNumber holds the parts of an ISO 6346 style container number.
type ContainerNumber struct {
	Owner      string // three-letter owner code
	Category   string // equipment category identifier
	Serial     string
	CheckDigit int
}

// String returns the number in its canonical 11-character form.
func (c ContainerNumber) String() string {
	return fmt.Sprintf("%s%s%s%d", c.Owner, c.Category, c.Serial, c.CheckDigit)
}

// ParseContainerNumber splits a raw container number into its parts.
// Surrounding whitespace is ignored; case is not folded, so "abcd1234567"
// is rejected like any other malformed value.
func ParseContainerNumber(raw string) (ContainerNumber, error) {
	s := strings.TrimSpace(raw)
	m := containerRe.FindStringSubmatch(s)
	if m == nil {
		return ContainerNumber{}, fmt.Errorf("invalid container number %q: expected four letters and seven digits (ABCD1234567)", raw)
	}
	return ContainerNumber{
		Owner:      m[1],
		Category:   m[2],
		Serial:     m[3],
		CheckDigit: int(m[4][0] - '0'),
	}, nil
}
