package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeReference(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		expected string
	}{
		{"canonical form kept", "PO-10001", "PO-10001"},
		{"extracted from surrounding text", "Ref: PO-10042 (urgent)", "PO-10042"},
		{"extracted from prose", "as per purchase order PO-7 dated May 3", "PO-7"},
		{"first token wins", "PO-10001 supersedes PO-10002", "PO-10001"},
		{"no token keeps raw trimmed", "  order ten thousand one  ", "order ten thousand one"},
		{"lowercase prefix not recognized", "po-10001", "po-10001"},
		{"missing digits not recognized", "PO- pending", "PO- pending"},
		{"empty stays empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeReference(tc.raw))
		})
	}
}
