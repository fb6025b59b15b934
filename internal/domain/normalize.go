package domain

import (
	"regexp"
	"strings"
)

var poPattern = regexp.MustCompile(`PO-\d+`)

// NormalizeReference extracts a canonical PO-<digits> reference from
// free-form text. Document extraction produces reference fields like
// "Ref: PO-10042 (urgent)"; this pulls out the canonical token. When no
// such token is present the trimmed raw text is kept verbatim so the
// information is never lost.
//
// Normalization happens exactly once, at the ingestion boundary.
// Matching downstream is plain equality against the stored value and
// never re-parses free text. A raw reference that survives unparsed
// will therefore never match a real purchase order, even if it contains
// the number in some other form; that record surfaces as a ghost entry
// instead of being silently dropped.
func NormalizeReference(raw string) string {
	if match := poPattern.FindString(raw); match != "" {
		return match
	}
	return strings.TrimSpace(raw)
}
