package extract

import (
	"fmt"
	"strings"
)

// unitMarkers are substrings that betray unit garbage appended to a value by
// the analysis service ("10^9/L", "g/dl", "38.1 fl", ...). Checked in this
// order; the first hit wins.
var unitMarkers = []string{"^", "/", "%", "fl", "pg"}

// MissingTestError reports a catalog test whose name (or the value block
// after it) never appears in the block sequence.
type MissingTestError struct {
	Test   string
	Reason string
}

func (e *MissingTestError) Error() string {
	return fmt.Sprintf("test %q: %s", e.Test, e.Reason)
}

// Extractor maps the flat block sequence of an analyzed report to a
// test-name -> value-string result. The source documents lay tests out as
// adjacent fragments in a table scan, so the block immediately after a test
// name is taken as its value. skipMissing controls what happens when a test
// from the catalog is absent from the document: false aborts the whole
// extraction, true omits the test from the result.
type Extractor struct {
	catalog     Catalog
	percent     map[string]bool
	skipMissing bool
}

func New(catalog Catalog, skipMissing bool) *Extractor {
	percent := make(map[string]bool, len(catalog.PercentStyle))
	for _, t := range catalog.PercentStyle {
		percent[t] = true
	}
	return &Extractor{catalog: catalog, percent: percent, skipMissing: skipMissing}
}

// Extract processes every catalog test in order. Under the default policy
// any missing test aborts with a *MissingTestError and no partial result.
func (e *Extractor) Extract(blocks []Block) (map[string]string, error) {
	result := make(map[string]string, len(e.catalog.Tests))
	for _, test := range e.catalog.Tests {
		value, err := e.lookup(blocks, test)
		if err != nil {
			if e.skipMissing {
				continue
			}
			return nil, err
		}
		result[test] = value
	}
	return result, nil
}

// lookup finds the anchor for one test and returns its trimmed value.
//
// The anchor scan restarts from block zero for every test and matches the
// test identifier as a case-sensitive substring, not a whole token. The
// value is the text of the block right after the anchor.
func (e *Extractor) lookup(blocks []Block, test string) (string, error) {
	anchor := -1
	for i, b := range blocks {
		if b.Text != "" && strings.Contains(b.Text, test) {
			anchor = i
			break
		}
	}
	if anchor == -1 {
		return "", &MissingTestError{Test: test, Reason: "no block contains the test name"}
	}
	if anchor+1 >= len(blocks) {
		return "", &MissingTestError{Test: test, Reason: "no block follows the test name"}
	}
	value := blocks[anchor+1].Text
	if value == "" {
		return "", &MissingTestError{Test: test, Reason: "block after the test name carries no text"}
	}

	// Percent-style values sometimes arrive with annotation text glued on.
	// Trim at the first space, but only when a space exists so a bare value
	// is never truncated to nothing.
	if e.percent[test] && strings.Contains(value, " ") {
		value = value[:strings.Index(value, " ")]
	}

	// Second pass: a unit marker anywhere in the candidate triggers a trim
	// at the candidate's first space. The trim position is not tied to the
	// marker position, and a marker with no space leaves the value as is.
	for _, marker := range unitMarkers {
		if strings.Contains(value, marker) {
			if i := strings.Index(value, " "); i != -1 {
				value = value[:i]
			}
			break
		}
	}

	return value, nil
}
