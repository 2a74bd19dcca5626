package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate     = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)
	reAmount   = regexp.MustCompile(`\$\s?\d{1,3}(,\d{3})*(\.\d{2})?`)
	reParties  = regexp.MustCompile(`\b(seller|buyer)s?\b`)
	reFormMark = regexp.MustCompile(`\btrec\s+no\.?\s*\d`)
)

// HeuristicConfidence scores recognized text by the contract artifacts it
// contains. It is a cheap signal, not a probability.
func HeuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reAmount.MatchString(txtL) {
		score += 0.15
	}
	if reParties.MatchString(txtL) {
		score += 0.15
	}
	if reFormMark.MatchString(txtL) {
		score += 0.15
	}
	if len(txt) > 400 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
