// Package numbering assigns account-group identifiers and sequential
// document numbers to confirmed banking documents. Assignment is a pure
// function over the case's existing numbering metadata; serializing
// concurrent confirmations is the caller's job (the document repository
// runs assignment inside a write transaction).
package numbering

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/greenwayb/replit-casevault-sub000/internal/domain"
)

// groupPattern matches well-formed account-group numbers. Historic data may
// contain anything; non-matching values are ignored rather than rejected.
var groupPattern = regexp.MustCompile(`^\d+$`)

// Assign resolves the account group and next document number for a newly
// confirmed document. existing must be the case's documents in creation
// order.
//
// A holder label already seen in the case reuses its group; otherwise a new
// group numbered max+1 (or "1") is allocated. Within the group the next
// sequence is one past the highest existing sequence, where a document with
// an unparseable number falls back to its creation-order position. Manual
// review documents carry no holder label and fall back to the institution;
// in a case with no numbering context this degenerates to "1.1".
func Assign(existing []domain.DocumentNumbering, holderLabel, institution string) (group, number string) {
	label := strings.TrimSpace(holderLabel)
	if label == "" {
		label = strings.TrimSpace(institution)
	}

	maxGroup := 0
	for _, d := range existing {
		if !groupPattern.MatchString(d.AccountGroupNumber) {
			continue
		}
		n, _ := strconv.Atoi(d.AccountGroupNumber)
		if n > maxGroup {
			maxGroup = n
		}
		if group == "" && strings.EqualFold(strings.TrimSpace(d.AccountHolderLabel), label) {
			group = d.AccountGroupNumber
		}
	}
	if group == "" {
		group = strconv.Itoa(maxGroup + 1)
	}

	seq := 0
	pos := 0
	for _, d := range existing {
		if d.AccountGroupNumber != group {
			continue
		}
		pos++
		s, ok := parseSequence(d.DocumentNumber)
		if !ok {
			s = pos
		}
		if s > seq {
			seq = s
		}
	}

	return group, fmt.Sprintf("%s.%d", group, seq+1)
}

// parseSequence extracts the sequence part of a document number such as
// "2.7". Malformed numbers report false so the caller can fall back to
// creation-order position.
func parseSequence(documentNumber string) (int, bool) {
	idx := strings.LastIndex(documentNumber, ".")
	if idx < 0 || idx == len(documentNumber)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(documentNumber[idx+1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
