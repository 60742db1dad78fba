package services

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/votely/votely/internal/models"
)

// ReceiptIssuer derives verification receipts from accepted ballots.
// The receipt is a hash over the ballot's immutable fields: the same ballot
// always reproduces the same receipt, and the hash does not reveal the
// selections to anyone who does not already know them. It is a verification
// token for the submitting voter, not a cryptographic commitment.
type ReceiptIssuer struct{}

// NewReceiptIssuer creates a ReceiptIssuer
func NewReceiptIssuer() *ReceiptIssuer {
	return &ReceiptIssuer{}
}

// Issue returns the hex-encoded receipt hash for an accepted ballot
func (ReceiptIssuer) Issue(ballot *models.Ballot) string {
	// Sort a copy so presentation order never changes the hash
	selections := make([]string, len(ballot.Selections))
	copy(selections, ballot.Selections)
	sort.Strings(selections)

	var b strings.Builder
	b.WriteString(ballot.PollID)
	b.WriteByte('\n')
	b.WriteString(ballot.VoterID)
	b.WriteByte('\n')
	b.WriteString(strings.Join(selections, ","))
	b.WriteByte('\n')
	b.WriteString(strconv.FormatInt(ballot.AcceptedAt.UTC().UnixNano(), 10))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
