package tarot

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Verdict is the yes/no-oracle answer for a drawn card.
type Verdict string

const (
	VerdictYes       Verdict = "yes"
	VerdictNo        Verdict = "no"
	VerdictIntuition Verdict = "intuition"
)

// Label returns the user-facing answer text.
func (v Verdict) Label() string {
	switch v {
	case VerdictYes:
		return "✅ Да"
	case VerdictNo:
		return "❌ Нет"
	default:
		return "🌓 Неоднозначно — прислушайся к интуиции"
	}
}

// Major-arcana verdict tables and hand-tuned override sets. The overrides are
// checked before any suit or number rule and are fixed data: ids 58 and 63
// fall in the minor range on purpose.
var (
	yesMajor       = map[int]bool{1: true, 3: true, 6: true, 7: true, 10: true, 14: true, 17: true, 19: true, 21: true}
	noMajor        = map[int]bool{12: true, 13: true, 15: true, 16: true, 18: true}
	intuitionMajor = map[int]bool{0: true, 2: true, 4: true, 5: true, 8: true, 9: true, 11: true, 20: true}

	overrideNo        = map[int]bool{58: true, 63: true, 72: true}
	overrideIntuition = map[int]bool{2: true, 9: true, 11: true, 12: true, 14: true, 46: true, 55: true}
)

// NormalizeQuestion lower-cases the question and collapses whitespace runs to
// single spaces, so cosmetic formatting does not change the drawn card.
func NormalizeQuestion(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}

// SelectCard deterministically picks a card id in [0, DeckSize) for the given
// user, question and calendar day. The same inputs always yield the same
// card: the key "yesno:<user>:<ISO day>:<normalized question>" is hashed with
// SHA-256 and the first four bytes, read big-endian, are reduced mod 78.
func SelectCard(userID int64, question string, day time.Time) int {
	key := fmt.Sprintf("yesno:%d:%s:%s", userID, day.Format("2006-01-02"), NormalizeQuestion(question))
	digest := sha256.Sum256([]byte(key))
	return int(binary.BigEndian.Uint32(digest[:4]) % DeckSize)
}

// Classify maps a card id and suit to a verdict. Override sets win over the
// major-arcana tables, which win over the per-suit minor rules; any card the
// tables do not mention falls back to intuition, so the function is total.
// The suit is matched case-insensitively.
func Classify(cardID int, suit string) Verdict {
	suit = strings.ToLower(suit)
	switch {
	case overrideIntuition[cardID]:
		return VerdictIntuition
	case overrideNo[cardID]:
		return VerdictNo
	}

	if suit == SuitMajor || (cardID >= 0 && cardID <= 21) {
		switch {
		case yesMajor[cardID]:
			return VerdictYes
		case noMajor[cardID]:
			return VerdictNo
		case intuitionMajor[cardID]:
			return VerdictIntuition
		}
		return VerdictIntuition
	}

	switch suit {
	case SuitSwords:
		return VerdictNo
	case SuitWands, SuitCups, SuitPentacles:
		return VerdictYes
	}
	return VerdictIntuition
}
