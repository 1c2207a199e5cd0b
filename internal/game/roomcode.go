package game

import (
	"math/rand"
	"regexp"
	"strings"
)

// Room codes use a 24-letter alphabet that drops I and O to avoid
// transcription mistakes.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"

const roomCodeLength = 4

var roomCodePattern = regexp.MustCompile(`^[A-HJ-NP-Z]{4}$`)

// NewRoomCode generates a random 4-letter room code.
func NewRoomCode() string {
	var b strings.Builder
	b.Grow(roomCodeLength)
	for i := 0; i < roomCodeLength; i++ {
		b.WriteByte(roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))])
	}
	return b.String()
}

// NormalizeRoomCode uppercases and trims a client-supplied code.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidRoomCode reports whether a normalized code is well-formed.
func ValidRoomCode(code string) bool {
	return roomCodePattern.MatchString(code)
}
