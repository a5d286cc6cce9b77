package timetable

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a stable hex digest of the canonical JSON form of the
// timetable. Map keys are marshalled in sorted order, so equal timetables
// always share a fingerprint.
func Fingerprint(tt Timetable) string {
	if tt.Programs == nil {
		tt = Empty()
	}
	data, err := json.Marshal(tt)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
