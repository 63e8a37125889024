package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/avetrov/kaiten-mirror/internal/kaiten"
)

// PayloadHash fingerprints a raw record as hex SHA-256 over its canonical
// JSON form. encoding/json serializes map keys in sorted order at every
// nesting level, so the hash is independent of the key order the API
// happened to send.
func PayloadHash(raw kaiten.RawRecord) string {
	// A record decoded from JSON always re-marshals.
	b, _ := json.Marshal(raw)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
