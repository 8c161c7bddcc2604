package service

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"
)

// ContentSignature hashes element data. Map keys are marshalled in sorted
// order so equal content always yields the same signature.
func ContentSignature(data map[string]interface{}) string {
	if data == nil {
		data = map[string]interface{}{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
