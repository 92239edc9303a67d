// FILE: devconsole/src/internal/wire/auth.go
package wire

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Sign proves possession of the cluster cookie for a node name.
// An empty cookie disables the check and signs as "".
func Sign(cookie, node string) string {
	if cookie == "" {
		return ""
	}
	// Cookies longer than the blake2b key limit are folded into a 32-byte key
	key := blake2b.Sum256([]byte(cookie))
	mac, err := blake2b.New256(key[:])
	if err != nil {
		return ""
	}
	mac.Write([]byte(node))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a hello frame's MAC against the cookie
func Verify(cookie, node, mac string) bool {
	if cookie == "" {
		return true
	}
	expected := Sign(cookie, node)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(mac)) == 1
}
