package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data. Soup input files are keyed by it, so
// editing a file invalidates its cached mesh.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// meshKey returns "mesh:<sha256>" over the key version, shape and options.
// Each component is JSON-encoded on its own line, so a shape name can never
// run into the options that follow it.
func meshKey(shape string, opts MeshKeyOpts) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, part := range []any{keyVersion, shape, opts} {
		// Plain strings and numbers; encoding into a hash cannot fail.
		_ = enc.Encode(part)
	}
	return "mesh:" + hex.EncodeToString(h.Sum(nil))
}
