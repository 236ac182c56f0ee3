package trace

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeTraceHash computes the deterministic hash of a canonical trace
// encoding.
//
// This function assumes the input bytes are already a canonical encoding
// (e.g., from ResolutionTrace.CanonicalJSON()).
//
// Hash function: sha256 over the canonical bytes, hex-encoded. Stable
// across architectures and compilers.
func ComputeTraceHash(canonicalEncoding []byte) string {
	if len(canonicalEncoding) == 0 {
		return ""
	}
	sum := sha256.Sum256(canonicalEncoding)
	return hex.EncodeToString(sum[:])
}
