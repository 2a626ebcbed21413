// Package crypto holds the small primitives the relay and CLI share.
//
// Contents
//
//   - Short fingerprints of handle ids for display and logging (Fingerprint)
//   - Best-effort memory wiping for derived keys (Wipe)
package crypto
