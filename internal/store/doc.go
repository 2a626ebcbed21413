// Package store provides file-based persistence for the relaychat CLI.
//
// Account profiles are kept in one file under the user's configured home
// directory, sealed with a key derived from the CLI passphrase. All methods
// are concurrency-safe via internal locking.
package store
