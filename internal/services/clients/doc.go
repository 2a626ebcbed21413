// Package clients registers relay clients and answers directory queries.
//
// It wraps the client directory with input validation, fingerprints new
// handles for logging and counts registrations.
package clients
