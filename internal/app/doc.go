// Package app wires application dependencies.
//
// For the CLI it builds the profile store and relay client from Config and
// exposes them via Wire and App. For the relay server it builds the
// directory, queues, push transports, services, metrics and HTTP front end
// from a config.Config and runs them as a Server.
package app
