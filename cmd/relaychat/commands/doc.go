// Package commands defines the relaychat CLI and wires dependencies for subcommands.
//
// Commands
//
//   - register   Register a client name with the relay
//   - send       Send a message to another client
//   - listen     Print incoming messages until interrupted
//   - clients    List registered clients
//   - search     Find clients by name
//   - validate   Check that a name is registered
//   - active     Mark a client active or inactive
//
// # Implementation
//
// The root command builds the profile store and relay client before any
// subcommand runs. The last registration per relay is kept in an encrypted
// profile under --home, so send and listen can default to that name.
package commands
