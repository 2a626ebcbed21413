package types

// Username is the unique, case-sensitive name a client registers under.
type Username string

// String returns the string form of the username.
func (u Username) String() string { return string(u) }

// Fingerprint is a short identifier for handles presented to users and logs.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// MessageID uniquely identifies a relayed message.
type MessageID string

// String returns the string form of the message identifier.
func (id MessageID) String() string { return string(id) }
