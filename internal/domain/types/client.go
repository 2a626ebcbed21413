package types

import "time"

// Handle is the opaque delivery handle issued on registration. A client
// presents it back to the relay when attaching a push transport.
type Handle struct {
	ID       string   `json:"id"`
	Name     Username `json:"name"`
	Callback string   `json:"callback,omitempty"`
}

// URI renders the handle as relay:<id>@<name>.
func (h Handle) URI() string {
	return "relay:" + h.ID + "@" + string(h.Name)
}

// IsZero reports whether the handle was never issued.
func (h Handle) IsZero() bool { return h.ID == "" }

// Client is a directory entry.
type Client struct {
	Name         Username  `json:"name"`
	Handle       Handle    `json:"handle"`
	Active       bool      `json:"active"`
	RegisteredAt time.Time `json:"registered_at"`
}
