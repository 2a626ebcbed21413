package types

// AccountProfile records a registration on a specific relay server.
type AccountProfile struct {
	RelayURL  string   `json:"relay_url"`
	Name      Username `json:"name"`
	HandleID  string   `json:"handle_id"`
	ClientURI string   `json:"client_uri"`
}

// Registration is what the relay returns from register.
type Registration struct {
	ClientURI   string      `json:"client_uri"`
	Handle      string      `json:"handle"`
	Fingerprint Fingerprint `json:"fingerprint"`
}
