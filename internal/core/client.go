package core

// Identity is the user identity bound to a connection after a
// successful join. Email is the membership key; name and image are
// optional display metadata.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// Client is one live connection as seen by the core layer. A client is
// unbound until its first successful join binds an identity.
type Client struct {
	ID       string
	Identity Identity
	Commands chan *Command
	Events   chan *Event
	Rooms    map[string]struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
		Rooms:    make(map[string]struct{}),
	}
}

// Bound reports whether the client has a bound identity.
func (c *Client) Bound() bool {
	return c.Identity.Email != ""
}
