package channel

// Channel identifies a delivery medium with its own transport and
// formatting constraints.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelChat  Channel = "chat"
	ChannelPush  Channel = "push"
)

// Valid reports whether the channel is one of the known media.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelChat, ChannelPush:
		return true
	}
	return false
}

// Template is a parameterized content body bound to exactly one channel.
// Metadata carries channel-specific hints such as a message subtype, media
// urls, or push action buttons. Templates are immutable once referenced by a
// sent notification; the surrounding CRUD layer enforces versioning.
type Template struct {
	ID        string         `json:"id"`
	Channel   Channel        `json:"channel"`
	Subject   string         `json:"subject,omitempty"`
	Body      string         `json:"body"`
	Variables []string       `json:"variables,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Active    bool           `json:"active"`
}

// Registry is an explicit channel-to-adapter map, constructed once at
// coordinator startup and passed in rather than looked up from global state.
type Registry map[Channel]Adapter

// Get returns the adapter for a channel.
func (r Registry) Get(c Channel) (Adapter, bool) {
	a, ok := r[c]
	return a, ok
}
