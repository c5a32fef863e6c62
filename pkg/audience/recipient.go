package audience

// Recipient is the directory projection of one deliverable user.
// Email and Phone are optional; an adapter that requires a missing contact
// method excludes the recipient with a channel-specific failure.
type Recipient struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email,omitempty"`
	Phone  string   `json:"phone,omitempty"`
	Locale string   `json:"locale,omitempty"`
	Region string   `json:"region,omitempty"`
	Roles  []string `json:"roles,omitempty"`

	// OptIns holds per-channel opt-in flags keyed by channel name.
	// An absent key means the recipient has not opted out.
	OptIns map[string]bool `json:"opt_ins,omitempty"`
}

// OptedIn reports whether the recipient accepts the named channel.
// Channels without an explicit flag default to opted in, except where an
// adapter requires an explicit subscription (browser push).
func (r Recipient) OptedIn(channel string) bool {
	if r.OptIns == nil {
		return true
	}
	v, ok := r.OptIns[channel]
	if !ok {
		return true
	}
	return v
}

// HasRole reports whether the recipient holds any of the given roles.
func (r Recipient) HasRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range r.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
