package mailer

// Config is the site's "mailer" section.
type Config struct {
	// From is the default sender, "Name <address>" or a bare address.
	From string `json:"from"`
	// FallbackSubject is used when neither the message nor the template
	// front matter provide a subject.
	FallbackSubject string `json:"fallback-subject"`
	// Layout wraps every email template; empty means no layout.
	Layout string `json:"layout"`
}

func (c Config) withDefaults() Config {
	if c.FallbackSubject == "" {
		c.FallbackSubject = "Notification"
	}
	return c
}
