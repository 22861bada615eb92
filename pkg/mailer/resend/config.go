package resend

// Config is the site's "mailer.resend" section.
type Config struct {
	APIKey      string `json:"api-key"`
	SenderEmail string `json:"sender-email"`
	SenderName  string `json:"sender-name"`
}
