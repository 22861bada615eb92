// Package mailer sends emails rendered from site templates.
//
// Templates live in the site's template tree next to pages, usually under
// emails/, and are rendered by the view renderer, so markdown with front
// matter works the same way as for pages:
//
//	---
//	subject: "New message from {{ .name }}"
//	---
//	# Contact form
//
//	{{ .message }}
//
// A Mailer combines a Renderer with a Sender. The resend subpackage
// provides the production Sender; LogSender only logs and is used when no
// provider is configured.
package mailer
