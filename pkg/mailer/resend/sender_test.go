package resend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear/pkg/mailer"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.ErrorIs(t, err, ErrNoAPIKey)

	s, err := New(Config{APIKey: "re_test", SenderEmail: "site@example.com", SenderName: "Example Site"})
	require.NoError(t, err)
	require.Equal(t, "Example Site <site@example.com>", s.from)
}

func TestConvert(t *testing.T) {
	t.Parallel()

	got := tags(mailer.Tags{"form": "contact", "urgent": struct{}{}})
	values := map[string]string{}
	for _, tag := range got {
		values[tag.Name] = tag.Value
	}
	require.Equal(t, map[string]string{"form": "contact", "urgent": "true"}, values)

	att := attachments([]mailer.Attachment{{Filename: "cv.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}})
	require.Len(t, att, 1)
	require.Equal(t, "cv.pdf", att[0].Filename)

	require.Equal(t, "42", tagValue(42))
	require.Equal(t, "1.5", tagValue(1.5))
	require.Equal(t, "false", tagValue(false))
	require.Equal(t, "true", tagValue(nil))
}
