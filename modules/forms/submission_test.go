package forms_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear/modules/forms"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := forms.NewMemoryStore()

	now := time.Now().UTC()
	var ids []uuid.UUID
	for i, key := range []string{"contact", "apply", "contact", "contact"} {
		sub := &forms.Submission{
			ID:        uuid.New(),
			Form:      key,
			Values:    map[string]any{"n": i},
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, s.Save(ctx, sub))
		ids = append(ids, sub.ID)
	}

	got, err := s.Get(ctx, ids[1])
	require.NoError(t, err)
	require.Equal(t, "apply", got.Form)

	got.Values["n"] = 99
	again, err := s.Get(ctx, ids[1])
	require.NoError(t, err)
	require.Equal(t, "apply", again.Form)

	_, err = s.Get(ctx, uuid.New())
	require.ErrorIs(t, err, forms.ErrSubmissionNotFound)

	list, err := s.List(ctx, "contact", 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, ids[3], list[0].ID)
	require.Equal(t, ids[0], list[2].ID)

	list, err = s.List(ctx, "contact", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = s.List(ctx, "missing", 0)
	require.NoError(t, err)
	require.Empty(t, list)
}
