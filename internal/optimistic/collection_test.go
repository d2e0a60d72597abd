package optimistic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setting struct {
	ID       string
	Portal   string
	Enabled  bool
	Priority int
}

func newSettings(items ...setting) *Collection[string, setting] {
	c := NewCollection(func(s setting) string { return s.Portal })
	c.Replace(items)
	return c
}

func enable(on bool) func(setting) setting {
	return func(s setting) setting {
		s.Enabled = on
		return s
	}
}

func TestMutate_AppliesBeforeCommit(t *testing.T) {
	c := newSettings(setting{ID: "s1", Portal: "linkedin", Priority: 1})

	_, err := c.Mutate(context.Background(), Mutation[string, setting]{
		Key:   "linkedin",
		Apply: enable(true),
		Commit: func(context.Context) (setting, error) {
			local, _ := c.Get("linkedin")
			assert.True(t, local.Enabled, "local state is updated before the server answers")
			return setting{ID: "s1", Portal: "linkedin", Enabled: true, Priority: 1}, nil
		},
	})
	require.NoError(t, err)
}

func TestMutate_MergesServerFields(t *testing.T) {
	c := newSettings(setting{ID: "s1", Portal: "naukri", Enabled: true, Priority: 3})

	got, err := c.Mutate(context.Background(), Mutation[string, setting]{
		Key: "naukri",
		Apply: func(s setting) setting {
			s.Priority = 2
			return s
		},
		Commit: func(context.Context) (setting, error) {
			// Server normalizes the priority and omits the other fields
			return setting{ID: "s1", Priority: 1}, nil
		},
		Merge: func(local, server setting) setting {
			local.ID = server.ID
			local.Priority = server.Priority
			return local
		},
	})
	require.NoError(t, err)
	assert.Equal(t, setting{ID: "s1", Portal: "naukri", Enabled: true, Priority: 1}, got)
}

func TestMutate_PlaceholderReplacedByServerRecord(t *testing.T) {
	c := newSettings()

	got, err := c.Mutate(context.Background(), Mutation[string, setting]{
		Key:         "indeed",
		Placeholder: func() setting { return setting{ID: "temp-indeed", Portal: "indeed", Priority: 1} },
		Apply:       enable(true),
		Commit: func(context.Context) (setting, error) {
			local, ok := c.Get("indeed")
			require.True(t, ok)
			assert.Equal(t, "temp-indeed", local.ID)
			assert.True(t, local.Enabled)
			return setting{ID: "srv-42", Portal: "indeed", Enabled: true, Priority: 4}, nil
		},
		Merge: func(local, server setting) setting {
			t.Fatal("placeholders are replaced, not merged")
			return local
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-42", got.ID)
	assert.Equal(t, []setting{{ID: "srv-42", Portal: "indeed", Enabled: true, Priority: 4}}, c.Items())
}

func TestMutate_RollbackRestoresSnapshot(t *testing.T) {
	before := []setting{
		{ID: "s1", Portal: "linkedin", Enabled: false, Priority: 1},
		{ID: "s2", Portal: "naukri", Enabled: true, Priority: 2},
	}
	c := newSettings(before...)

	_, err := c.Mutate(context.Background(), Mutation[string, setting]{
		Key:   "linkedin",
		Apply: enable(true),
		Commit: func(context.Context) (setting, error) {
			return setting{}, errors.New("HTTP 500")
		},
	})
	assert.EqualError(t, err, "HTTP 500")
	assert.Equal(t, before, c.Items())
}

func TestMutate_RollbackDiscardsPlaceholder(t *testing.T) {
	c := newSettings(setting{ID: "s1", Portal: "linkedin"})

	_, err := c.Mutate(context.Background(), Mutation[string, setting]{
		Key:         "wellfound",
		Placeholder: func() setting { return setting{ID: "temp-wellfound", Portal: "wellfound"} },
		Apply:       enable(true),
		Commit: func(context.Context) (setting, error) {
			return setting{}, errors.New("portal unavailable")
		},
	})
	require.Error(t, err)

	_, ok := c.Get("wellfound")
	assert.False(t, ok)
	assert.Len(t, c.Items(), 1)
}

func TestMutate_MissingWithoutPlaceholder(t *testing.T) {
	c := newSettings()
	called := false

	_, err := c.Mutate(context.Background(), Mutation[string, setting]{
		Key:   "linkedin",
		Apply: enable(true),
		Commit: func(context.Context) (setting, error) {
			called = true
			return setting{}, nil
		},
	})
	assert.ErrorIs(t, err, ErrMissing)
	assert.False(t, called, "no backend call for an unknown entity")
}

func TestMutate_LastResponseWins(t *testing.T) {
	c := newSettings(setting{ID: "s1", Portal: "linkedin", Priority: 1})
	firstRelease := make(chan struct{})
	firstStarted := make(chan struct{})
	done := make(chan struct{})

	setPriority := func(p int) func(setting) setting {
		return func(s setting) setting {
			s.Priority = p
			return s
		}
	}

	go func() {
		defer close(done)
		_, err := c.Mutate(context.Background(), Mutation[string, setting]{
			Key:   "linkedin",
			Apply: setPriority(2),
			Commit: func(context.Context) (setting, error) {
				close(firstStarted)
				<-firstRelease
				return setting{ID: "s1", Portal: "linkedin", Priority: 2}, nil
			},
		})
		assert.NoError(t, err)
	}()
	<-firstStarted

	_, err := c.Mutate(context.Background(), Mutation[string, setting]{
		Key:   "linkedin",
		Apply: setPriority(3),
		Commit: func(context.Context) (setting, error) {
			return setting{ID: "s1", Portal: "linkedin", Priority: 3}, nil
		},
	})
	require.NoError(t, err)

	close(firstRelease)
	<-done

	got, _ := c.Get("linkedin")
	assert.Equal(t, 2, got.Priority, "the slower first response arrived last")
}
