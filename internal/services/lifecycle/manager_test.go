package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownRunsHooksInReverseOrder(t *testing.T) {
	m := New(0, nil)
	var order []string
	for _, name := range []string{"store", "mirror", "http"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	assert.Equal(t, []string{"http", "mirror", "store"}, m.Names())

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http", "mirror", "store"}, order)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3)
}

func TestShutdownJoinsErrors(t *testing.T) {
	m := New(0, nil)
	boom := errors.New("boom")
	ran := false
	m.Register("store", func(context.Context) error {
		ran = true
		return nil
	})
	m.Register("mirror", func(context.Context) error { return boom })

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, ran)
}

func TestRegisterAfterShutdownIgnored(t *testing.T) {
	m := New(0, nil)
	require.NoError(t, m.Shutdown(context.Background()))
	m.Register("late", func(context.Context) error { return nil })
	m.Register("nil", nil)
	assert.Empty(t, m.Names())
}
