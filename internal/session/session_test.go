package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
)

func TestNewStateIsEmptyCitizen(t *testing.T) {
	st := NewState()
	snap := st.Snapshot()
	assert.Equal(t, "", snap.DisplayName)
	assert.Equal(t, "", snap.ContactNumber)
	assert.Equal(t, models.RoleCitizen, snap.Role)
}

func TestSetIdentityClearsAdministrator(t *testing.T) {
	st := NewState()
	st.Elevate()
	require.NoError(t, st.SetIdentity("김민수", "+821012345678"))

	snap := st.Snapshot()
	assert.Equal(t, "김민수", snap.DisplayName)
	assert.Equal(t, "+821012345678", snap.ContactNumber)
	assert.Equal(t, models.RoleCitizen, snap.Role)
}

func TestSetIdentityRequiresName(t *testing.T) {
	st := NewState()
	assert.ErrorIs(t, st.SetIdentity("  ", "+821012345678"), ErrEmptyName)
	assert.Equal(t, models.Session{Role: models.RoleCitizen}, st.Snapshot())
}

func TestElevateKeepsIdentityAndIsIdempotent(t *testing.T) {
	st := NewState()
	require.NoError(t, st.SetIdentity("김민수", "+821012345678"))
	st.Elevate()
	gen := st.Generation()
	st.Elevate()

	snap := st.Snapshot()
	assert.Equal(t, models.RoleAdministrator, snap.Role)
	assert.Equal(t, "김민수", snap.DisplayName)
	assert.Equal(t, gen, st.Generation())
}

func TestClearResetsEverything(t *testing.T) {
	st := NewState()
	require.NoError(t, st.SetIdentity("김민수", "+821012345678"))
	st.Elevate()
	st.Clear()
	assert.Equal(t, models.Session{Role: models.RoleCitizen}, st.Snapshot())
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry()
	id, st := reg.Open()
	got, ok := reg.Get(id)
	require.True(t, ok)
	assert.Same(t, st, got)
	assert.Equal(t, 1, reg.Len())

	reg.Close(id)
	_, ok = reg.Get(id)
	assert.False(t, ok)
}

func TestHandleRoundTripAndTamper(t *testing.T) {
	codec := NewHandleCodec("secret")
	handle, err := codec.Encode("terminal-1")
	require.NoError(t, err)

	id, err := codec.Decode(handle)
	require.NoError(t, err)
	assert.Equal(t, "terminal-1", id)

	_, err = NewHandleCodec("other").Decode(handle)
	assert.ErrorIs(t, err, ErrInvalidHandle)

	_, err = codec.Decode("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidHandle)
}
