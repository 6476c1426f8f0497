package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
)

func TestEvaluateDeniesEmptyName(t *testing.T) {
	for _, s := range []models.Session{
		{},
		{ContactNumber: "+821012345678"},
		{Role: models.RoleAdministrator},
	} {
		d := Evaluate(s)
		assert.False(t, d.Allowed)
		assert.Equal(t, TargetLogin, d.Redirect)
	}
}

func TestEvaluateIgnoresRole(t *testing.T) {
	assert.Equal(t, Allow, Evaluate(models.Session{DisplayName: "김민수", Role: models.RoleCitizen}))
	assert.Equal(t, Allow, Evaluate(models.Session{DisplayName: "관리자", Role: models.RoleAdministrator}))
}

func TestConsoleGateWarnsOncePerMount(t *testing.T) {
	citizen := models.Session{DisplayName: "김민수", Role: models.RoleCitizen}
	gate := NewConsoleGate()

	first := gate.Check(citizen)
	assert.False(t, first.Allowed)
	assert.Equal(t, TargetKiosk, first.Redirect)
	assert.Equal(t, AdminRequiredMessage, first.Warning)

	again := gate.Check(citizen)
	assert.False(t, again.Allowed)
	assert.Empty(t, again.Warning)

	assert.Equal(t, AdminRequiredMessage, NewConsoleGate().Check(citizen).Warning)
}

func TestConsoleGateAllowsAdministratorWithoutIdentity(t *testing.T) {
	assert.True(t, NewConsoleGate().Check(models.Session{Role: models.RoleAdministrator}).Allowed)
}

func TestGatesKeepOneGatePerIdentity(t *testing.T) {
	citizen := models.Session{DisplayName: "김민수", Role: models.RoleCitizen}
	gates := NewGates()

	assert.Equal(t, AdminRequiredMessage, gates.For("terminal-1", 1).Check(citizen).Warning)
	assert.Empty(t, gates.For("terminal-1", 1).Check(citizen).Warning)
	assert.Equal(t, AdminRequiredMessage, gates.For("terminal-2", 1).Check(citizen).Warning)

	assert.Equal(t, AdminRequiredMessage, gates.For("terminal-1", 2).Check(citizen).Warning)

	gates.Forget("terminal-2")
	assert.Equal(t, AdminRequiredMessage, gates.For("terminal-2", 1).Check(citizen).Warning)
}
