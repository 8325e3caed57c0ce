package policy

import (
	"testing"

	"linkup/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanMessageRequiresConnection(t *testing.T) {
	recipient := uuid.New()
	sender := &models.User{ID: uuid.New(), Role: models.RoleUser}

	assert.False(t, CanMessage(sender, recipient))

	sender.Connections = []uuid.UUID{recipient}
	assert.True(t, CanMessage(sender, recipient))
}

func TestAdminBypassesConnectionCheck(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	assert.True(t, CanMessage(admin, uuid.New()))
	assert.True(t, CanViewConversation(admin, uuid.New()))
}

func TestModeratorDoesNotBypass(t *testing.T) {
	mod := &models.User{ID: uuid.New(), Role: models.RoleModerator}
	assert.False(t, CanMessage(mod, uuid.New()))
}

func TestNilSenderDenied(t *testing.T) {
	assert.False(t, CanMessage(nil, uuid.New()))
	assert.False(t, CanViewConversation(nil, uuid.New()))
}
