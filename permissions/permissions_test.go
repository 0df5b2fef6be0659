package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"teamspace/models"
)

const (
	leaderID   = 1
	adminID    = 2
	memberID   = 3
	outsiderID = 4
)

func testTeam() *models.Team {
	return &models.Team{
		Members: []models.TeamMember{
			{UserID: leaderID, Role: models.RoleLeader},
			{UserID: adminID, Role: models.RoleAdmin},
			{UserID: memberID, Role: models.RoleMember},
		},
	}
}

func TestCanPost(t *testing.T) {
	team := testTeam()

	assert.True(t, CanPost(leaderID, team))
	assert.True(t, CanPost(adminID, team))
	assert.False(t, CanPost(memberID, team))
	assert.False(t, CanPost(outsiderID, team))
}

func TestCanEditDeleteMessage(t *testing.T) {
	team := testTeam()
	msg := &models.Message{SenderID: memberID}

	// Sender may edit and delete their own message.
	assert.True(t, CanEditMessage(memberID, team, msg))
	assert.True(t, CanDeleteMessage(memberID, team, msg))

	// Leader and admins may act on anyone's message.
	assert.True(t, CanEditMessage(leaderID, team, msg))
	assert.True(t, CanDeleteMessage(adminID, team, msg))

	// Everyone else may not, regardless of message kind.
	for _, kind := range []string{models.MessageKindText, models.MessageKindImage, models.MessageKindFile, models.MessageKindCallLink} {
		m := &models.Message{SenderID: memberID, Kind: kind}
		assert.False(t, CanEditMessage(outsiderID, team, m), "kind %s", kind)
		assert.False(t, CanDeleteMessage(outsiderID, team, m), "kind %s", kind)
	}

	// Another plain member who is not the sender may not either.
	other := &models.Message{SenderID: leaderID}
	assert.False(t, CanEditMessage(memberID, team, other))
}

func TestDeletedMessagesAdmitNoActions(t *testing.T) {
	team := testTeam()
	msg := &models.Message{SenderID: memberID, Deleted: true}

	// Not even the sender, the leader or an admin may touch a tombstone.
	assert.False(t, CanEditMessage(memberID, team, msg))
	assert.False(t, CanDeleteMessage(memberID, team, msg))
	assert.False(t, CanEditMessage(leaderID, team, msg))
	assert.False(t, CanDeleteMessage(adminID, team, msg))
}

func TestTeamManagement(t *testing.T) {
	team := testTeam()

	assert.True(t, CanManageTeam(leaderID, team))
	assert.True(t, CanManageTeam(adminID, team))
	assert.False(t, CanManageTeam(memberID, team))
	assert.False(t, CanManageTeam(outsiderID, team))

	// Team deletion is leader-only.
	assert.True(t, CanDeleteTeam(leaderID, team))
	assert.False(t, CanDeleteTeam(adminID, team))
	assert.False(t, CanDeleteTeam(memberID, team))
}

func TestIsMember(t *testing.T) {
	team := testTeam()
	assert.True(t, IsMember(memberID, team))
	assert.False(t, IsMember(outsiderID, team))
}
