// Package permissions holds the single copy of the collaboration
// permission rules. Every predicate is a pure function of its arguments
// so callers re-evaluate on every use; nothing here caches a decision.
package permissions

import "teamspace/models"

// CanPost reports whether the user may compose messages, upload files or
// start a call in the team: leaders and admins only.
func CanPost(userID uint, team *models.Team) bool {
	role := team.RoleOf(userID)
	return role == models.RoleLeader || role == models.RoleAdmin
}

// CanEditMessage reports whether the user may edit the message. Tombstoned
// messages can never be edited. Otherwise the sender, the team leader and
// team admins may.
func CanEditMessage(userID uint, team *models.Team, msg *models.Message) bool {
	if msg.Deleted {
		return false
	}
	if msg.SenderID == userID {
		return true
	}
	role := team.RoleOf(userID)
	return role == models.RoleLeader || role == models.RoleAdmin
}

// CanDeleteMessage follows the same rule as CanEditMessage.
func CanDeleteMessage(userID uint, team *models.Team, msg *models.Message) bool {
	return CanEditMessage(userID, team, msg)
}

// CanManageTeam reports whether the user may change team metadata, decide
// join requests or remove members: leaders and admins only.
func CanManageTeam(userID uint, team *models.Team) bool {
	role := team.RoleOf(userID)
	return role == models.RoleLeader || role == models.RoleAdmin
}

// CanDeleteTeam is restricted to the leader.
func CanDeleteTeam(userID uint, team *models.Team) bool {
	return team.RoleOf(userID) == models.RoleLeader
}

// IsMember reports plain membership, any role.
func IsMember(userID uint, team *models.Team) bool {
	return team.RoleOf(userID) != ""
}
