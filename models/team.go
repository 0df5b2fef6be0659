package models

import "gorm.io/gorm"

// Team member roles. The leader is the single owning member of a team;
// admins share every privilege except deleting the team itself.
const (
	RoleLeader = "leader"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Join request statuses
const (
	JoinRequestPending  = "pending"
	JoinRequestApproved = "approved"
	JoinRequestDeclined = "declined"
)

// Team represents a collaboration space shared by a group of users
type Team struct {
	gorm.Model
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	LogoURL     *string `json:"logo_url,omitempty"`

	// Relations
	Members      []TeamMember  `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	JoinRequests []JoinRequest `gorm:"foreignKey:TeamID" json:"join_requests,omitempty"`
}

// TeamMember represents team members and their roles
type TeamMember struct {
	gorm.Model
	TeamID uint `gorm:"not null;index" json:"team_id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	Role string `gorm:"default:'member'" json:"role"` // leader, admin, member

	// Relations
	Team Team `json:"-"`
	User User `json:"user,omitempty"`
}

// JoinRequest represents a user's pending request to join a team
type JoinRequest struct {
	gorm.Model
	TeamID uint   `gorm:"not null;index" json:"team_id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Status string `gorm:"default:'pending'" json:"status"`

	// Relations
	Team Team `json:"-"`
	User User `json:"user,omitempty"`
}

// RoleOf returns the role the given user holds on the team, or an empty
// string for non-members. The Members relation must be preloaded.
func (t *Team) RoleOf(userID uint) string {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ""
}

// HasPendingRequest reports whether the user has an undecided join request.
// The JoinRequests relation must be preloaded.
func (t *Team) HasPendingRequest(userID uint) bool {
	for _, r := range t.JoinRequests {
		if r.UserID == userID && r.Status == JoinRequestPending {
			return true
		}
	}
	return false
}
