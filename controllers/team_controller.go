package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"teamspace/apperrors"
	"teamspace/models"
	"teamspace/permissions"
	"teamspace/utils"
)

type TeamController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTeamController(db *gorm.DB, logger *log.Logger) *TeamController {
	return &TeamController{
		DB:     db,
		Logger: logger,
	}
}

// TeamSummary is a team plus the caller's relationship to it.
type TeamSummary struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	LogoURL      *string `json:"logo_url,omitempty"`
	MemberCount  int     `json:"member_count"`
	Relationship string  `json:"relationship"` // leader, admin, member, pending, none
}

func relationshipOf(userID uint, team *models.Team) string {
	if role := team.RoleOf(userID); role != "" {
		return role
	}
	if team.HasPendingRequest(userID) {
		return "pending"
	}
	return "none"
}

// ListTeams returns every team with the caller's relationship to each.
func (tc *TeamController) ListTeams(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var teams []models.Team
	if err := tc.DB.Preload("Members").Preload("JoinRequests").Order("name asc").Find(&teams).Error; err != nil {
		tc.Logger.Printf("list teams: %v", err)
		return utils.RespondError(c, apperrors.Internal("Failed to list teams", err))
	}

	summaries := make([]TeamSummary, 0, len(teams))
	for i := range teams {
		t := &teams[i]
		summaries = append(summaries, TeamSummary{
			ID:           t.ID,
			Name:         t.Name,
			Description:  t.Description,
			LogoURL:      t.LogoURL,
			MemberCount:  len(t.Members),
			Relationship: relationshipOf(user.ID, t),
		})
	}

	return c.JSON(fiber.Map{"teams": summaries})
}

func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	team, err := tc.loadTeam(teamID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	if !permissions.IsMember(user.ID, team) {
		return utils.RespondError(c, apperrors.Authorization("You are not a member of this team"))
	}

	return c.JSON(team)
}

type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url"`
}

// CreateTeam creates a team with the caller as its leader.
func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, apperrors.Validation("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, apperrors.Validation(err.Error()))
	}

	team := models.Team{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.LogoURL != "" {
		team.LogoURL = utils.Pointer(req.LogoURL)
	}

	tx := tc.DB.Begin()
	if err := tx.Create(&team).Error; err != nil {
		tx.Rollback()
		tc.Logger.Printf("create team: %v", err)
		return utils.RespondError(c, apperrors.Internal("Failed to create team", err))
	}
	if err := tx.Create(&models.TeamMember{
		TeamID: team.ID,
		UserID: user.ID,
		Role:   models.RoleLeader,
	}).Error; err != nil {
		tx.Rollback()
		tc.Logger.Printf("create team leader: %v", err)
		return utils.RespondError(c, apperrors.Internal("Failed to create team", err))
	}
	if err := tx.Commit().Error; err != nil {
		return utils.RespondError(c, apperrors.Internal("Failed to create team", err))
	}

	return c.Status(fiber.StatusCreated).JSON(team)
}

type UpdateTeamRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	LogoURL     *string `json:"logo_url" validate:"omitempty,url"`
}

func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	team, err := tc.loadTeam(teamID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	if !permissions.CanManageTeam(user.ID, team) {
		return utils.RespondError(c, apperrors.Authorization("Only leaders and admins can update the team"))
	}

	var req UpdateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, apperrors.Validation("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, apperrors.Validation(err.Error()))
	}

	if req.Name != nil {
		team.Name = *req.Name
	}
	if req.Description != nil {
		team.Description = *req.Description
	}
	if req.LogoURL != nil {
		team.LogoURL = req.LogoURL
	}

	if err := tc.DB.Save(team).Error; err != nil {
		tc.Logger.Printf("update team %d: %v", teamID, err)
		return utils.RespondError(c, apperrors.Internal("Failed to update team", err))
	}

	return c.JSON(team)
}

// DeleteTeam removes a team and its memberships. Leader only.
func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	team, err := tc.loadTeam(teamID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	if !permissions.CanDeleteTeam(user.ID, team) {
		return utils.RespondError(c, apperrors.Authorization("Only the team leader can delete the team"))
	}

	tx := tc.DB.Begin()
	if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
		tx.Rollback()
		return utils.RespondError(c, apperrors.Internal("Failed to delete team", err))
	}
	if err := tx.Where("team_id = ?", teamID).Delete(&models.JoinRequest{}).Error; err != nil {
		tx.Rollback()
		return utils.RespondError(c, apperrors.Internal("Failed to delete team", err))
	}
	if err := tx.Delete(team).Error; err != nil {
		tx.Rollback()
		return utils.RespondError(c, apperrors.Internal("Failed to delete team", err))
	}
	if err := tx.Commit().Error; err != nil {
		return utils.RespondError(c, apperrors.Internal("Failed to delete team", err))
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RequestJoin files a pending join request for the caller.
func (tc *TeamController) RequestJoin(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	team, err := tc.loadTeam(teamID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	if permissions.IsMember(user.ID, team) {
		return utils.RespondError(c, apperrors.Conflict("You are already a member of this team"))
	}
	if team.HasPendingRequest(user.ID) {
		return utils.RespondError(c, apperrors.Conflict("You already have a pending request for this team"))
	}

	request := models.JoinRequest{
		TeamID: teamID,
		UserID: user.ID,
		Status: models.JoinRequestPending,
	}
	if err := tc.DB.Create(&request).Error; err != nil {
		tc.Logger.Printf("create join request: %v", err)
		return utils.RespondError(c, apperrors.Internal("Failed to create join request", err))
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

func (tc *TeamController) ListJoinRequests(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	team, err := tc.loadTeam(teamID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	if !permissions.CanManageTeam(user.ID, team) {
		return utils.RespondError(c, apperrors.Authorization("Only leaders and admins can review join requests"))
	}

	var requests []models.JoinRequest
	if err := tc.DB.Preload("User").
		Where("team_id = ? AND status = ?", teamID, models.JoinRequestPending).
		Order("created_at asc").
		Find(&requests).Error; err != nil {
		return utils.RespondError(c, apperrors.Internal("Failed to list join requests", err))
	}

	return c.JSON(fiber.Map{"requests": requests})
}

type JoinDecisionRequest struct {
	Approve bool `json:"approve"`
}

// DecideJoinRequest approves or declines a pending join request.
// Approval creates the membership; either way the requester is emailed.
func (tc *TeamController) DecideJoinRequest(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))
	requestID := utils.ParseUint(c.Params("requestId"))

	team, err := tc.loadTeam(teamID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	if !permissions.CanManageTeam(user.ID, team) {
		return utils.RespondError(c, apperrors.Authorization("Only leaders and admins can review join requests"))
	}

	var req JoinDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, apperrors.Validation("Invalid request body"))
	}

	var request models.JoinRequest
	if err := tc.DB.Preload("User").
		Where("id = ? AND team_id = ?", requestID, teamID).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.RespondError(c, apperrors.NotFound("join request"))
		}
		return utils.RespondError(c, apperrors.Internal("Failed to load join request", err))
	}
	if request.Status != models.JoinRequestPending {
		return utils.RespondError(c, apperrors.Conflict("Join request has already been decided"))
	}

	tx := tc.DB.Begin()
	if req.Approve {
		request.Status = models.JoinRequestApproved
		if err := tx.Create(&models.TeamMember{
			TeamID: teamID,
			UserID: request.UserID,
			Role:   models.RoleMember,
		}).Error; err != nil {
			tx.Rollback()
			return utils.RespondError(c, apperrors.Internal("Failed to approve join request", err))
		}
	} else {
		request.Status = models.JoinRequestDeclined
	}
	if err := tx.Save(&request).Error; err != nil {
		tx.Rollback()
		return utils.RespondError(c, apperrors.Internal("Failed to decide join request", err))
	}
	if err := tx.Commit().Error; err != nil {
		return utils.RespondError(c, apperrors.Internal("Failed to decide join request", err))
	}

	if request.User.Email != "" {
		if err := utils.SendJoinRequestDecisionEmail(request.User.Email, team.Name, req.Approve); err != nil {
			tc.Logger.Printf("join decision email to %s: %v", request.User.Email, err)
		}
	}

	return c.JSON(request)
}

// RemoveMember drops a member from the team. Leaders and admins only;
// the leader cannot be removed.
func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))
	memberID := utils.ParseUint(c.Params("userId"))

	team, err := tc.loadTeam(teamID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	if !permissions.CanManageTeam(user.ID, team) {
		return utils.RespondError(c, apperrors.Authorization("Only leaders and admins can remove members"))
	}
	if team.RoleOf(memberID) == models.RoleLeader {
		return utils.RespondError(c, apperrors.Authorization("The team leader cannot be removed"))
	}

	result := tc.DB.Where("team_id = ? AND user_id = ?", teamID, memberID).Delete(&models.TeamMember{})
	if result.Error != nil {
		return utils.RespondError(c, apperrors.Internal("Failed to remove member", result.Error))
	}
	if result.RowsAffected == 0 {
		return utils.RespondError(c, apperrors.NotFound("member"))
	}

	var removed models.User
	if err := tc.DB.First(&removed, memberID).Error; err == nil && removed.Email != "" {
		if err := utils.SendMemberRemovedEmail(removed.Email, team.Name); err != nil {
			tc.Logger.Printf("member removed email to %s: %v", removed.Email, err)
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// loadTeam fetches a team with members and pending requests preloaded.
func (tc *TeamController) loadTeam(teamID uint) (*models.Team, error) {
	var team models.Team
	if err := tc.DB.Preload("Members").Preload("Members.User").Preload("JoinRequests").
		First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("team")
		}
		return nil, apperrors.Internal("Failed to load team", err)
	}
	return &team, nil
}
