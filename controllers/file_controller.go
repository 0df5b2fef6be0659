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

type FileController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewFileController(db *gorm.DB, logger *log.Logger) *FileController {
	return &FileController{
		DB:     db,
		Logger: logger,
	}
}

// ListFiles returns the attachments still referenced by live messages in
// a team. Attachments orphaned by tombstoned messages never show up.
func (fc *FileController) ListFiles(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	var team models.Team
	if err := fc.DB.Preload("Members").First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.RespondError(c, apperrors.NotFound("team"))
		}
		return utils.RespondError(c, apperrors.Internal("Failed to load team", err))
	}
	if !permissions.IsMember(user.ID, &team) {
		return utils.RespondError(c, apperrors.Authorization("You are not a member of this team"))
	}

	var attachments []models.Attachment
	if err := fc.DB.
		Joins("JOIN messages ON messages.attachment_id = attachments.id").
		Where("attachments.team_id = ? AND messages.deleted = ?", teamID, false).
		Order("attachments.created_at desc").
		Find(&attachments).Error; err != nil {
		fc.Logger.Printf("list files for team %d: %v", teamID, err)
		return utils.RespondError(c, apperrors.Internal("Failed to list files", err))
	}

	return c.JSON(fiber.Map{"files": attachments})
}

// DownloadFile redirects to the attachment's public URL. Membership of
// the owning team is required; tombstoned attachments are gone.
func (fc *FileController) DownloadFile(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	fileID := utils.ParseUint(c.Params("id"))

	var attachment models.Attachment
	if err := fc.DB.First(&attachment, fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.RespondError(c, apperrors.NotFound("file"))
		}
		return utils.RespondError(c, apperrors.Internal("Failed to load file", err))
	}

	var team models.Team
	if err := fc.DB.Preload("Members").First(&team, attachment.TeamID).Error; err != nil {
		return utils.RespondError(c, apperrors.Internal("Failed to load team", err))
	}
	if !permissions.IsMember(user.ID, &team) {
		return utils.RespondError(c, apperrors.Authorization("You are not a member of this team"))
	}

	var live int64
	if err := fc.DB.Model(&models.Message{}).
		Where("attachment_id = ? AND deleted = ?", attachment.ID, false).
		Count(&live).Error; err != nil {
		return utils.RespondError(c, apperrors.Internal("Failed to load file", err))
	}
	if live == 0 {
		return utils.RespondError(c, apperrors.NotFound("file"))
	}

	return c.Redirect(attachment.URL, fiber.StatusFound)
}
