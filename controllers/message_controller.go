package controller

import (
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"teamspace/apperrors"
	"teamspace/models"
	"teamspace/permissions"
	"teamspace/realtime"
	"teamspace/storage"
	"teamspace/utils"
	"teamspace/validation"
)

type MessageController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Hub    *realtime.Hub
	Store  storage.Store
}

func NewMessageController(db *gorm.DB, logger *log.Logger, hub *realtime.Hub, store storage.Store) *MessageController {
	return &MessageController{
		DB:     db,
		Logger: logger,
		Hub:    hub,
		Store:  store,
	}
}

// GetHistory returns the full feed for a team, oldest first. The
// response names the team so callers can drop replies that arrive after
// they have switched teams.
func (mc *MessageController) GetHistory(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	team, err := mc.loadTeam(teamID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	if !permissions.IsMember(user.ID, team) {
		return utils.RespondError(c, apperrors.Authorization("You are not a member of this team"))
	}

	var messages []models.Message
	if err := mc.DB.Preload("Sender").Preload("Attachment").
		Where("team_id = ?", teamID).
		Order("created_at asc, id asc").
		Find(&messages).Error; err != nil {
		mc.Logger.Printf("history for team %d: %v", teamID, err)
		return utils.RespondError(c, apperrors.Internal("Failed to load messages", err))
	}

	payloads := make([]models.MessagePayload, 0, len(messages))
	for i := range messages {
		payloads = append(payloads, messages[i].Payload())
	}

	return c.JSON(fiber.Map{
		"team_id":  teamID,
		"messages": payloads,
	})
}

type SendMessageRequest struct {
	Kind    string `json:"kind" validate:"omitempty,oneof=text call_link"`
	Content string `json:"content"`
}

// SendMessage posts a text or call-link message. Posting requires the
// leader or admin role.
func (mc *MessageController) SendMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	team, err := mc.loadTeam(teamID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	if !permissions.CanPost(user.ID, team) {
		return utils.RespondError(c, apperrors.Authorization("Only leaders and admins can post messages"))
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, apperrors.Validation("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, apperrors.Validation(err.Error()))
	}
	if req.Kind == "" {
		req.Kind = models.MessageKindText
	}
	if strings.TrimSpace(req.Content) == "" {
		return utils.RespondError(c, apperrors.Validation("Message content cannot be empty"))
	}

	msg := models.Message{
		TeamID:   teamID,
		SenderID: user.ID,
		Kind:     req.Kind,
		Content:  req.Content,
		Sender:   *user,
	}
	if err := mc.DB.Omit("Sender").Create(&msg).Error; err != nil {
		mc.Logger.Printf("send message in team %d: %v", teamID, err)
		return utils.RespondError(c, apperrors.Internal("Failed to send message", err))
	}

	payload := msg.Payload()
	mc.Hub.Broadcast(realtime.Event{
		Type:    realtime.EventReceiveMessage,
		TeamID:  teamID,
		Message: payload,
	})

	return c.Status(fiber.StatusCreated).JSON(payload)
}

// UploadMessage posts a message carrying a file or image attachment.
// The upload is validated before any byte reaches the storage backend.
func (mc *MessageController) UploadMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	team, err := mc.loadTeam(teamID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	if !permissions.CanPost(user.ID, team) {
		return utils.RespondError(c, apperrors.Authorization("Only leaders and admins can post messages"))
	}

	attachment, data, err := mc.readUpload(c, teamID, user.ID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	kind := models.MessageKindFile
	if validation.IsImage(attachment.ContentType) {
		kind = models.MessageKindImage
	}

	result, err := mc.Store.Save(c.Context(), attachment.StorageKey, data, attachment.ContentType)
	if err != nil {
		mc.Logger.Printf("save upload %s: %v", attachment.StorageKey, err)
		return utils.RespondError(c, apperrors.Network("Failed to store the file", err))
	}
	attachment.URL = result.URL

	msg := models.Message{
		TeamID:   teamID,
		SenderID: user.ID,
		Kind:     kind,
		Content:  attachment.FileName,
		Sender:   *user,
	}

	tx := mc.DB.Begin()
	if err := tx.Create(attachment).Error; err != nil {
		tx.Rollback()
		return utils.RespondError(c, apperrors.Internal("Failed to save attachment", err))
	}
	msg.AttachmentID = &attachment.ID
	if err := tx.Omit("Sender").Create(&msg).Error; err != nil {
		tx.Rollback()
		return utils.RespondError(c, apperrors.Internal("Failed to send message", err))
	}
	if err := tx.Commit().Error; err != nil {
		return utils.RespondError(c, apperrors.Internal("Failed to send message", err))
	}
	msg.Attachment = attachment

	payload := msg.Payload()
	mc.Hub.Broadcast(realtime.Event{
		Type:    realtime.EventReceiveMessage,
		TeamID:  teamID,
		Message: payload,
	})

	return c.Status(fiber.StatusCreated).JSON(payload)
}

type EditMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// EditMessage rewrites the content of a text or call-link message.
// Allowed for the sender and for leaders and admins; tombstoned
// messages admit no edits.
func (mc *MessageController) EditMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	messageID := utils.ParseUint(c.Params("id"))

	msg, team, err := mc.loadMessage(messageID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	if !permissions.CanEditMessage(user.ID, team, msg) {
		if msg.Deleted {
			return utils.RespondError(c, apperrors.Authorization("Deleted messages cannot be edited"))
		}
		return utils.RespondError(c, apperrors.Authorization("You cannot edit this message"))
	}

	var req EditMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, apperrors.Validation("Invalid request body"))
	}
	if strings.TrimSpace(req.Content) == "" {
		return utils.RespondError(c, apperrors.Validation("Message content cannot be empty"))
	}

	now := time.Now().UTC()
	msg.Content = req.Content
	msg.Edited = true
	msg.EditedAt = &now

	if err := mc.DB.Omit("Sender", "Attachment").Save(msg).Error; err != nil {
		mc.Logger.Printf("edit message %d: %v", messageID, err)
		return utils.RespondError(c, apperrors.Internal("Failed to edit message", err))
	}

	payload := msg.Payload()
	mc.Hub.Broadcast(realtime.Event{
		Type:    realtime.EventMessageUpdated,
		TeamID:  msg.TeamID,
		Message: payload,
	})

	return c.JSON(payload)
}

// ReplaceAttachment swaps the attachment on a file or image message.
// The old blob is left behind for the cleanup worker.
func (mc *MessageController) ReplaceAttachment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	messageID := utils.ParseUint(c.Params("id"))

	msg, team, err := mc.loadMessage(messageID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	if !permissions.CanEditMessage(user.ID, team, msg) {
		if msg.Deleted {
			return utils.RespondError(c, apperrors.Authorization("Deleted messages cannot be edited"))
		}
		return utils.RespondError(c, apperrors.Authorization("You cannot edit this message"))
	}
	if msg.AttachmentID == nil {
		return utils.RespondError(c, apperrors.Validation("Message has no attachment to replace"))
	}

	attachment, data, err := mc.readUpload(c, msg.TeamID, user.ID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	kind := models.MessageKindFile
	if validation.IsImage(attachment.ContentType) {
		kind = models.MessageKindImage
	}

	result, err := mc.Store.Save(c.Context(), attachment.StorageKey, data, attachment.ContentType)
	if err != nil {
		mc.Logger.Printf("save replacement %s: %v", attachment.StorageKey, err)
		return utils.RespondError(c, apperrors.Network("Failed to store the file", err))
	}
	attachment.URL = result.URL

	now := time.Now().UTC()

	tx := mc.DB.Begin()
	if err := tx.Create(attachment).Error; err != nil {
		tx.Rollback()
		return utils.RespondError(c, apperrors.Internal("Failed to save attachment", err))
	}
	msg.AttachmentID = &attachment.ID
	msg.Kind = kind
	msg.Content = attachment.FileName
	msg.Edited = true
	msg.EditedAt = &now
	if err := tx.Omit("Sender", "Attachment").Save(msg).Error; err != nil {
		tx.Rollback()
		return utils.RespondError(c, apperrors.Internal("Failed to edit message", err))
	}
	if err := tx.Commit().Error; err != nil {
		return utils.RespondError(c, apperrors.Internal("Failed to edit message", err))
	}
	msg.Attachment = attachment

	payload := msg.Payload()
	mc.Hub.Broadcast(realtime.Event{
		Type:    realtime.EventMessageUpdated,
		TeamID:  msg.TeamID,
		Message: payload,
	})

	return c.JSON(payload)
}

// DeleteMessage tombstones a message in place. Deleting an already
// deleted message is a no-op that still returns the tombstone.
func (mc *MessageController) DeleteMessage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	messageID := utils.ParseUint(c.Params("id"))

	msg, team, err := mc.loadMessage(messageID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	if msg.Deleted {
		return c.JSON(msg.Payload())
	}
	if !permissions.CanDeleteMessage(user.ID, team, msg) {
		return utils.RespondError(c, apperrors.Authorization("You cannot delete this message"))
	}

	msg.Tombstone(time.Now().UTC())
	if err := mc.DB.Omit("Sender", "Attachment").Save(msg).Error; err != nil {
		mc.Logger.Printf("delete message %d: %v", messageID, err)
		return utils.RespondError(c, apperrors.Internal("Failed to delete message", err))
	}

	payload := msg.Payload()
	mc.Hub.Broadcast(realtime.Event{
		Type:    realtime.EventMessageDeleted,
		TeamID:  msg.TeamID,
		Message: payload,
	})

	return c.JSON(payload)
}

// readUpload validates the multipart "file" field and builds the
// attachment row. No storage or database work happens here.
func (mc *MessageController) readUpload(c *fiber.Ctx, teamID, uploaderID uint) (*models.Attachment, []byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, nil, apperrors.Validation("A file is required")
	}

	contentType := validation.NormalizeContentType(fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err := validation.CheckUpload(fileHeader.Filename, contentType, fileHeader.Size); err != nil {
		return nil, nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to read upload", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to read upload", err)
	}

	return &models.Attachment{
		TeamID:      teamID,
		UploaderID:  uploaderID,
		StorageKey:  storage.ObjectKey(teamID, fileHeader.Filename),
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
	}, data, nil
}

func (mc *MessageController) loadTeam(teamID uint) (*models.Team, error) {
	var team models.Team
	if err := mc.DB.Preload("Members").First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("team")
		}
		return nil, apperrors.Internal("Failed to load team", err)
	}
	return &team, nil
}

func (mc *MessageController) loadMessage(messageID uint) (*models.Message, *models.Team, error) {
	var msg models.Message
	if err := mc.DB.Preload("Sender").Preload("Attachment").First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NotFound("message")
		}
		return nil, nil, apperrors.Internal("Failed to load message", err)
	}

	team, err := mc.loadTeam(msg.TeamID)
	if err != nil {
		return nil, nil, err
	}
	return &msg, team, nil
}
