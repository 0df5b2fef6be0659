package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"teamspace/models"
	"teamspace/realtime"
)

type PushController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Hub    *realtime.Hub
}

func NewPushController(db *gorm.DB, logger *log.Logger, hub *realtime.Hub) *PushController {
	return &PushController{
		DB:     db,
		Logger: logger,
		Hub:    hub,
	}
}

// UpgradeRequired rejects plain HTTP requests on the websocket route.
func (pc *PushController) UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler serves the push channel. The connection is authenticated by
// the JWT middleware before the upgrade; join requests are checked
// against team membership in the database.
func (pc *PushController) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		user, ok := conn.Locals("user").(*models.User)
		if !ok {
			conn.Close()
			return
		}

		client := realtime.NewClient(pc.Hub, conn, user.ID)
		client.Serve(func(userID, teamID uint) bool {
			var count int64
			if err := pc.DB.Model(&models.TeamMember{}).
				Where("team_id = ? AND user_id = ?", teamID, userID).
				Count(&count).Error; err != nil {
				pc.Logger.Printf("membership check user=%d team=%d: %v", userID, teamID, err)
				return false
			}
			return count > 0
		})
	})
}
