package controller

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"tasky/events"
	"tasky/middleware"
	"tasky/services"
	"tasky/utils"
)

type NotificationController struct {
	notifications *services.NotificationService
	bus           events.Bus
	log           logrus.FieldLogger
}

func NewNotificationController(notifications *services.NotificationService, bus events.Bus, log logrus.FieldLogger) *NotificationController {
	return &NotificationController{
		notifications: notifications,
		bus:           bus,
		log:           log.WithField("component", "notification_stream"),
	}
}

func (nc *NotificationController) List(c *fiber.Ctx) error {
	notifications, err := nc.notifications.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(utils.SuccessResponse(notifications))
}

func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := nc.notifications.MarkRead(c.UserContext(), middleware.UserID(c), id); err != nil {
		return err
	}
	return c.JSON(utils.MessageResponse("Notification marked as read"))
}

func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	count, err := nc.notifications.MarkAllRead(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(utils.Envelope{
		Success: true,
		Message: fmt.Sprintf("%d notifications marked as read", count),
		Data:    fiber.Map{"updated": count},
	})
}

// RequireUpgrade lets only websocket handshakes through
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Stream forwards the caller's new notifications over a websocket
func (nc *NotificationController) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()

		claims, ok := conn.Locals(middleware.IdentityKey).(*utils.Claims)
		if !ok {
			return
		}
		log := nc.log.WithField("user_id", claims.ID)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub, err := nc.bus.Subscribe(ctx, claims.ID)
		if err != nil {
			log.WithError(err).Error("Failed to subscribe to notifications")
			return
		}
		defer sub.Close()

		// Reads only detect the client going away
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		log.Debug("Notification stream opened")
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-sub.C():
				if !ok {
					return
				}
				if err := conn.WriteJSON(n); err != nil {
					log.WithError(err).Debug("Notification stream closed")
					return
				}
			}
		}
	})
}
