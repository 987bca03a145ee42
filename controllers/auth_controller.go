package controller

import (
	"github.com/gofiber/fiber/v2"

	"tasky/middleware"
	"tasky/services"
	"tasky/utils"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, token, err := ac.auth.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(utils.Envelope{Success: true, Data: user, Token: token})
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, token, err := ac.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(utils.Envelope{Success: true, Data: user, Token: token})
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	user, err := ac.auth.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(utils.SuccessResponse(user))
}
