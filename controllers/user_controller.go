package controller

import (
	"github.com/gofiber/fiber/v2"

	"tasky/middleware"
	"tasky/services"
	"tasky/utils"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) List(c *fiber.Ctx) error {
	users, err := uc.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(utils.SuccessResponse(users))
}

func (uc *UserController) Search(c *fiber.Ctx) error {
	users, err := uc.users.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(utils.SuccessResponse(users))
}

func (uc *UserController) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := uc.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(utils.SuccessResponse(user))
}

func (uc *UserController) Me(c *fiber.Ctx) error {
	user, err := uc.users.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(utils.SuccessResponse(user))
}

func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var patch services.ProfilePatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}

	user, err := uc.users.UpdateProfile(c.UserContext(), middleware.UserID(c), patch)
	if err != nil {
		return err
	}
	return c.JSON(utils.Envelope{Success: true, Message: "Profile updated", Data: user})
}

func (uc *UserController) UploadAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No file uploaded", nil)
	}

	url, err := uc.users.UploadAvatar(c.UserContext(), middleware.UserID(c), file)
	if err != nil {
		return err
	}
	return c.JSON(utils.Envelope{
		Success: true,
		Message: "Avatar uploaded successfully",
		Data:    fiber.Map{"avatarUrl": url},
	})
}

func (uc *UserController) ChangePassword(c *fiber.Ctx) error {
	var req services.ChangePasswordInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := uc.users.ChangePassword(c.UserContext(), middleware.UserID(c), req); err != nil {
		return err
	}
	return c.JSON(utils.MessageResponse("Password changed successfully"))
}
