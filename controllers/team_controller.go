package controller

import (
	"github.com/gofiber/fiber/v2"

	"tasky/middleware"
	"tasky/services"
	"tasky/utils"
)

type AddMemberRequest struct {
	Email string `json:"email"`
}

type RemoveMemberRequest struct {
	UserID uint `json:"userId"`
}

type TransferLeadershipRequest struct {
	NewLeaderID uint `json:"newLeaderId"`
}

type TeamController struct {
	teams *services.TeamService
}

func NewTeamController(teams *services.TeamService) *TeamController {
	return &TeamController{teams: teams}
}

func (tc *TeamController) List(c *fiber.Ctx) error {
	teams, err := tc.teams.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(utils.SuccessResponse(teams))
}

func (tc *TeamController) Create(c *fiber.Ctx) error {
	var req services.TeamInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	team, err := tc.teams.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) Get(c *fiber.Ctx) error {
	teamID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	team, err := tc.teams.Detail(c.UserContext(), middleware.UserID(c), teamID)
	if err != nil {
		return err
	}
	return c.JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) Update(c *fiber.Ctx) error {
	teamID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req services.TeamInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := tc.teams.Update(c.UserContext(), middleware.UserID(c), teamID, req); err != nil {
		return err
	}
	return c.JSON(utils.MessageResponse("Team updated successfully"))
}

func (tc *TeamController) Delete(c *fiber.Ctx) error {
	teamID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := tc.teams.Delete(c.UserContext(), middleware.UserID(c), teamID); err != nil {
		return err
	}
	return c.JSON(utils.MessageResponse("Team deleted successfully"))
}

func (tc *TeamController) AddMember(c *fiber.Ctx) error {
	teamID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req AddMemberRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	added, err := tc.teams.AddMember(c.UserContext(), middleware.UserID(c), teamID, req.Email)
	if err != nil {
		return err
	}
	if !added {
		return c.JSON(utils.MessageResponse("User is already a member"))
	}
	return c.JSON(utils.MessageResponse("Member invited"))
}

func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	teamID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req RemoveMemberRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.UserID == 0 {
		return services.NewValidation("Validation failed", utils.FieldError{Field: "userId", Message: "userId is required"})
	}

	if err := tc.teams.RemoveMember(c.UserContext(), middleware.UserID(c), teamID, req.UserID); err != nil {
		return err
	}
	return c.JSON(utils.MessageResponse("Member removed successfully"))
}

func (tc *TeamController) Leave(c *fiber.Ctx) error {
	teamID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := tc.teams.Leave(c.UserContext(), middleware.UserID(c), teamID); err != nil {
		return err
	}
	return c.JSON(utils.MessageResponse("Left team successfully"))
}

func (tc *TeamController) TransferLeadership(c *fiber.Ctx) error {
	teamID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req TransferLeadershipRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.NewLeaderID == 0 {
		return services.NewValidation("Validation failed", utils.FieldError{Field: "newLeaderId", Message: "newLeaderId is required"})
	}

	if err := tc.teams.TransferLeadership(c.UserContext(), middleware.UserID(c), teamID, req.NewLeaderID); err != nil {
		return err
	}
	return c.JSON(utils.MessageResponse("Leadership transferred successfully"))
}
