package controller

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"tasky/middleware"
	"tasky/services"
	"tasky/utils"
)

type TaskController struct {
	tasks    *services.TaskService
	comments *services.CommentService
}

func NewTaskController(tasks *services.TaskService, comments *services.CommentService) *TaskController {
	return &TaskController{tasks: tasks, comments: comments}
}

func (tc *TaskController) List(c *fiber.Ctx) error {
	tasks, err := tc.tasks.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(utils.SuccessResponse(tasks))
}

func (tc *TaskController) Create(c *fiber.Ctx) error {
	var req services.CreateTaskInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	task, err := tc.tasks.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(task))
}

func (tc *TaskController) Get(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	task, err := tc.tasks.Get(c.UserContext(), middleware.UserID(c), taskID)
	if err != nil {
		return err
	}
	return c.JSON(utils.SuccessResponse(task))
}

func (tc *TaskController) Update(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var patch services.TaskPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}

	updated, err := tc.tasks.Update(c.UserContext(), middleware.UserID(c), taskID, patch)
	if err != nil {
		return err
	}
	if !updated {
		return c.JSON(utils.Envelope{Success: true, Message: "No changes to update", Data: fiber.Map{"updated": false}})
	}
	return c.JSON(utils.Envelope{Success: true, Message: "Task updated", Data: fiber.Map{"updated": true}})
}

func (tc *TaskController) Delete(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := tc.tasks.Delete(c.UserContext(), middleware.UserID(c), taskID); err != nil {
		return err
	}
	return c.JSON(utils.MessageResponse("Task deleted"))
}

func (tc *TaskController) Remind(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	assignee, err := tc.tasks.Remind(c.UserContext(), middleware.UserID(c), taskID)
	if err != nil {
		return err
	}
	return c.JSON(utils.MessageResponse(fmt.Sprintf("Reminder sent to %s", assignee.Name)))
}

func (tc *TaskController) AddComment(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req services.CommentInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	comment, err := tc.comments.Add(c.UserContext(), middleware.UserID(c), taskID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(comment))
}

func (tc *TaskController) DeleteComment(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := paramID(c, "commentId")
	if err != nil {
		return err
	}

	if err := tc.comments.Delete(c.UserContext(), middleware.UserID(c), taskID, commentID); err != nil {
		return err
	}
	return c.JSON(utils.MessageResponse("Comment removed"))
}
