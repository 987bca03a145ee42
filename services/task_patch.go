package services

import (
	"time"

	"tasky/models"
	"tasky/utils"
)

// TaskPatch is a partial task update. A field takes part when its key was
// present in the request, whatever its value.
type TaskPatch struct {
	Title       utils.Optional[string]            `json:"title"`
	Description utils.Optional[string]            `json:"description"`
	Deadline    utils.Optional[*time.Time]        `json:"deadline"`
	Status      utils.Optional[models.TaskStatus] `json:"status"`
	AssignedTo  utils.Optional[*uint]             `json:"assigned_to"`
}

// Empty reports whether no field is present
func (p TaskPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Deadline.Set && !p.Status.Set && !p.AssignedTo.Set
}

// TouchesRestricted reports whether the patch changes anything other than status
func (p TaskPatch) TouchesRestricted() bool {
	return p.Title.Set || p.Description.Set || p.Deadline.Set || p.AssignedTo.Set
}

// CompletesTask reports whether the patch moves the task to done
func (p TaskPatch) CompletesTask() bool {
	return p.Status.Set && p.Status.Value == models.TaskStatusDone
}

// Columns maps present fields to their task columns
func (p TaskPatch) Columns() map[string]interface{} {
	columns := make(map[string]interface{}, 5)
	if p.Title.Set {
		columns["title"] = p.Title.Value
	}
	if p.Description.Set {
		columns["description"] = p.Description.Value
	}
	if p.Deadline.Set {
		columns["deadline"] = p.Deadline.Value
	}
	if p.Status.Set {
		columns["status"] = p.Status.Value
	}
	if p.AssignedTo.Set {
		columns["assigned_to"] = p.AssignedTo.Value
	}
	return columns
}

// Validate checks the present fields
func (p TaskPatch) Validate() error {
	var fields []utils.FieldError
	if p.Title.Set {
		fields = append(fields, utils.ValidateVar("title", p.Title.Value, "required,min=2,max=255")...)
	}
	if p.Status.Set && !p.Status.Value.Valid() {
		fields = append(fields, utils.FieldError{Field: "status", Message: "status must be one of todo, in_progress, done"})
	}
	if len(fields) > 0 {
		return NewValidation("Validation failed", fields...)
	}
	return nil
}
