package services_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasky/models"
	"tasky/services"
)

func TestTaskPatchPresence(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		empty      bool
		restricted bool
		completes  bool
		columns    []string
	}{
		{name: "empty object", body: `{}`, empty: true},
		{name: "unknown keys only", body: `{"foo":1}`, empty: true},
		{name: "status only", body: `{"status":"in_progress"}`, columns: []string{"status"}},
		{name: "done", body: `{"status":"done"}`, completes: true, columns: []string{"status"}},
		{name: "null deadline", body: `{"deadline":null}`, restricted: true, columns: []string{"deadline"}},
		{name: "empty description", body: `{"description":""}`, restricted: true, columns: []string{"description"}},
		{
			name:       "everything",
			body:       `{"title":"T","description":"D","deadline":"2030-01-02T15:04:05Z","status":"done","assigned_to":7}`,
			restricted: true,
			completes:  true,
			columns:    []string{"title", "description", "deadline", "status", "assigned_to"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p services.TaskPatch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))

			assert.Equal(t, tt.empty, p.Empty())
			assert.Equal(t, tt.restricted, p.TouchesRestricted())
			assert.Equal(t, tt.completes, p.CompletesTask())

			var cols []string
			for c := range p.Columns() {
				cols = append(cols, c)
			}
			assert.ElementsMatch(t, tt.columns, cols)
		})
	}
}

func TestTaskPatchValues(t *testing.T) {
	var p services.TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"deadline":"2030-01-02T15:04:05Z","assigned_to":null,"status":"todo"}`), &p))

	cols := p.Columns()
	require.NotNil(t, cols["deadline"])
	assert.Equal(t, 2030, p.Deadline.Value.Year())
	assert.Nil(t, cols["assigned_to"].(*uint))
	assert.Equal(t, models.TaskStatusTodo, cols["status"])
}

func TestTaskPatchValidate(t *testing.T) {
	tests := []struct {
		body string
		ok   bool
	}{
		{body: `{"status":"done"}`, ok: true},
		{body: `{"status":"archived"}`},
		{body: `{"title":""}`},
		{body: `{"title":"ok"}`, ok: true},
		{body: `{"deadline":null,"assigned_to":null}`, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var p services.TaskPatch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			err := p.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, services.KindValidation, kindOf(err))
		})
	}
}
