package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pscheid92/syncvision/internal/domain"
	apperrors "github.com/pscheid92/syncvision/internal/platform/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	msgInvalidBody     = "Invalid request body."
	msgMissingRequired = "Title, description, and dueDate are required."

	dateOnlyLayout = "2006-01-02"
)

var requiredTaskFields = []string{"title", "description", "dueDate"}

const taskInputSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": false,
	"required": ["title", "description", "dueDate"],
	"properties": {
		"title":       {"type": "string", "minLength": 1},
		"description": {"type": "string", "minLength": 1},
		"status":      {"type": "string", "enum": %s},
		"assignedTo":  {"type": ["string", "null"]},
		"dueDate":     {"type": "string", "minLength": 1}
	}
}`

var taskSchema = compileTaskSchema()

// compileTaskSchema fills the status enum from domain.TaskStatuses.
func compileTaskSchema() *jsonschema.Schema {
	statuses, err := sonic.ConfigStd.Marshal(domain.TaskStatuses)
	if err != nil {
		panic(fmt.Sprintf("encode task statuses: %v", err))
	}
	return jsonschema.MustCompileString("task-input.json", fmt.Sprintf(taskInputSchema, statuses))
}

// taskInput mirrors the accepted request body after schema validation.
type taskInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	AssignedTo  *string `json:"assignedTo"`
	DueDate     string  `json:"dueDate"`
}

// parseNewTask validates a create-task request body and converts it to domain input.
func parseNewTask(body []byte) (domain.NewTask, error) {
	var doc any
	if err := sonic.ConfigStd.Unmarshal(body, &doc); err != nil {
		return domain.NewTask{}, apperrors.ValidationError(msgInvalidBody)
	}
	fields, ok := doc.(map[string]any)
	if !ok {
		return domain.NewTask{}, apperrors.ValidationError(msgInvalidBody)
	}

	for _, name := range requiredTaskFields {
		if isBlank(fields[name]) {
			return domain.NewTask{}, apperrors.ValidationError(msgMissingRequired)
		}
	}

	if err := taskSchema.Validate(fields); err != nil {
		return domain.NewTask{}, schemaError(err)
	}

	var in taskInput
	if err := sonic.ConfigStd.Unmarshal(body, &in); err != nil {
		return domain.NewTask{}, apperrors.ValidationError(msgInvalidBody)
	}

	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		return domain.NewTask{}, apperrors.ValidationError("dueDate must be an RFC 3339 timestamp or a YYYY-MM-DD date.").
			WithField("field", "dueDate")
	}

	task := domain.NewTask{
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.TaskStatus(in.Status),
		DueDate:     dueDate,
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}
	if in.AssignedTo != nil {
		task.AssignedTo = *in.AssignedTo
	}
	return task, nil
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	default:
		return false
	}
}

// parseDueDate accepts full timestamps and bare dates; bare dates are midnight UTC.
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnlyLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse due date %q: %w", s, err)
	}
	return t, nil
}

// schemaError reports the first leaf violation, naming the offending field.
func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return apperrors.ValidationError(msgInvalidBody)
	}

	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" {
		return apperrors.ValidationError(fmt.Sprintf("Invalid request body: %s.", leaf.Message))
	}
	return apperrors.ValidationError(fmt.Sprintf("Invalid %s: %s.", field, leaf.Message)).WithField("field", field)
}
