package models

import (
	"sort"

	"google.golang.org/genai"
)

// Function names the model may request.
const (
	FuncAddTask      = "add_task"
	FuncListTasks    = "list_tasks"
	FuncCompleteTask = "complete_task"
)

// ParamType is the JSON schema type of a function parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
)

// ParamSpec describes one function parameter.
type ParamSpec struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// FunctionSpec describes a local function exposed to the model.
type FunctionSpec struct {
	Name        string
	Description string
	Params      []ParamSpec
}

// FunctionSpecs is the fixed set of functions offered on every request.
var FunctionSpecs = []FunctionSpec{
	{
		Name:        FuncAddTask,
		Description: "Add a new task to the user's task list. Use this when the user wants to create or add a new task, todo, or reminder.",
		Params: []ParamSpec{{
			Name:        "task_name",
			Type:        ParamString,
			Description: "The name or description of the task to add. Should be clear and actionable.",
			Required:    true,
		}},
	},
	{
		Name:        FuncListTasks,
		Description: "List all tasks in the user's task list. Use this when the user wants to see their tasks, todos, or what they need to do.",
	},
	{
		Name:        FuncCompleteTask,
		Description: "Mark a task as completed. Use this when the user wants to finish, complete, or check off a specific task by its ID.",
		Params: []ParamSpec{{
			Name:        "task_id",
			Type:        ParamInteger,
			Description: "The numeric ID of the task to mark as completed.",
			Required:    true,
		}},
	},
}

// JSONSchema returns the parameter object schema as a plain JSON value.
// Undeclared properties are not allowed; "required" is omitted when empty.
func (f FunctionSpec) JSONSchema() map[string]any {
	props := make(map[string]any, len(f.Params))
	var required []string
	for _, p := range f.Params {
		props[p.Name] = map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	sort.Strings(required)

	schema := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func (f FunctionSpec) declaration() *genai.FunctionDeclaration {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: map[string]*genai.Schema{},
	}
	for _, p := range f.Params {
		schema.Properties[p.Name] = &genai.Schema{
			Type:        schemaType(p.Type),
			Description: p.Description,
		}
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return &genai.FunctionDeclaration{
		Name:        f.Name,
		Description: f.Description,
		Parameters:  schema,
	}
}

func schemaType(t ParamType) genai.Type {
	switch t {
	case ParamInteger:
		return genai.TypeInteger
	default:
		return genai.TypeString
	}
}

// tools converts FunctionSpecs to the genai tool configuration.
func tools() []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, len(FunctionSpecs))
	for i, f := range FunctionSpecs {
		decls[i] = f.declaration()
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}
