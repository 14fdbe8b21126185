package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Todo represents a todo item as stored in the database.
type Todo struct {
	ID          int64
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TodoResponse is the JSON shape returned for a stored todo.
type TodoResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTodoResponse copies a stored todo into its response shape.
func NewTodoResponse(t Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTodoResponses maps a list of todos, never returning nil so it encodes as [].
func NewTodoResponses(list []Todo) []TodoResponse {
	out := make([]TodoResponse, len(list))
	for i := range list {
		out[i] = NewTodoResponse(list[i])
	}
	return out
}

// CreateRequest is the body of POST /todos.
type CreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

// Todo builds the entity to insert. ID and timestamps are left to the repository.
func (r CreateRequest) Todo() Todo {
	return Todo{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
}

// UpdateRequest is the body of PUT /todos/{id}. Every field is optional.
type UpdateRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Completed   Optional[bool]   `json:"completed"`
}

// Patch converts the request into the fields the repository must change.
func (r UpdateRequest) Patch() TodoPatch {
	var p TodoPatch
	if r.Title.Set && !r.Title.Null {
		title := r.Title.Value
		p.Title = &title
	}
	if r.Description.Set {
		p.DescriptionSet = true
		if !r.Description.Null {
			desc := r.Description.Value
			p.Description = &desc
		}
	}
	if r.Completed.Set && !r.Completed.Null {
		completed := r.Completed.Value
		p.Completed = &completed
	}
	return p
}

// TodoPatch lists the fields of a partial update. Nil/unset fields are not touched.
type TodoPatch struct {
	Title          *string
	DescriptionSet bool
	Description    *string
	Completed      *bool
}

// Apply copies the present fields onto t.
func (p TodoPatch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.DescriptionSet {
		t.Description = p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// Optional is a JSON field that remembers whether it was present and whether it was null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON is only invoked when the key is present in the object.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}
