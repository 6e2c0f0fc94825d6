package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"taskpad/internal/service"
)

// taskRow is the PostgREST representation of a row in the tasks table.
type taskRow struct {
	ID        int64     `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func (r taskRow) asTask() service.Task {
	return service.Task{
		ID:        r.ID,
		UserID:    r.UserID,
		Text:      r.Text,
		Done:      r.Done,
		CreatedAt: r.CreatedAt,
	}
}

// ListTasks implements service.Service. Row-level policies enforce
// ownership server-side; the filter here scopes the result set.
func (c *Client) ListTasks(ctx context.Context, userID string) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	token, err := c.bearer(ctx)
	if err != nil {
		return nil, wrapRowError("load", err)
	}

	endpoint := fmt.Sprintf("%s%s/tasks?select=*&user_id=eq.%s&order=created_at.desc",
		c.cfg.URL, restPath, url.QueryEscape(userID))

	var rows []taskRow
	if err := c.doJSON(ctx, "GET", endpoint, nil, token, nil, &rows); err != nil {
		return nil, wrapRowError("load", err)
	}

	tasks := make([]service.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.asTask())
	}
	return tasks, nil
}

// CreateTask implements service.Service. The store assigns id and
// created_at; the returned row is the authoritative Task.
func (c *Client) CreateTask(ctx context.Context, userID, text string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	token, err := c.bearer(ctx)
	if err != nil {
		return service.Task{}, wrapRowError("add", err)
	}

	headers := map[string]string{"Prefer": "return=representation"}
	// The store assigns id and created_at, so the payload carries neither.
	body := struct {
		UserID string `json:"user_id"`
		Text   string `json:"text"`
		Done   bool   `json:"done"`
	}{UserID: userID, Text: text, Done: false}

	// PostgREST returns inserted rows as an array.
	var rows []taskRow
	if err := c.doJSON(ctx, "POST", c.cfg.URL+restPath+"/tasks", body, token, headers, &rows); err != nil {
		return service.Task{}, wrapRowError("add", err)
	}
	if len(rows) != 1 {
		return service.Task{}, service.NewOperationError("add", "insert returned %d rows", len(rows))
	}
	return rows[0].asTask(), nil
}

// SetTaskDone implements service.Service.
func (c *Client) SetTaskDone(ctx context.Context, id int64, done bool) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	token, err := c.bearer(ctx)
	if err != nil {
		return wrapRowError("toggle", err)
	}

	endpoint := fmt.Sprintf("%s%s/tasks?id=eq.%d", c.cfg.URL, restPath, id)
	body := map[string]bool{"done": done}
	if err := c.doJSON(ctx, "PATCH", endpoint, body, token, nil, nil); err != nil {
		return wrapRowError("toggle", err)
	}
	return nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	token, err := c.bearer(ctx)
	if err != nil {
		return wrapRowError("delete", err)
	}

	endpoint := fmt.Sprintf("%s%s/tasks?id=eq.%d", c.cfg.URL, restPath, id)
	if err := c.doJSON(ctx, "DELETE", endpoint, nil, token, nil, nil); err != nil {
		return wrapRowError("delete", err)
	}
	return nil
}

// wrapRowError converts backend failures into OperationError values with
// user-facing messages.
func wrapRowError(op string, err error) error {
	var se *statusError
	if errors.As(err, &se) {
		return service.NewOperationError(op, "%s", errorMessage(se.Body))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return service.NewOperationError(op, "request timed out")
	}
	return service.NewOperationError(op, "%v", err)
}
