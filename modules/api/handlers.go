package api

import (
	"errors"
	"log"
	"time"

	taskdomain "github.com/example/task-tracker/domain/task"
	userdomain "github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/modules/notification"
	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	// Health check endpoint
	app.Get("/health", m.healthHandler)

	api := app.Group("/api", RequireActor(m.actors))

	tasks := api.Group("/tasks")
	tasks.Get("/", m.listTasks)
	tasks.Post("/", m.createTask)
	tasks.Get("/:id", m.getTask)
	tasks.Patch("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)

	api.Get("/users", m.listUsers)
	api.Get("/notifications", m.listNotifications)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(ok("healthy"))
}

// listTasks handles GET /api/tasks.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return writeError(c, err)
	}

	tasks, err := m.taskAdapter.ListTasks(c.UserContext(), actorID(c), filter)
	if err != nil {
		return writeError(c, err)
	}
	if tasks == nil {
		tasks = []taskdomain.Task{}
	}

	return c.JSON(TasksEnvelope{
		Envelope: ok("Tasks found successfully"),
		Tasks:    tasks,
	})
}

// getTask handles GET /api/tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	t, err := m.taskAdapter.GetTask(c.UserContext(), actorID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(TaskEnvelope{
		Envelope: ok("Task found successfully"),
		Task:     t,
	})
}

// createTask handles POST /api/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(failed("Invalid request body"))
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return writeError(c, err)
	}

	t, err := m.taskAdapter.CreateTask(c.UserContext(), actorID(c), taskdomain.NewTask{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Status:      taskdomain.Status(req.Status),
		DueDate:     due,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(TaskEnvelope{
		Envelope: ok("Task created successfully"),
		Task:     t,
	})
}

// updateTask handles PATCH /api/tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(failed("Invalid request body"))
	}

	patch := taskdomain.Patch{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
	}
	if req.Status != nil {
		s := taskdomain.Status(*req.Status)
		patch.Status = &s
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return writeError(c, err)
		}
		patch.DueDate = due
	}

	t, err := m.taskAdapter.UpdateTask(c.UserContext(), actorID(c), c.Params("id"), patch)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(TaskEnvelope{
		Envelope: ok("Task updated successfully"),
		Task:     t,
	})
}

// deleteTask handles DELETE /api/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	if err := m.taskAdapter.DeleteTask(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(ok("Task deleted successfully"))
}

// listUsers handles GET /api/users.
func (m *APIModule) listUsers(c *fiber.Ctx) error {
	users, err := m.userAdapter.ListUsers(c.UserContext())
	if err != nil {
		log.Printf("[api] list users failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(failed("Internal Server Error"))
	}
	if users == nil {
		users = []userdomain.User{}
	}

	return c.JSON(UsersEnvelope{
		Envelope: ok("Users found successfully"),
		Users:    users,
	})
}

// listNotifications handles GET /api/notifications.
func (m *APIModule) listNotifications(c *fiber.Ctx) error {
	list, err := m.notificationAdapter.ListNotifications(c.UserContext(), actorID(c))
	if err != nil {
		log.Printf("[api] list notifications failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(failed("Internal Server Error"))
	}

	if list == nil {
		list = []notification.Notification{}
	}

	return c.JSON(NotificationsEnvelope{
		Envelope:      ok("Notifications found successfully"),
		Notifications: list,
	})
}

// filterFromQuery reads the list filter. assignedToMe=true selects the
// assignedToMe scope unless an explicit scope is given.
func filterFromQuery(c *fiber.Ctx) (taskdomain.Filter, error) {
	raw := c.Query("scope")
	if raw == "" && c.QueryBool("assignedToMe") {
		raw = string(taskdomain.ScopeAssignedToMe)
	}
	scope, err := taskdomain.ParseScope(raw)
	if err != nil {
		return taskdomain.Filter{}, taskdomain.NewError(taskdomain.ErrValidation,
			"Scope must be one of all, assignedToMe, completed")
	}

	status := taskdomain.Status(c.Query("status"))
	if status != "" && !status.IsValid() {
		return taskdomain.Filter{}, taskdomain.NewError(taskdomain.ErrValidation,
			"Status must be one of todo, in-progress, done")
	}

	return taskdomain.Filter{Scope: scope, Status: status}, nil
}

// parseDueDate accepts YYYY-MM-DD or RFC 3339. Empty means no due date.
func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, taskdomain.NewError(taskdomain.ErrValidation,
			"Due date must be YYYY-MM-DD or RFC 3339")
	}
	return &t, nil
}

// writeError maps a task error to its status code and envelope.
func writeError(c *fiber.Ctx, err error) error {
	code := statusCode(err)
	msg := taskdomain.Message(err)
	if code == fiber.StatusInternalServerError {
		log.Printf("[api] %s %s failed: %v", c.Method(), c.Path(), err)
		msg = "Internal Server Error"
	}
	return c.Status(code).JSON(failed(msg))
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, taskdomain.ErrInvalidID), errors.Is(err, taskdomain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, taskdomain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, taskdomain.ErrNotFound):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}
