package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/pscheid92/syncvision/internal/platform/errors"
)

const rootMessage = "SyncVision Backend is running"

func (s *Server) registerTaskRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/tasks", s.handleListTasks)
	s.echo.POST("/tasks", s.handleCreateTask)
}

func (s *Server) handleRoot(c echo.Context) error {
	if err := c.String(http.StatusOK, rootMessage); err != nil {
		return fmt.Errorf("failed to write root response: %w", err)
	}
	return nil
}

func (s *Server) handleListTasks(c echo.Context) error {
	tasks, err := s.tasks.ListTasks(c.Request().Context())
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, tasks); err != nil {
		return fmt.Errorf("failed to write tasks response: %w", err)
	}
	return nil
}

func (s *Server) handleCreateTask(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return apperrors.ValidationError("Invalid request body.")
	}

	task, err := s.tasks.CreateTask(c.Request().Context(), body)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, task); err != nil {
		return fmt.Errorf("failed to write task response: %w", err)
	}
	return nil
}
