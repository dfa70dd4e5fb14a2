package web

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-moodbot/pkg/account"
	"github.com/teslashibe/go-moodbot/pkg/camera"
	"github.com/teslashibe/go-moodbot/pkg/hub"
	"github.com/teslashibe/go-moodbot/pkg/ui"
)

// StateResponse is returned by GET /api/state.
type StateResponse struct {
	Status
	Indicator ui.Indicator `json:"indicator"`
	Response  string       `json:"response"`
	History   []string     `json:"history"`
	Notices   []string     `json:"notices"`
	Seq       uint64       `json:"seq"`
}

// handleState returns the latest snapshot plus pipeline status
func (s *Server) handleState(c *fiber.Ctx) error {
	snap := s.backend.Snapshot()
	return c.JSON(StateResponse{
		Status:    s.backend.Status(),
		Indicator: snap.Indicator,
		Response:  snap.Response,
		History:   snap.History,
		Notices:   snap.Notices,
		Seq:       snap.Seq,
	})
}

// handleHistory returns the emotion history, newest first
func (s *Server) handleHistory(c *fiber.Ctx) error {
	return c.JSON(s.backend.Snapshot().History)
}

// handleStatus returns pipeline mode, running flag and session count
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.backend.Status())
}

// RegisterRequest is the request body for POST /api/register
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	if err := s.backend.Register(req.Username, req.Email, req.Password, req.Confirm); err != nil {
		return accountError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"username": req.Username,
		"message":  "Account created successfully! Please login.",
	})
}

// LoginRequest is the request body for POST /api/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	sess, err := s.backend.Login(req.Username, req.Password)
	if err != nil {
		return accountError(c, err)
	}
	return c.JSON(sess)
}

// LogoutRequest is the request body for POST /api/logout
type LogoutRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	var req LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	if err := s.backend.Logout(req.SessionID); err != nil {
		return accountError(c, err)
	}
	return c.JSON(fiber.Map{"status": "logged_out"})
}

func (s *Server) handleGetCamera(c *fiber.Ctx) error {
	return c.JSON(s.cameras.GetConfigJSON())
}

// handleSetCamera applies a preset and/or fields. Changes take effect the
// next time the pipeline starts.
func (s *Server) handleSetCamera(c *fiber.Ctx) error {
	params := make(map[string]interface{})
	if err := json.Unmarshal(c.Body(), &params); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	if err := s.cameras.UpdateConfig(params); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_CAMERA_CONFIG", err.Error())
	}
	return c.JSON(s.cameras.GetConfigJSON())
}

func (s *Server) handleCameraPresets(c *fiber.Ctx) error {
	return c.JSON(camera.PresetNames())
}

// handleUpdatesWS streams an UpdateMessage per applied event, starting
// with the current snapshot
func (s *Server) handleUpdatesWS(c *websocket.Conn) {
	data, err := json.Marshal(SnapshotMessage(s.backend.Snapshot()))
	if err != nil {
		s.logger.Warn("encode snapshot failed", "error", err)
		return
	}
	client := hub.NewClient(s.updateHub, c, hub.NewJSONMessage(data))
	if client == nil {
		return
	}
	client.Run()
}

// handleCameraWS streams annotated JPEG frames, starting with the last one
func (s *Server) handleCameraWS(c *websocket.Conn) {
	var initial []hub.Message
	if frame := s.backend.Snapshot().Frame; frame != nil {
		initial = append(initial, hub.NewBinaryMessage(frame))
	}
	client := hub.NewClient(s.cameraHub, c, initial...)
	if client == nil {
		return
	}
	client.Run()
}

func accountError(c *fiber.Ctx, err error) error {
	var accErr *account.Error
	if !errors.As(err, &accErr) {
		return errorJSON(c, fiber.StatusInternalServerError, "INTERNAL", err.Error())
	}
	status := fiber.StatusBadRequest
	switch accErr {
	case account.ErrUserExists:
		status = fiber.StatusConflict
	case account.ErrInvalidCredentials:
		status = fiber.StatusUnauthorized
	case account.ErrUnknownSession:
		status = fiber.StatusNotFound
	}
	return errorJSON(c, status, accErr.Code, accErr.Message)
}

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"code":  code,
		"error": message,
	})
}
