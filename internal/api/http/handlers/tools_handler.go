package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voice-support-agent/internal/assistant"
)

// ToolsHandler exposes the assistant tool surface over HTTP for operators
// and integration tests. Responses carry the same spoken-style text the
// voice session would receive.
type ToolsHandler struct {
	registry *assistant.Registry
}

// NewToolsHandler constructs handler.
func NewToolsHandler(registry *assistant.Registry) *ToolsHandler {
	return &ToolsHandler{registry: registry}
}

// List GET /tools.
func (h *ToolsHandler) List(c *fiber.Ctx) error {
	declarations := h.registry.Declarations()
	out := make([]fiber.Map, 0, len(declarations))
	for _, tool := range declarations {
		out = append(out, fiber.Map{
			"name":        tool.Name,
			"description": tool.Description,
			"parameters":  tool.Parameters,
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

// Invoke POST /tools/:name. The request body is the raw JSON argument
// object, exactly as a model function call would supply it.
func (h *ToolsHandler) Invoke(c *fiber.Ctx) error {
	name := c.Params("name")
	output := h.registry.Dispatch(c.UserContext(), name, string(c.Body()))
	return c.JSON(fiber.Map{
		"tool":   name,
		"output": output,
	})
}
