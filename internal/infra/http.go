package infra

import (
	"github.com/gofiber/fiber/v3"

	"github.com/pancudaniel7/kafka-output-binding/internal/adapter/http"
	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
)

func InitRoutes(server *fiber.App, binding *entity.OutputBindingConfig) {
	server.Get("/health", http.Health)
	server.Get("/binding", http.Binding(binding))
}
