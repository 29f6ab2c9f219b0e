package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fulfillment-ledger/internal/application/dto"
)

// locationChecker contrato mínimo para validar ubicaciones; lo implementa inventory.Locations.
type locationChecker interface {
	Contains(loc string) bool
}

// RequireKnownLocation rechaza tokens asignados a una ubicación que no está configurada.
// Debe usarse DESPUÉS de AuthMiddleware. Un token sin ubicación pasa: opera solo con saldo consolidado
// o indicando la ubicación en el body.
//
// Comportamiento:
//   - 403 Forbidden → la ubicación del token no existe en INVENTORY_LOCATIONS.
func RequireKnownLocation(checker locationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loc := GetLocation(c)
		if loc == "" || checker.Contains(loc) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "UNKNOWN_LOCATION",
			Message: "la ubicación '" + loc + "' no está configurada",
		})
	}
}
