package middleware

import (
	"fmt"

	pkgError "github.com/AzielCF/az-devocional/pkg/error"
	"github.com/AzielCF/az-devocional/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Recovery convierte un panic en la respuesta JSON del GenericError que lo
// originó, o en un InternalServerError si el valor no trae su propio código.
func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logrus.Errorf("Panic recovered in middleware: %v", r)

			genErr, ok := r.(pkgError.GenericError)
			if !ok {
				genErr = pkgError.InternalServerError(fmt.Sprintf("%v", r))
			}
			_ = ctx.Status(genErr.StatusCode()).JSON(utils.ResponseData{
				Status:  genErr.StatusCode(),
				Code:    genErr.ErrCode(),
				Message: genErr.Error(),
			})
		}()

		return ctx.Next()
	}
}
