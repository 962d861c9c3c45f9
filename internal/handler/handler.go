// Package handler holds the thin gin adapters over the engines. Handlers
// parse input, call one service method and write the envelope.
package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/utils"
	pkgutils "github.com/taichu-system/rental-management/pkg/utils"
)

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(c.Param(name))
	if err != nil {
		pkgutils.HandleError(c, err)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		pkgutils.Error(c, utils.ErrCodeInvalidInput, utils.ReasonInvalidInput, "invalid request body: %v", err)
		return false
	}
	return true
}

// optionalDate parses s, returning fallback when s is empty.
func optionalDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	return utils.ParseDate(s)
}
