package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taichu-system/rental-management/internal/service"
	pkgutils "github.com/taichu-system/rental-management/pkg/utils"
)

// TenantHandler serves tenant administration for super administrators.
type TenantHandler struct {
	tenantService *service.TenantService
}

func NewTenantHandler(tenantService *service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

func (h *TenantHandler) ProvisionTenant(c *gin.Context) {
	var req service.ProvisionTenantRequest
	if !bindJSON(c, &req) {
		return
	}
	tenant, err := h.tenantService.ProvisionTenant(c.Request.Context(), req)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusCreated, tenant)
}

func (h *TenantHandler) GetTenant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tenant, err := h.tenantService.GetTenant(c.Request.Context(), id)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, tenant)
}

func (h *TenantHandler) SuspendTenant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tenant, err := h.tenantService.SuspendTenant(c.Request.Context(), id)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, tenant)
}

func (h *TenantHandler) ReactivateTenant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tenant, err := h.tenantService.ReactivateTenant(c.Request.Context(), id)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, tenant)
}
