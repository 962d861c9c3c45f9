package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taichu-system/rental-management/internal/service"
	"github.com/taichu-system/rental-management/internal/utils"
	pkgutils "github.com/taichu-system/rental-management/pkg/utils"
)

type ExitNoticeHandler struct {
	exitNoticeService *service.ExitNoticeService
}

func NewExitNoticeHandler(exitNoticeService *service.ExitNoticeService) *ExitNoticeHandler {
	return &ExitNoticeHandler{exitNoticeService: exitNoticeService}
}

type createExitNoticeBody struct {
	PlannedExitDate string `json:"planned_exit_date" binding:"required"`
	Reason          string `json:"reason"`
	MutualAgreement bool   `json:"mutual_agreement"`
}

func (h *ExitNoticeHandler) CreateExitNotice(c *gin.Context) {
	leaseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body createExitNoticeBody
	if !bindJSON(c, &body) {
		return
	}
	planned, err := utils.ParseDate(body.PlannedExitDate)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}

	notice, err := h.exitNoticeService.CreateExitNotice(c.Request.Context(), service.CreateExitNoticeRequest{
		LeaseID:         leaseID,
		PlannedExitDate: planned,
		Reason:          body.Reason,
		MutualAgreement: body.MutualAgreement,
	})
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusCreated, notice)
}

func (h *ExitNoticeHandler) ConfirmExitNotice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	notice, err := h.exitNoticeService.ConfirmExitNotice(c.Request.Context(), id)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, notice)
}

func (h *ExitNoticeHandler) CancelExitNotice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	notice, err := h.exitNoticeService.CancelExitNotice(c.Request.Context(), id)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, notice)
}
