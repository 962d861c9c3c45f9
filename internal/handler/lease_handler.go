package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/service"
	"github.com/taichu-system/rental-management/internal/utils"
	pkgutils "github.com/taichu-system/rental-management/pkg/utils"
)

type LeaseHandler struct {
	leaseService   *service.LeaseService
	renewalService *service.RenewalService
}

func NewLeaseHandler(leaseService *service.LeaseService, renewalService *service.RenewalService) *LeaseHandler {
	return &LeaseHandler{leaseService: leaseService, renewalService: renewalService}
}

type createLeaseBody struct {
	UnitID                  uuid.UUID `json:"unit_id" binding:"required"`
	RenterID                uuid.UUID `json:"renter_id"`
	StartDate               string    `json:"start_date" binding:"required"`
	EndDate                 string    `json:"end_date" binding:"required"`
	MonthlyRent             float64   `json:"monthly_rent" binding:"required"`
	NoticeRequiredDays      int       `json:"notice_required_days"`
	EarlyTerminationPenalty *float64  `json:"early_termination_penalty"`
}

type contractBody struct {
	Path string `json:"path"`
}

func (h *LeaseHandler) CreateLease(c *gin.Context) {
	var body createLeaseBody
	if !bindJSON(c, &body) {
		return
	}
	start, err := utils.ParseDate(body.StartDate)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	end, err := utils.ParseDate(body.EndDate)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}

	lease, err := h.leaseService.CreateLease(c.Request.Context(), service.CreateLeaseRequest{
		UnitID:                  body.UnitID,
		RenterID:                body.RenterID,
		StartDate:               start,
		EndDate:                 end,
		MonthlyRent:             body.MonthlyRent,
		NoticeRequiredDays:      body.NoticeRequiredDays,
		EarlyTerminationPenalty: body.EarlyTerminationPenalty,
	})
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusCreated, lease)
}

func (h *LeaseHandler) GetLease(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lease, err := h.leaseService.GetLease(c.Request.Context(), id)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, lease)
}

func (h *LeaseHandler) ActivateLease(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lease, err := h.leaseService.ActivateLease(c.Request.Context(), id)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, lease)
}

func (h *LeaseHandler) TerminateLease(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lease, err := h.leaseService.TerminateLease(c.Request.Context(), id)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, lease)
}

func (h *LeaseHandler) RenewLease(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lease, err := h.renewalService.RenewLease(c.Request.Context(), id)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, lease)
}

// SetContract stores the contract reference.
func (h *LeaseHandler) SetContract(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body contractBody
	if !bindJSON(c, &body) {
		return
	}
	lease, err := h.leaseService.SetContractPath(c.Request.Context(), id, body.Path)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, lease)
}

func (h *LeaseHandler) ClearContract(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lease, err := h.leaseService.ClearContractPath(c.Request.Context(), id)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, lease)
}
