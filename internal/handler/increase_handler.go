package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/service"
	"github.com/taichu-system/rental-management/internal/utils"
	pkgutils "github.com/taichu-system/rental-management/pkg/utils"
)

type IncreaseHandler struct {
	indexationService *service.IndexationService
}

func NewIncreaseHandler(indexationService *service.IndexationService) *IncreaseHandler {
	return &IncreaseHandler{indexationService: indexationService}
}

type applyIncreaseBody struct {
	LeaseID       uuid.UUID `json:"lease_id"`
	NewRent       *float64  `json:"new_rent"`
	Percentage    *float64  `json:"percentage"`
	EffectiveDate string    `json:"effective_date"`
	Reason        string    `json:"reason"`
}

func (b applyIncreaseBody) toRequest(leaseID uuid.UUID) (service.ApplyIncreaseRequest, error) {
	effective, err := optionalDate(b.EffectiveDate, time.Time{})
	if err != nil {
		return service.ApplyIncreaseRequest{}, err
	}
	return service.ApplyIncreaseRequest{
		LeaseID:       leaseID,
		NewRent:       b.NewRent,
		Percentage:    b.Percentage,
		EffectiveDate: effective,
		Reason:        b.Reason,
	}, nil
}

type ipcBody struct {
	Rate float64 `json:"rate"`
}

// PreviewIncreases lists candidate rents for every active lease. Without a
// percentage the IPC rate of the target year is used.
func (h *IncreaseHandler) PreviewIncreases(c *gin.Context) {
	target, err := optionalDate(c.Query("target_date"), time.Now().UTC())
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}

	var previews []service.IncreasePreview
	if raw := c.Query("percentage"); raw != "" {
		percentage, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			pkgutils.Error(c, utils.ErrCodeInvalidInput, utils.ReasonInvalidInput, "invalid percentage %q", raw)
			return
		}
		previews, err = h.indexationService.PreviewIncreases(c.Request.Context(), percentage, target)
	} else {
		previews, err = h.indexationService.PreviewIncreasesByIPC(c.Request.Context(), target)
	}
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, previews)
}

func (h *IncreaseHandler) ApplyIncrease(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body applyIncreaseBody
	if !bindJSON(c, &body) {
		return
	}
	req, err := body.toRequest(id)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}

	increase, err := h.indexationService.ApplyIncrease(c.Request.Context(), req)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusCreated, increase)
}

func (h *IncreaseHandler) BulkApplyIncreases(c *gin.Context) {
	var body struct {
		Increases []applyIncreaseBody `json:"increases" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	reqs := make([]service.ApplyIncreaseRequest, 0, len(body.Increases))
	for _, item := range body.Increases {
		req, err := item.toRequest(item.LeaseID)
		if err != nil {
			pkgutils.HandleError(c, err)
			return
		}
		reqs = append(reqs, req)
	}

	pkgutils.Success(c, http.StatusOK, h.indexationService.BulkApplyIncreases(c.Request.Context(), reqs))
}

func (h *IncreaseHandler) GetIPC(c *gin.Context) {
	year, ok := pathYear(c)
	if !ok {
		return
	}
	rate, err := h.indexationService.GetIPCForYear(c.Request.Context(), year)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, gin.H{"year": year, "rate": rate})
}

func (h *IncreaseHandler) SetIPC(c *gin.Context) {
	year, ok := pathYear(c)
	if !ok {
		return
	}
	var body ipcBody
	if !bindJSON(c, &body) {
		return
	}
	if err := h.indexationService.SetIPCForYear(c.Request.Context(), year, body.Rate); err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, gin.H{"year": year, "rate": body.Rate})
}

func pathYear(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		pkgutils.Error(c, utils.ErrCodeInvalidInput, utils.ReasonInvalidInput, "invalid year %q", c.Param("year"))
		return 0, false
	}
	return year, true
}
