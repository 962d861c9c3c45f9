package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taichu-system/rental-management/internal/service"
	pkgutils "github.com/taichu-system/rental-management/pkg/utils"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	generator      *service.PaymentGenerator
}

func NewPaymentHandler(paymentService *service.PaymentService, generator *service.PaymentGenerator) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, generator: generator}
}

type completePaymentBody struct {
	Method string `json:"method" binding:"required"`
}

// GeneratePayments runs the pending payment generator for the caller's tenant.
func (h *PaymentHandler) GeneratePayments(c *gin.Context) {
	result, err := h.generator.GenerateAllPendingPayments(c.Request.Context())
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, result)
}

func (h *PaymentHandler) CompletePayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body completePaymentBody
	if !bindJSON(c, &body) {
		return
	}
	payment, err := h.paymentService.CompletePayment(c.Request.Context(), id, body.Method)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, payment)
}

func (h *PaymentHandler) ListLeasePayments(c *gin.Context) {
	leaseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	payments, err := h.paymentService.ListLeasePayments(c.Request.Context(), leaseID)
	if err != nil {
		pkgutils.HandleError(c, err)
		return
	}
	pkgutils.Success(c, http.StatusOK, payments)
}
