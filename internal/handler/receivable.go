package handler

import (
	"github.com/chinhnt-ps/portfolio-be/internal/service"
	"github.com/chinhnt-ps/portfolio-be/internal/util"

	"github.com/gin-gonic/gin"
)

// ReceivableHandler serves the money-lent-out endpoints.
type ReceivableHandler struct {
	Receivables *service.ReceivableService
	Settlements *service.SettlementService
	PageSize    int
}

func NewReceivableHandler(receivables *service.ReceivableService, settlements *service.SettlementService, pageSize int) *ReceivableHandler {
	return &ReceivableHandler{Receivables: receivables, Settlements: settlements, PageSize: pageSize}
}

func (h *ReceivableHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req service.CreateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, 400, util.CodeInvalidParam, "invalid request body")
		return
	}

	view, err := h.Receivables.Create(user.ID, req)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"receivable": view})
}

func (h *ReceivableHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	page, size := pageParams(c, h.PageSize)
	views, total, err := h.Receivables.List(user.ID, page, size)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"items": views,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

func (h *ReceivableHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.Receivables.Get(user.ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"receivable": view})
}

func (h *ReceivableHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.UpdateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, 400, util.CodeInvalidParam, "invalid request body")
		return
	}

	view, err := h.Receivables.Update(user.ID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"receivable": view})
}

func (h *ReceivableHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Receivables.Delete(user.ID, id); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "receivable deleted"})
}

// ListSettlements returns the settlement history for one receivable.
func (h *ReceivableHandler) ListSettlements(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	views, err := h.Settlements.ListForReceivable(user.ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": views})
}
