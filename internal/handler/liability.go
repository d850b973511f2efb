package handler

import (
	"github.com/chinhnt-ps/portfolio-be/internal/service"
	"github.com/chinhnt-ps/portfolio-be/internal/util"

	"github.com/gin-gonic/gin"
)

// LiabilityHandler serves the money-borrowed endpoints.
type LiabilityHandler struct {
	Liabilities *service.LiabilityService
	Settlements *service.SettlementService
	PageSize    int
}

func NewLiabilityHandler(liabilities *service.LiabilityService, settlements *service.SettlementService, pageSize int) *LiabilityHandler {
	return &LiabilityHandler{Liabilities: liabilities, Settlements: settlements, PageSize: pageSize}
}

func (h *LiabilityHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req service.CreateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, 400, util.CodeInvalidParam, "invalid request body")
		return
	}

	view, err := h.Liabilities.Create(user.ID, req)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"liability": view})
}

func (h *LiabilityHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	page, size := pageParams(c, h.PageSize)
	views, total, err := h.Liabilities.List(user.ID, page, size)
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

func (h *LiabilityHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.Liabilities.Get(user.ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"liability": view})
}

func (h *LiabilityHandler) Update(c *gin.Context) {
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

	view, err := h.Liabilities.Update(user.ID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"liability": view})
}

func (h *LiabilityHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Liabilities.Delete(user.ID, id); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "liability deleted"})
}

// ListSettlements returns the settlement history for one liability.
func (h *LiabilityHandler) ListSettlements(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	views, err := h.Settlements.ListForLiability(user.ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": views})
}
