package handler

import (
	"github.com/chinhnt-ps/portfolio-be/internal/service"
	"github.com/chinhnt-ps/portfolio-be/internal/util"

	"github.com/gin-gonic/gin"
)

// SettlementHandler serves the settlement endpoints.
type SettlementHandler struct {
	Settlements *service.SettlementService
	PageSize    int
}

func NewSettlementHandler(settlements *service.SettlementService, pageSize int) *SettlementHandler {
	return &SettlementHandler{Settlements: settlements, PageSize: pageSize}
}

func (h *SettlementHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req service.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, 400, util.CodeInvalidParam, "invalid request body")
		return
	}

	view, err := h.Settlements.Create(user.ID, req)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"settlement": view})
}

func (h *SettlementHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	page, size := pageParams(c, h.PageSize)
	views, total, err := h.Settlements.List(user.ID, page, size)
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

func (h *SettlementHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.Settlements.Get(user.ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"settlement": view})
}

func (h *SettlementHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.UpdateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, 400, util.CodeInvalidParam, "invalid request body")
		return
	}

	view, err := h.Settlements.Update(user.ID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"settlement": view})
}

func (h *SettlementHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Settlements.Delete(user.ID, id); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "settlement deleted"})
}
