package handler

import (
	"github.com/chinhnt-ps/portfolio-be/internal/service"
	"github.com/chinhnt-ps/portfolio-be/internal/util"

	"github.com/gin-gonic/gin"
)

// AccountHandler serves the account endpoints.
type AccountHandler struct {
	Accounts *service.AccountService
	PageSize int
}

func NewAccountHandler(accounts *service.AccountService, pageSize int) *AccountHandler {
	return &AccountHandler{Accounts: accounts, PageSize: pageSize}
}

func (h *AccountHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req service.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, 400, util.CodeInvalidParam, "invalid request body")
		return
	}

	view, err := h.Accounts.Create(user.ID, req)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"account": view})
}

func (h *AccountHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	page, size := pageParams(c, h.PageSize)
	views, total, err := h.Accounts.List(user.ID, page, size)
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

func (h *AccountHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.Accounts.Get(user.ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"account": view})
}

func (h *AccountHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, 400, util.CodeInvalidParam, "invalid request body")
		return
	}

	view, err := h.Accounts.Update(user.ID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"account": view})
}

func (h *AccountHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Accounts.Delete(user.ID, id); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "account deleted"})
}

func (h *AccountHandler) AdjustBalance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, 400, util.CodeInvalidParam, "invalid request body")
		return
	}

	view, err := h.Accounts.AdjustBalance(user.ID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"account": view})
}
