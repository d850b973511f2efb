package handler

import (
	"github.com/chinhnt-ps/portfolio-be/internal/models"
	"github.com/chinhnt-ps/portfolio-be/internal/service"
	"github.com/chinhnt-ps/portfolio-be/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionHandler serves the transaction endpoints.
type TransactionHandler struct {
	Transactions *service.TransactionService
	PageSize     int
}

func NewTransactionHandler(transactions *service.TransactionService, pageSize int) *TransactionHandler {
	return &TransactionHandler{Transactions: transactions, PageSize: pageSize}
}

func (h *TransactionHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req service.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, 400, util.CodeInvalidParam, "invalid request body")
		return
	}

	view, err := h.Transactions.Create(user.ID, req)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": view})
}

func (h *TransactionHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filters := service.TransactionFilters{
		Type:       models.TransactionType(c.Query("type")),
		AccountID:  queryUint(c, "account_id"),
		CategoryID: queryUint(c, "category_id"),
		Keyword:    c.Query("keyword"),
		Sort:       c.DefaultQuery("sort", "date_desc"),
	}
	if filters.Type != "" && !filters.Type.Valid() {
		util.Error(c, 400, util.CodeInvalidParam, "unknown transaction type")
		return
	}
	if s := c.Query("start"); s != "" {
		t, err := util.ParseDateTime(s)
		if err != nil {
			util.Error(c, 400, util.CodeInvalidParam, "invalid start date")
			return
		}
		filters.Start = &t
	}
	if s := c.Query("end"); s != "" {
		t, err := util.ParseDateTime(s)
		if err != nil {
			util.Error(c, 400, util.CodeInvalidParam, "invalid end date")
			return
		}
		filters.End = &t
	}
	if s := c.Query("min_amount"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			util.Error(c, 400, util.CodeInvalidParam, "invalid min_amount")
			return
		}
		filters.MinAmount = &d
	}
	if s := c.Query("max_amount"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			util.Error(c, 400, util.CodeInvalidParam, "invalid max_amount")
			return
		}
		filters.MaxAmount = &d
	}

	page, size := pageParams(c, h.PageSize)
	views, total, err := h.Transactions.List(user.ID, filters, page, size)
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

func (h *TransactionHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.Transactions.Get(user.ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": view})
}

func (h *TransactionHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, 400, util.CodeInvalidParam, "invalid request body")
		return
	}

	view, err := h.Transactions.Update(user.ID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": view})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Transactions.Delete(user.ID, id); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "transaction deleted"})
}
