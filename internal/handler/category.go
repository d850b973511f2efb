package handler

import (
	"github.com/chinhnt-ps/portfolio-be/internal/service"
	"github.com/chinhnt-ps/portfolio-be/internal/util"

	"github.com/gin-gonic/gin"
)

// CategoryHandler serves the category catalog endpoints.
type CategoryHandler struct {
	Categories *service.CategoryService
}

func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, 400, util.CodeInvalidParam, "invalid request body")
		return
	}

	view, err := h.Categories.Create(user.ID, req)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"category": view})
}

func (h *CategoryHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	views, err := h.Categories.List(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": views})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, 400, util.CodeInvalidParam, "invalid request body")
		return
	}

	view, err := h.Categories.Update(user.ID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"category": view})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Categories.Delete(user.ID, id); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "category deleted"})
}
