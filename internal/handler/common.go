package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/chinhnt-ps/portfolio-be/internal/apperr"
	"github.com/chinhnt-ps/portfolio-be/internal/models"
	"github.com/chinhnt-ps/portfolio-be/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated user placed by the auth
// middleware; writes the error response itself when missing.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	return user, true
}

// fail maps a service error onto the response envelope. Typed errors
// surface with their message; anything else is logged and reported as a
// generic failure without leaking internals.
func fail(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
	case apperr.KindValidation:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case apperr.KindConflict:
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	case apperr.KindBusiness:
		util.Error(c, http.StatusUnprocessableEntity, util.CodeBusiness, err.Error())
	default:
		log.Printf("internal error: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
	}
}

// pathID parses the :id path parameter; writes the error response
// itself when invalid.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// pageParams reads page/page_size query parameters with sane bounds.
func pageParams(c *gin.Context, defaultSize int) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if size <= 0 || size > 100 {
		size = defaultSize
	}
	return page, size
}

// queryUint parses an optional unsigned query parameter.
func queryUint(c *gin.Context, name string) *uint {
	s := c.Query(name)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return nil
	}
	v := uint(n)
	return &v
}
