package handler

import (
	"time"

	"github.com/chinhnt-ps/portfolio-be/internal/service"
	"github.com/chinhnt-ps/portfolio-be/internal/util"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the dashboard rollup.
type ReportHandler struct {
	Reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{Reports: reports}
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	month := time.Now()
	if s := c.Query("month"); s != "" {
		m, err := util.ParseMonth(s)
		if err != nil {
			util.Error(c, 400, util.CodeInvalidParam, err.Error())
			return
		}
		month = m
	}

	report, err := h.Reports.Dashboard(user.ID, month)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"report": report})
}
