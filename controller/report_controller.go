// api/controller/report_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack-app/api/ability"
	"github.com/fintrack-app/api/cache"
	"github.com/fintrack-app/api/governor"
	"github.com/fintrack-app/api/ratelimit"
	"github.com/fintrack-app/api/service"
	"github.com/fintrack-app/api/util"
)

type ReportController struct {
	reportService service.IReportService
}

func NewReportController(reportService service.IReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

func (rc *ReportController) RegisterRoutes(r *gin.RouterGroup, gov *governor.Governor) {
	reports := r.Group("/reports")
	{
		reports.GET("/monthly", gov.Govern(governor.RouteSpec{
			Action: ability.ActionRead, Subject: ability.SubjectReport,
			CacheNamespace: cache.NamespaceReport,
			LimiterClass:   ratelimit.ReportsClass,
		}), rc.Monthly)
	}
}

func (rc *ReportController) Monthly(c *gin.Context) {
	rows, err := rc.reportService.MonthlyByCategory(c, util.GetUserIDFromContext(c))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "failed to build report", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
