// api/controller/controllers.go
package controller

import (
	"github.com/fintrack-app/api/model"
	"github.com/fintrack-app/api/service"
)

// Controllers bundles every controller the router mounts.
type Controllers struct {
	Categories  *ResourceController
	Accounts    *ResourceController
	CreditCards *ResourceController
	Entries     *ResourceController
	Users       *UserController
	Reports     *ReportController
	Auth        *AuthController
}

func NewControllers(
	resourceService service.IResourceService,
	userService service.IUserService,
	reportService service.IReportService,
	authController *AuthController,
) *Controllers {
	return &Controllers{
		Categories:  NewResourceController(model.ResourceCategories, resourceService),
		Accounts:    NewResourceController(model.ResourceAccounts, resourceService),
		CreditCards: NewResourceController(model.ResourceCreditCards, resourceService),
		Entries:     NewResourceController(model.ResourceEntries, resourceService),
		Users:       NewUserController(userService),
		Reports:     NewReportController(reportService),
		Auth:        authController,
	}
}
