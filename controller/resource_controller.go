// api/controller/resource_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack-app/api/ability"
	"github.com/fintrack-app/api/cache"
	fintrack_errors "github.com/fintrack-app/api/errors"
	"github.com/fintrack-app/api/governor"
	"github.com/fintrack-app/api/model"
	"github.com/fintrack-app/api/ratelimit"
	"github.com/fintrack-app/api/service"
	"github.com/fintrack-app/api/util"
)

// ResourceController serves the CRUD routes of one governed resource. The
// same controller backs categories, accounts, credit cards and entries;
// only the route spec differs.
type ResourceController struct {
	resource        model.Resource
	subject         ability.Subject
	resourceService service.IResourceService
	withBalance     bool
}

func NewResourceController(resource model.Resource, resourceService service.IResourceService) *ResourceController {
	return &ResourceController{
		resource:        resource,
		subject:         ability.SubjectFor(resource),
		resourceService: resourceService,
		withBalance:     resource == model.ResourceAccounts || resource == model.ResourceCreditCards,
	}
}

// RegisterRoutes mounts the resource under pathSegment with per-route
// governor specs.
func (rc *ResourceController) RegisterRoutes(r *gin.RouterGroup, gov *governor.Governor, pathSegment string) {
	group := r.Group("/" + pathSegment)
	{
		group.GET("", gov.Govern(governor.RouteSpec{
			Action: ability.ActionRead, Subject: rc.subject, Resource: rc.resource,
			CacheNamespace: cache.NamespaceList,
		}), rc.List)

		group.GET("/select-options", gov.Govern(governor.RouteSpec{
			Action: ability.ActionRead, Subject: rc.subject, Resource: rc.resource,
			CacheNamespace: cache.NamespaceSelectOptions,
		}), rc.SelectOptions)

		group.POST("", gov.Govern(governor.RouteSpec{
			Action: ability.ActionCreate, Subject: rc.subject, Resource: rc.resource,
			LimiterClass: ratelimit.CreateClass,
		}), rc.Create)

		group.GET("/:id", gov.Govern(governor.RouteSpec{
			Action: ability.ActionRead, Subject: rc.subject, Resource: rc.resource,
			Ownership: true, CacheNamespace: cache.NamespaceDetail,
		}), rc.Get)

		group.PUT("/:id", gov.Govern(governor.RouteSpec{
			Action: ability.ActionUpdate, Subject: rc.subject, Resource: rc.resource,
			Ownership: true,
		}), rc.Update)

		group.DELETE("/:id", gov.Govern(governor.RouteSpec{
			Action: ability.ActionDelete, Subject: rc.subject, Resource: rc.resource,
			Ownership: true,
		}), rc.Delete)

		if rc.withBalance {
			group.GET("/:id/balance", gov.Govern(governor.RouteSpec{
				Action: ability.ActionRead, Subject: rc.subject, Resource: rc.resource,
				Ownership: true, CacheNamespace: cache.NamespaceBalance,
			}), rc.Balance)
		}
	}
}

func (rc *ResourceController) List(c *gin.Context) {
	ownerID := util.GetUserIDFromContext(c)
	records, err := rc.resourceService.List(c, rc.resource, ownerID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "failed to list resources", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (rc *ResourceController) SelectOptions(c *gin.Context) {
	ownerID := util.GetUserIDFromContext(c)
	options, err := rc.resourceService.SelectOptions(c, rc.resource, ownerID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "failed to list options", err)
		return
	}
	c.JSON(http.StatusOK, options)
}

func (rc *ResourceController) Create(c *gin.Context) {
	var record model.OwnedRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	record.OwnerID = util.GetUserIDFromContext(c)

	created, err := rc.resourceService.Create(c, rc.resource, record)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "failed to create resource", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get serves the instance the governor already loaded during the ownership
// check; no second store round trip.
func (rc *ResourceController) Get(c *gin.Context) {
	instance, exists := c.Get("instance")
	if !exists {
		util.RespondWithError(c, http.StatusInternalServerError, "instance missing from context", fintrack_errors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, instance)
}

func (rc *ResourceController) Update(c *gin.Context) {
	var record model.OwnedRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	record.ID = c.Param("id")

	updated, err := rc.resourceService.Update(c, rc.resource, record)
	if err != nil {
		if errors.Is(err, fintrack_errors.ErrResourceNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "resource not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "failed to update resource", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (rc *ResourceController) Delete(c *gin.Context) {
	if err := rc.resourceService.Delete(c, rc.resource, c.Param("id")); err != nil {
		if errors.Is(err, fintrack_errors.ErrResourceNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "resource not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "failed to delete resource", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rc *ResourceController) Balance(c *gin.Context) {
	balance, err := rc.resourceService.Balance(c, c.Param("id"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "failed to compute balance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "balance": balance})
}
