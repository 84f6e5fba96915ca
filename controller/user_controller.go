// api/controller/user_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack-app/api/ability"
	"github.com/fintrack-app/api/cache"
	fintrack_errors "github.com/fintrack-app/api/errors"
	"github.com/fintrack-app/api/governor"
	"github.com/fintrack-app/api/service"
	"github.com/fintrack-app/api/util"
)

type UserController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) *UserController {
	return &UserController{userService: userService}
}

func (uc *UserController) RegisterRoutes(r *gin.RouterGroup, gov *governor.Governor) {
	users := r.Group("/users")
	{
		users.GET("/me", gov.Govern(governor.RouteSpec{
			Action: ability.ActionRead, Subject: ability.SubjectUser,
			CacheNamespace: cache.NamespaceDetail,
		}), uc.GetProfile)

		users.GET("/me/usage", gov.Govern(governor.RouteSpec{
			Action: ability.ActionRead, Subject: ability.SubjectUser,
		}), uc.GetUsage)
	}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	user, err := uc.userService.GetProfile(c, util.GetUserIDFromContext(c))
	if err != nil {
		if errors.Is(err, fintrack_errors.ErrUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "user not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "failed to load profile", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) GetUsage(c *gin.Context) {
	usage, err := uc.userService.GetUsage(c, util.GetUserIDFromContext(c))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "failed to load usage", err)
		return
	}
	c.JSON(http.StatusOK, usage)
}
