package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devconnector/devconnector-api/internal/core/ports"
)

// ProfileHandler serves the profile aggregate and the account cascade.
type ProfileHandler struct {
	profiles ports.ProfileService
	accounts ports.AccountService
}

func NewProfileHandler(profiles ports.ProfileService, accounts ports.AccountService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, accounts: accounts}
}

// Me handles GET /api/profile/me.
//
// @Summary      Current user's profile
// @Tags         profile
// @Produce      json
// @Security     TokenAuth
// @Success      200  {object}  domain.Profile
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/profile/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	p, err := h.profiles.GetCurrent(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Upsert handles POST /api/profile.
//
// @Summary      Create or update the current user's profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        body  body      profileRequest  true  "Profile fields; empty fields are left unchanged"
// @Success      200   {object}  domain.Profile
// @Failure      400   {object}  validationErrorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/profile [post]
func (h *ProfileHandler) Upsert(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.profiles.Upsert(c.Request().Context(), userID, toProfileFields(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// List handles GET /api/profile.
//
// @Summary      List all profiles
// @Tags         profile
// @Produce      json
// @Success      200  {array}   domain.Profile
// @Router       /api/profile [get]
func (h *ProfileHandler) List(c echo.Context) error {
	ps, err := h.profiles.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ps)
}

// GetByUser handles GET /api/profile/user/:user_id.
//
// @Summary      Public profile of a user
// @Tags         profile
// @Produce      json
// @Param        user_id  path      string  true  "User id"
// @Success      200      {object}  domain.Profile
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /api/profile/user/{user_id} [get]
func (h *ProfileHandler) GetByUser(c echo.Context) error {
	p, err := h.profiles.GetByUser(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// DeleteAccount handles DELETE /api/profile: posts, profile and identity.
//
// @Summary      Delete the current account with its profile and posts
// @Tags         profile
// @Produce      json
// @Security     TokenAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/profile [delete]
func (h *ProfileHandler) DeleteAccount(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if err := h.accounts.Delete(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Msg: "user deleted"})
}

// AddExperience handles PUT /api/profile/experience.
//
// @Summary      Add a work-history entry
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        body  body      experienceRequest  true  "Experience entry"
// @Success      200   {object}  domain.Profile
// @Failure      400   {object}  validationErrorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/profile/experience [put]
func (h *ProfileHandler) AddExperience(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req experienceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.profiles.AddExperience(c.Request().Context(), userID, toExperienceInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// RemoveExperience handles DELETE /api/profile/experience/:exp_id.
//
// @Summary      Remove a work-history entry
// @Tags         profile
// @Produce      json
// @Security     TokenAuth
// @Param        exp_id  path      string  true  "Experience id"
// @Success      200     {object}  domain.Profile
// @Failure      404     {object}  errorResponse
// @Router       /api/profile/experience/{exp_id} [delete]
func (h *ProfileHandler) RemoveExperience(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	p, err := h.profiles.RemoveExperience(c.Request().Context(), userID, c.Param("exp_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// AddEducation handles PUT /api/profile/education.
//
// @Summary      Add an education entry
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        body  body      educationRequest  true  "Education entry"
// @Success      200   {object}  domain.Profile
// @Failure      400   {object}  validationErrorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/profile/education [put]
func (h *ProfileHandler) AddEducation(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req educationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.profiles.AddEducation(c.Request().Context(), userID, toEducationInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// RemoveEducation handles DELETE /api/profile/education/:edu_id.
//
// @Summary      Remove an education entry
// @Tags         profile
// @Produce      json
// @Security     TokenAuth
// @Param        edu_id  path      string  true  "Education id"
// @Success      200     {object}  domain.Profile
// @Failure      404     {object}  errorResponse
// @Router       /api/profile/education/{edu_id} [delete]
func (h *ProfileHandler) RemoveEducation(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	p, err := h.profiles.RemoveEducation(c.Request().Context(), userID, c.Param("edu_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// GitHubRepos handles GET /api/profile/github/:username.
//
// @Summary      Latest public repositories of a GitHub user
// @Tags         profile
// @Produce      json
// @Param        username  path      string  true  "GitHub username"
// @Success      200       {array}   ports.Repository
// @Failure      404       {object}  errorResponse
// @Router       /api/profile/github/{username} [get]
func (h *ProfileHandler) GitHubRepos(c echo.Context) error {
	repos, err := h.profiles.GitHubRepos(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, repos)
}
