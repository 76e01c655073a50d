package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plannr/event-planner/internal/core/ports"
)

// EventHandler serves the authenticated user's events. The owner always
// comes from the session, never from the request body.
type EventHandler struct {
	service ports.EventService
}

// NewEventHandler creates an EventHandler backed by the given service.
func NewEventHandler(service ports.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// List handles GET /events.
//
// @Summary      List events, most recently updated first
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Event
// @Failure      401  {object}  errorResponse
// @Router       /events [get]
func (h *EventHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	events, err := h.service.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// Current handles GET /events/current.
//
// @Summary      Most recently updated event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Event
// @Failure      404  {object}  errorResponse
// @Router       /events/current [get]
func (h *EventHandler) Current(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	event, err := h.service.Current(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// Get handles GET /events/:id.
//
// @Summary      Get one event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  domain.Event
// @Failure      404  {object}  errorResponse
// @Router       /events/{id} [get]
func (h *EventHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	event, err := h.service.Get(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// Save handles POST /events: update by id, else by name, else create.
//
// @Summary      Save an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      eventRequest  true  "Event fields"
// @Success      200   {object}  domain.Event
// @Success      201   {object}  domain.Event
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /events [post]
func (h *EventHandler) Save(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	req, err := bindEvent(c)
	if err != nil {
		return err
	}

	res, err := h.service.Upsert(c.Request().Context(), user.ID, toEventInput(req))
	if err != nil {
		return err
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, res.Event)
}

// CreateNew handles POST /events/new and never matches existing events.
//
// @Summary      Create a new event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      eventRequest  true  "Event fields"
// @Success      201   {object}  domain.Event
// @Failure      400   {object}  errorResponse
// @Router       /events/new [post]
func (h *EventHandler) CreateNew(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	req, err := bindEvent(c)
	if err != nil {
		return err
	}

	event, err := h.service.CreateNew(c.Request().Context(), user.ID, toEventInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, event)
}

// Update handles PUT /events/:id.
//
// @Summary      Update an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Event ID"
// @Param        body  body      eventRequest  true  "Fields to change"
// @Success      200   {object}  domain.Event
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	req, err := bindEvent(c)
	if err != nil {
		return err
	}

	event, err := h.service.Update(c.Request().Context(), user.ID, c.Param("id"), toEventInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// PatchStep handles PATCH /events/step.
//
// @Summary      Set the wizard step
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      stepRequest  true  "Step and optional event id"
// @Success      200   {object}  domain.Event
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /events/step [patch]
func (h *EventHandler) PatchStep(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req stepRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	event, err := h.service.PatchStep(c.Request().Context(), user.ID, *req.Step, req.EventID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// PatchCategory handles PATCH /events/category.
//
// @Summary      Set the active provider category
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      categoryRequest  true  "Category and optional event id"
// @Success      200   {object}  domain.Event
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /events/category [patch]
func (h *EventHandler) PatchCategory(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	event, err := h.service.PatchCategory(c.Request().Context(), user.ID, *req.ActiveCategory, req.EventID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// Delete handles DELETE /events/:id.
//
// @Summary      Delete an event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), user.ID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "event deleted"})
}

// DeleteCurrent handles DELETE /events/current.
//
// @Summary      Delete the most recently updated event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /events/current [delete]
func (h *EventHandler) DeleteCurrent(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteCurrent(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "event deleted"})
}

func bindEvent(c echo.Context) (eventRequest, error) {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return req, err
	}
	return req, nil
}
