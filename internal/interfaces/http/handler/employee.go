package handler

import (
	"github.com/gin-gonic/gin"
	masterdataapp "github.com/sibarkumen/backend/internal/application/masterdata"
)

// EmployeeHandler handles employees and their position assignments
type EmployeeHandler struct {
	BaseHandler
	employees *masterdataapp.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(employees *masterdataapp.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// List handles GET /dashboard/employees?active=
func (h *EmployeeHandler) List(c *gin.Context) {
	filter, ok := h.listFilterWith(c, "active")
	if !ok {
		return
	}
	page, err := h.employees.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get handles GET /dashboard/employees/:id
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	employee, err := h.employees.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, employee)
}

// Create handles POST /dashboard/employees
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req masterdataapp.EmployeeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	employee, err := h.employees.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, employee)
}

// Update handles PUT /dashboard/employees/:id
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req masterdataapp.EmployeeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	employee, err := h.employees.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, employee)
}

// SetActive handles PUT /dashboard/employees/:id/active
func (h *EmployeeHandler) SetActive(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req masterdataapp.SetActiveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	employee, err := h.employees.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, employee)
}

// Delete handles DELETE /dashboard/employees/:id
func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.employees.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Assign handles POST /dashboard/employees/:id/assignments
func (h *EmployeeHandler) Assign(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req masterdataapp.AssignRequest
	if !h.bindJSON(c, &req) {
		return
	}
	employee, err := h.employees.Assign(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, employee)
}

// EndAssignment handles POST /dashboard/employees/:id/assignments/end
func (h *EmployeeHandler) EndAssignment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req masterdataapp.EndAssignmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	employee, err := h.employees.EndAssignment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, employee)
}

// History handles GET /dashboard/employees/:id/assignments
func (h *EmployeeHandler) History(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	history, err := h.employees.History(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}
