package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sibarkumen/backend/internal/domain/document"
	"github.com/sibarkumen/backend/internal/domain/identity"
	"github.com/sibarkumen/backend/internal/interfaces/http/middleware"
	"github.com/sibarkumen/backend/internal/interfaces/http/router"
)

// Handlers bundles every HTTP handler of the server
type Handlers struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Categories  *CategoryHandler
	Units       *NamedHandler
	Positions   *NamedHandler
	Suppliers   *SupplierHandler
	Employees   *EmployeeHandler
	Items       *ItemHandler
	Opnames     *OpnameHandler
	Documents   *DocumentHandler
	Prints      *PrintHandler
	Attachments *AttachmentHandler
	Dashboard   *DashboardHandler
	System      *SystemHandler
}

// RouteOptions tunes per-route middleware
type RouteOptions struct {
	// SignInLimit guards POST /sign-in; nil disables it.
	SignInLimit gin.HandlerFunc
	// UploadLimit caps the multipart body of scan uploads, in bytes.
	UploadLimit int64
	// Idempotency guards the routes that issue a document number; nil
	// disables it.
	Idempotency gin.HandlerFunc
}

// issuing builds the chain guard, idempotency, handler.
func (o RouteOptions) issuing(guard, h gin.HandlerFunc) []gin.HandlerFunc {
	if o.Idempotency == nil {
		return []gin.HandlerFunc{guard, h}
	}
	return []gin.HandlerFunc{guard, o.Idempotency, h}
}

var (
	adminOnly      = middleware.RequireRoles(identity.RoleAdmin)
	documentWriter = middleware.RequireRoles(identity.RoleAdmin, identity.RoleStaff)
	approver       = middleware.RequireRoles(identity.RoleAdmin, identity.RoleSupervisor)
)

// SignInRoutes mounts /sign-in. The access gate already sends signed-in
// callers to the dashboard.
func SignInRoutes(h *AuthHandler, opts RouteOptions) *router.DomainGroup {
	g := router.NewDomainGroup("sign-in", middleware.SignInPath)
	g.GET("", h.SignInPage)
	if opts.SignInLimit != nil {
		g.POST("", opts.SignInLimit, h.SignIn)
	} else {
		g.POST("", h.SignIn)
	}
	return g
}

// HealthRoutes mounts /health
func HealthRoutes(h *SystemHandler) *router.DomainGroup {
	g := router.NewDomainGroup("health", "/health")
	g.GET("", h.Ready)
	g.GET("/live", h.Live)
	g.GET("/ready", h.Ready)
	g.GET("/info", h.Info)
	return g
}

// AuthAPIRoutes mounts the token endpoints under /api/<version>/auth
func AuthAPIRoutes(h *AuthHandler) *router.DomainGroup {
	g := router.NewDomainGroup("auth", "/auth")
	g.POST("/refresh", h.Refresh)
	return g
}

// DashboardRoutes mounts everything behind the access gate. Reads are open
// to every role; writes carry a role guard.
func DashboardRoutes(h Handlers, opts RouteOptions) *router.DomainGroup {
	g := router.NewDomainGroup("dashboard", middleware.DashboardPath)
	g.GET("", h.Dashboard.Stats)

	g.POST("/sign-out", h.Auth.SignOut)
	g.GET("/me", h.Auth.Me)
	g.PUT("/me/password", h.Auth.ChangePassword)

	users := g.Group("users", "/users").Use(adminOnly)
	users.GET("", h.Users.List)
	users.GET("/:id", h.Users.Get)
	users.POST("", h.Users.Create)
	users.PUT("/:id/role", h.Users.ChangeRole)
	users.POST("/:id/deactivate", h.Users.Deactivate)
	users.POST("/:id/activate", h.Users.Activate)

	categories := g.Group("categories", "/categories")
	categories.GET("", h.Categories.List)
	categories.GET("/:id", h.Categories.Get)
	categories.POST("", adminOnly, h.Categories.Create)
	categories.PUT("/:id", adminOnly, h.Categories.Update)
	categories.DELETE("/:id", adminOnly, h.Categories.Delete)

	namedRoutes(g.Group("units", "/units"), h.Units)
	namedRoutes(g.Group("positions", "/positions"), h.Positions)

	suppliers := g.Group("suppliers", "/suppliers")
	suppliers.GET("", h.Suppliers.List)
	suppliers.GET("/:id", h.Suppliers.Get)
	suppliers.POST("", adminOnly, h.Suppliers.Create)
	suppliers.PUT("/:id", adminOnly, h.Suppliers.Update)
	suppliers.PUT("/:id/active", adminOnly, h.Suppliers.SetActive)
	suppliers.DELETE("/:id", adminOnly, h.Suppliers.Delete)
	suppliers.POST("/:id/accounts", adminOnly, h.Suppliers.AddAccount)
	suppliers.PUT("/:id/accounts/:accountId", adminOnly, h.Suppliers.UpdateAccount)
	suppliers.POST("/:id/accounts/:accountId/primary", adminOnly, h.Suppliers.SetPrimaryAccount)
	suppliers.DELETE("/:id/accounts/:accountId", adminOnly, h.Suppliers.DeleteAccount)

	employees := g.Group("employees", "/employees")
	employees.GET("", h.Employees.List)
	employees.GET("/:id", h.Employees.Get)
	employees.GET("/:id/assignments", h.Employees.History)
	employees.POST("", adminOnly, h.Employees.Create)
	employees.PUT("/:id", adminOnly, h.Employees.Update)
	employees.PUT("/:id/active", adminOnly, h.Employees.SetActive)
	employees.DELETE("/:id", adminOnly, h.Employees.Delete)
	employees.POST("/:id/assignments", adminOnly, h.Employees.Assign)
	employees.POST("/:id/assignments/end", adminOnly, h.Employees.EndAssignment)

	items := g.Group("items", "/items")
	items.GET("", h.Items.List)
	items.GET("/search", h.Items.Search)
	items.GET("/:id", h.Items.Get)
	items.GET("/:id/mutations", h.Items.ItemMutations)
	items.POST("", adminOnly, h.Items.Create)
	items.PUT("/:id", adminOnly, h.Items.Update)
	items.PUT("/:id/active", adminOnly, h.Items.SetActive)
	items.DELETE("/:id", adminOnly, h.Items.Delete)

	g.GET("/mutations", h.Items.Mutations)

	opnames := g.Group("opnames", "/opnames")
	opnames.GET("", h.Opnames.List)
	opnames.GET("/:id", h.Opnames.Get)
	opnames.POST("", opts.issuing(documentWriter, h.Opnames.Create)...)
	opnames.PUT("/:id/counts", documentWriter, h.Opnames.RecordCounts)
	opnames.POST("/:id/cancel", documentWriter, h.Opnames.Cancel)
	opnames.POST("/:id/complete", approver, h.Opnames.Complete)

	g.GET("/documents/next-number/:type", h.Documents.NextNumber)

	spb := g.Group("spb", "/spb")
	spb.GET("", h.Documents.ListRequisitions)
	spb.GET("/:id", h.Documents.GetRequisition)
	spb.GET("/:id/print", h.Prints.Requisition)
	spb.POST("", opts.issuing(documentWriter, h.Documents.CreateRequisition)...)
	spb.POST("/:id/approve", opts.issuing(approver, h.Documents.Approve)...)
	spb.POST("/:id/reject", approver, h.Documents.RejectRequisition)

	sppb := g.Group("sppb", "/sppb")
	sppb.GET("", h.Documents.ListApprovals)
	sppb.GET("/:id", h.Documents.GetApproval)
	sppb.GET("/:id/print", h.Prints.Approval)

	bastIn := g.Group("bast-in", "/bast-in")
	bastIn.GET("", h.Documents.ListHandovers(document.DirectionIn))
	bastIn.GET("/:id", h.Documents.GetHandover(document.DirectionIn))
	bastIn.GET("/:id/print", h.Prints.Handover(document.DirectionIn))
	bastIn.POST("", opts.issuing(documentWriter, h.Documents.CreateHandoverIn)...)
	bastIn.GET("/:id/attachment", h.Attachments.Link)
	bastIn.POST("/:id/attachment", documentWriter, middleware.BodyLimit(uploadBodyLimit(opts.UploadLimit)), h.Attachments.Upload)

	bastOut := g.Group("bast-out", "/bast-out")
	bastOut.GET("", h.Documents.ListHandovers(document.DirectionOut))
	bastOut.GET("/:id", h.Documents.GetHandover(document.DirectionOut))
	bastOut.GET("/:id/print", h.Prints.Handover(document.DirectionOut))
	bastOut.POST("", opts.issuing(documentWriter, h.Documents.CreateHandoverOut)...)

	return g
}

func namedRoutes(g *router.DomainGroup, h *NamedHandler) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", adminOnly, h.Create)
	g.PUT("/:id", adminOnly, h.Update)
	g.DELETE("/:id", adminOnly, h.Delete)
}

// multipartOverhead leaves room for the form boundaries and part headers
// around the scan itself.
const multipartOverhead = 64 << 10

func uploadBodyLimit(fileLimit int64) int64 {
	if fileLimit <= 0 {
		fileLimit = 10 << 20
	}
	return fileLimit + multipartOverhead
}
