package rpc

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/apperr"
	"github.com/iliyamo/food-ordering/internal/cache"
	"github.com/iliyamo/food-ordering/internal/config"
	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/repository"
	"github.com/iliyamo/food-ordering/internal/utils"
	"github.com/iliyamo/food-ordering/internal/workflow"
)

// handlerFunc executes one method. caller is nil for public methods.
type handlerFunc func(ctx context.Context, caller *model.User, params json.RawMessage) (any, error)

// method pairs a handler with the roles allowed to call it. An empty
// role list marks a public method; a nil list with auth=true admits
// any authenticated user.
type method struct {
	handler handlerFunc
	auth    bool
	roles   []string
}

// Gateway maps JSON-RPC method names onto workflow and repository
// operations and enforces authentication per method.
type Gateway struct {
	cfg       config.Config
	users     *repository.UserRepo
	tokens    *repository.TokenRepo
	menu      *repository.MenuRepo
	analytics *repository.AnalyticsRepo
	orders    *workflow.Workflow
	menuCache *cache.MenuCache

	methods map[string]method
}

func NewGateway(
	cfg config.Config,
	users *repository.UserRepo,
	tokens *repository.TokenRepo,
	menu *repository.MenuRepo,
	analytics *repository.AnalyticsRepo,
	orders *workflow.Workflow,
	menuCache *cache.MenuCache,
) *Gateway {
	g := &Gateway{
		cfg:       cfg,
		users:     users,
		tokens:    tokens,
		menu:      menu,
		analytics: analytics,
		orders:    orders,
		menuCache: menuCache,
	}
	staff := []string{model.RoleKitchen, model.RoleAdmin}
	g.methods = map[string]method{
		// Public allow-list: login, registration and menu reads.
		"auth.login":            {handler: g.login},
		"auth.registerCustomer": {handler: g.registerCustomer},
		"auth.registerKitchen":  {handler: g.registerKitchen},
		"auth.refresh":          {handler: g.refresh},
		"menu.list":             {handler: g.menuList},
		"menu.getMenu":          {handler: g.menuGetAll},
		"menu.getItem":          {handler: g.menuGetItem},

		// Authenticated methods with declared role capabilities.
		"auth.logout":                 {handler: g.logout, auth: true},
		"menu.addItem":                {handler: g.menuAddItem, auth: true, roles: staff},
		"menu.updateItem":             {handler: g.menuUpdateItem, auth: true, roles: staff},
		"orders.placeOrder":           {handler: g.placeOrder, auth: true, roles: []string{model.RoleCustomer}},
		"orders.getOrder":             {handler: g.getOrder, auth: true},
		"orders.getCustomerOrders":    {handler: g.customerOrders, auth: true},
		"orders.updateStatus":         {handler: g.updateStatus, auth: true, roles: staff},
		"kitchen.getOrders":           {handler: g.kitchenOrders, auth: true, roles: staff},
		"analytics.getDashboardStats": {handler: g.dashboardStats, auth: true, roles: staff},
	}
	return g
}

// Handle serves POST /rpc. Protocol failures map to the reserved
// JSON-RPC codes; domain errors surface with their taxonomy code. No
// error, panic included, escapes uncaught past this boundary.
func (g *Gateway) Handle(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest,
			errorResponse(nil, apperr.CodeInvalidRequest, "Invalid Request"))
	}
	if req.JSONRPC != "2.0" || req.Method == "" || len(req.ID) == 0 {
		return c.JSON(http.StatusBadRequest,
			errorResponse(req.ID, apperr.CodeInvalidRequest, "Invalid Request"))
	}

	m, ok := g.methods[req.Method]
	if !ok {
		return c.JSON(http.StatusNotFound,
			errorResponse(req.ID, apperr.CodeMethodNotFound, "Method not found"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var caller *model.User
	if m.auth {
		user, err := g.authenticate(ctx, c)
		if err != nil {
			e := apperr.From(err)
			return c.JSON(httpStatusFor(e.Code), errorResponse(req.ID, e.Code, e.Message))
		}
		if len(m.roles) > 0 && !roleAllowed(m.roles, user.Role) {
			return c.JSON(http.StatusForbidden,
				errorResponse(req.ID, apperr.CodeForbidden, "insufficient permissions"))
		}
		caller = user
	}

	result, err := g.invoke(ctx, m, caller, req.Params)
	if err != nil {
		e := apperr.From(err)
		if e.Code == apperr.CodeInternal {
			log.Printf("rpc: %s failed: %v", req.Method, err)
		}
		return c.JSON(httpStatusFor(e.Code), errorResponse(req.ID, e.Code, e.Message))
	}
	return c.JSON(http.StatusOK, resultResponse(req.ID, result))
}

// invoke runs the handler with a panic guard so a bug in one method
// cannot crash the server.
func (g *Gateway) invoke(ctx context.Context, m method, caller *model.User, params json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("rpc: handler panic: %v", r)
			err = apperr.From(apperr.Internal(nil))
		}
	}()
	return m.handler(ctx, caller, params)
}

// authenticate resolves the Bearer credential to a user record.
func (g *Gateway) authenticate(ctx context.Context, c echo.Context) (*model.User, error) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return nil, apperr.Unauthorized("access token required")
	}
	claims, err := utils.VerifyAccessToken(g.cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	user, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token")
	}
	return user, nil
}

func roleAllowed(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// httpStatusFor maps envelope codes to HTTP statuses. Domain codes
// reuse their HTTP meaning; protocol codes collapse to 500.
func httpStatusFor(code int) int {
	switch code {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decode unmarshals params into v, mapping malformed input to a
// validation error.
func decode(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return apperr.Validation("missing params")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return apperr.Validation("malformed params")
	}
	return nil
}

func actorFor(u *model.User) workflow.Actor {
	return workflow.Actor{ID: u.ID, Role: u.Role, KitchenCode: u.KitchenCode}
}
