package rpc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/food-ordering/internal/apperr"
	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/repository"
	"github.com/iliyamo/food-ordering/internal/utils"
)

// DefaultKitchenCode is assigned to kitchen registrations that do not
// name an affiliation.
const DefaultKitchenCode = "MAIN_KITCHEN"

type loginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerParams struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	KitchenCode string `json:"kitchenCode"`
}

type refreshParams struct {
	RefreshToken string `json:"refreshToken"`
}

// authResult is the {token, user} payload of every auth method. The
// refresh token rides along so clients can renew the session.
type authResult struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         *model.User `json:"user"`
}

func (g *Gateway) login(ctx context.Context, _ *model.User, params json.RawMessage) (any, error) {
	var p loginParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Email == "" || p.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := g.users.GetByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, apperr.Internal(err)
	}
	if !utils.VerifyPassword(user.PasswordHash, p.Password) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	return g.issueTokens(ctx, user)
}

func (g *Gateway) registerCustomer(ctx context.Context, _ *model.User, params json.RawMessage) (any, error) {
	return g.register(ctx, params, model.RoleCustomer)
}

func (g *Gateway) registerKitchen(ctx context.Context, _ *model.User, params json.RawMessage) (any, error) {
	return g.register(ctx, params, model.RoleKitchen)
}

func (g *Gateway) register(ctx context.Context, params json.RawMessage, role string) (any, error) {
	var p registerParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Name == "" || p.Email == "" {
		return nil, apperr.Validation("name and email are required")
	}
	if len(p.Password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}

	kitchenCode := ""
	if role == model.RoleKitchen {
		kitchenCode = strings.TrimSpace(p.KitchenCode)
		if kitchenCode == "" {
			kitchenCode = DefaultKitchenCode
		}
	}

	user, err := g.users.Create(ctx, p.Name, p.Email, p.Password, role, kitchenCode, g.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperr.Validation("user already exists with this email")
		}
		return nil, apperr.Internal(err)
	}
	return g.issueTokens(ctx, user)
}

// refresh validates a refresh token by hash, revokes it and issues a
// fresh pair (rotation).
func (g *Gateway) refresh(ctx context.Context, _ *model.User, params json.RawMessage) (any, error) {
	var p refreshParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.RefreshToken == "" {
		return nil, apperr.Validation("refreshToken is required")
	}

	hash := utils.HashRefreshRaw(p.RefreshToken)
	userID, err := g.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Unauthorized("invalid or expired refresh token")
		}
		return nil, apperr.Internal(err)
	}
	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	if err := g.tokens.RevokeByHash(ctx, hash); err != nil {
		return nil, apperr.Internal(err)
	}
	return g.issueTokens(ctx, user)
}

// logout revokes the presented refresh token, or all of the caller's
// tokens when none is given.
func (g *Gateway) logout(ctx context.Context, caller *model.User, params json.RawMessage) (any, error) {
	var p refreshParams
	if len(params) > 0 {
		// Params are optional here; ignore malformed bodies.
		_ = json.Unmarshal(params, &p)
	}
	if p.RefreshToken != "" {
		if err := g.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(p.RefreshToken)); err != nil {
			return nil, apperr.Internal(err)
		}
	} else if err := g.tokens.RevokeAllForUser(ctx, caller.ID); err != nil {
		return nil, apperr.Internal(err)
	}
	// Housekeeping piggybacked on a rare write path.
	_ = g.tokens.PurgeExpired(ctx, 30*24*time.Hour)
	return map[string]bool{"success": true}, nil
}

func (g *Gateway) issueTokens(ctx context.Context, user *model.User) (any, error) {
	access, err := utils.NewAccessToken(g.cfg.JWTSecret, user.ID, user.Role, g.cfg.AccessTTLMin)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	refresh, err := utils.NewRefreshToken(g.cfg.RefreshTTLDays)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := g.tokens.StoreRefresh(ctx, user.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, apperr.Internal(err)
	}
	return authResult{Token: access.Token, RefreshToken: refresh.Raw, User: user}, nil
}
