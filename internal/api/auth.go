package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gnfinvest/gnf/internal/domain"
)

// Login exchanges investor credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (domain.Credential, error) {
	if err := req.Validate(); err != nil {
		return domain.Credential{}, err
	}
	body := map[string]string{
		"emailOrUsername": strings.TrimSpace(req.EmailOrUsername),
		"password":        req.Password,
	}
	return c.exchange(ctx, "/auth/login", body, domain.RoleInvestor)
}

// AdminLogin exchanges admin credentials for a bearer token.
func (c *Client) AdminLogin(ctx context.Context, req domain.LoginRequest) (domain.Credential, error) {
	if err := req.Validate(); err != nil {
		return domain.Credential{}, err
	}
	body := map[string]string{
		"username": strings.TrimSpace(req.EmailOrUsername),
		"password": req.Password,
	}
	return c.exchange(ctx, "/admin/login", body, domain.RoleAdmin)
}

// Signup registers a new investor and returns a token for the new account.
func (c *Client) Signup(ctx context.Context, req domain.SignupRequest) (domain.Credential, error) {
	if err := req.Validate(); err != nil {
		return domain.Credential{}, err
	}
	body := map[string]string{
		"username":        strings.TrimSpace(req.Username),
		"firstName":       strings.TrimSpace(req.FirstName),
		"lastName":        strings.TrimSpace(req.LastName),
		"email":           strings.TrimSpace(req.Email),
		"dateOfBirth":     req.DateOfBirth,
		"address":         strings.TrimSpace(req.Address),
		"phone":           strings.TrimSpace(req.Phone),
		"country":         strings.TrimSpace(req.Country),
		"password":        req.Password,
		"confirmPassword": req.ConfirmPassword,
	}
	return c.exchange(ctx, "/auth/signup", body, domain.RoleInvestor)
}

func (c *Client) exchange(ctx context.Context, path string, body any, role domain.Role) (domain.Credential, error) {
	var resp tokenResponse
	err := c.do(ctx, call{method: http.MethodPost, path: path, body: body}, &resp)
	if err != nil {
		return domain.Credential{}, err
	}
	if resp.Token == "" {
		return domain.Credential{}, fmt.Errorf("%w: %s returned no token", ErrInvalidResponse, path)
	}
	return domain.Credential{Token: resp.Token, Role: role}, nil
}

// Me returns the profile of the credential's owner.
func (c *Client) Me(ctx context.Context, cred domain.Credential) (domain.User, error) {
	var resp wireUser
	if err := c.do(ctx, call{method: http.MethodGet, path: "/auth/me", auth: authUser, cred: cred}, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.toDomain(), nil
}

// UpdateProfile changes the non-empty fields of upd.
func (c *Client) UpdateProfile(ctx context.Context, cred domain.Credential, upd domain.ProfileUpdate) (domain.User, error) {
	body := map[string]string{}
	for k, v := range map[string]string{
		"username":  upd.Username,
		"email":     upd.Email,
		"firstName": upd.FirstName,
		"lastName":  upd.LastName,
	} {
		if s := strings.TrimSpace(v); s != "" {
			body[k] = s
		}
	}
	if len(body) == 0 {
		return domain.User{}, &domain.ValidationError{Reason: "nothing to update"}
	}

	var resp struct {
		User *wireUser `json:"user"`
	}
	if err := c.do(ctx, call{method: http.MethodPut, path: "/users/profile", body: body, auth: authUser, cred: cred}, &resp); err != nil {
		return domain.User{}, err
	}
	if resp.User == nil {
		return domain.User{}, nil
	}
	return resp.User.toDomain(), nil
}

// ChangePassword replaces the account password.
func (c *Client) ChangePassword(ctx context.Context, cred domain.Credential, change domain.PasswordChange) error {
	if err := change.Validate(); err != nil {
		return err
	}
	body := map[string]string{
		"currentPassword": change.Current,
		"newPassword":     change.New,
	}
	return c.do(ctx, call{method: http.MethodPut, path: "/users/password", body: body, auth: authUser, cred: cred}, nil)
}
