package client

import (
	"context"
	"fmt"
	"net/http"
)

// Role names used by the API. Authorization is enforced server-side;
// these are only used for request routing and UI hints.
const (
	RoleCreator = "creator"
	RoleBrand   = "brand"
)

// AuthService talks to the /auth endpoints. It is used by the session
// manager through a client without a refresher attached, so auth calls
// never trigger their own refresh-and-retry.
type AuthService struct {
	client *Client
}

// TokenPair carries the two credentials issued at login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginResponse is the body of a successful POST /auth/login/.
type LoginResponse struct {
	Tokens TokenPair `json:"tokens"`
	User   *User     `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var resp LoginResponse
	if err := s.client.post(ctx, "/auth/login/", body, &resp); err != nil {
		return nil, err
	}

	if resp.Tokens.Access == "" || resp.Tokens.Refresh == "" || resp.User == nil {
		return nil, fmt.Errorf("login response missing tokens or user")
	}

	return &resp, nil
}

// BrandDetails is the extra profile data required for brand signups.
type BrandDetails struct {
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	PhoneNumber string `json:"phone_number"`
}

// RegisterRequest covers both creator and brand signups. Brand signups
// go to a dedicated endpoint and must include BrandDetails.
type RegisterRequest struct {
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
	Brand           *BrandDetails
}

// RegisterResponse reports whether the account still needs email
// verification before the first login.
type RegisterResponse struct {
	Message             string `json:"message"`
	RequireVerification bool   `json:"require_verification"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	endpoint := "/auth/register/"
	body := map[string]any{
		"email":            req.Email,
		"password":         req.Password,
		"confirm_password": req.ConfirmPassword,
	}

	if req.Role == RoleBrand {
		if req.Brand == nil {
			return nil, fmt.Errorf("brand registration requires company details")
		}
		endpoint = "/auth/register/brand/"
		body["company_name"] = req.Brand.CompanyName
		body["industry"] = req.Brand.Industry
		body["phone_number"] = req.Brand.PhoneNumber
	}

	var resp RegisterResponse
	if err := s.client.post(ctx, endpoint, body, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// RefreshToken exchanges the refresh token for a new access token.
func (s *AuthService) RefreshToken(ctx context.Context, refresh string) (string, error) {
	body := map[string]string{"refresh": refresh}

	var resp struct {
		Access string `json:"access"`
	}
	if err := s.client.post(ctx, "/auth/token/refresh/", body, &resp); err != nil {
		return "", err
	}

	if resp.Access == "" {
		return "", fmt.Errorf("refresh response missing access token")
	}

	return resp.Access, nil
}

// Logout notifies the server that the session ended. The caller passes
// the access token explicitly because local credentials are already
// cleared by the time this fires, and the call is best-effort anyway.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	req, err := s.client.newRequest(ctx, http.MethodPost, "/auth/logout/", nil)
	if err != nil {
		return err
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	return s.client.do(req, nil)
}
