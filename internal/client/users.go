package client

import "context"

// User is the wire shape of an account as the server returns it, with
// the role-specific profile nested under creator_profile or
// brand_profile. The session manager flattens it before anything else
// sees it.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`

	CreatorProfile *CreatorProfile `json:"creator_profile,omitempty"`
	BrandProfile   *BrandProfile   `json:"brand_profile,omitempty"`
}

type CreatorProfile struct {
	ProfilePicture   string            `json:"profile_picture"`
	Bio              string            `json:"bio"`
	Country          string            `json:"country"`
	ExperienceLevel  string            `json:"experience_level"`
	Address          string            `json:"address"`
	PortfolioURL     string            `json:"portfolio_url"`
	SocialMediaLinks map[string]string `json:"social_media_links"`
}

type BrandProfile struct {
	CompanyName string `json:"company_name"`
	CompanyLogo string `json:"company_logo"`
	Industry    string `json:"industry"`
	PhoneNumber string `json:"phone_number"`
	Website     string `json:"website"`
}

// UserService talks to the /users endpoints.
type UserService struct {
	client *Client
}

// Me fetches the authenticated account with its nested profile.
func (s *UserService) Me(ctx context.Context) (*User, error) {
	var user User
	if err := s.client.get(ctx, "/users/me/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile patches profile fields. Only the keys present in the
// map are sent, matching the partial-update contract of the endpoint.
func (s *UserService) UpdateProfile(ctx context.Context, fields map[string]any) (*User, error) {
	var user User
	if err := s.client.patch(ctx, "/users/me/update/", fields, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
