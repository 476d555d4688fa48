package session

import (
	"strings"

	"github.com/ocontest/ocontest-cli/internal/client"
)

// UserRecord is the flattened projection of a server account used
// everywhere outside this package. It is owned by the Manager and only
// ever replaced wholesale, never mutated in place.
type UserRecord struct {
	ID               int64             `json:"id"`
	Email            string            `json:"email"`
	Name             string            `json:"name"`
	Role             string            `json:"role"`
	ProfilePicture   string            `json:"profilePicture"`
	Bio              string            `json:"bio"`
	Country          string            `json:"country"`
	ExperienceLevel  string            `json:"experienceLevel"`
	Address          string            `json:"address"`
	PortfolioURL     string            `json:"portfolio_url"`
	SocialMediaLinks map[string]string `json:"social_media_links"`
}

// flattenUser normalizes the role-specific nested profile into the
// uniform UserRecord shape. This is the single place the two profile
// variants are reconciled.
func flattenUser(u *client.User) *UserRecord {
	if u == nil {
		return nil
	}

	record := &UserRecord{
		ID:               u.ID,
		Email:            u.Email,
		Role:             u.Role,
		SocialMediaLinks: map[string]string{},
	}

	switch u.Role {
	case client.RoleBrand:
		if u.BrandProfile != nil {
			record.Name = u.BrandProfile.CompanyName
			record.ProfilePicture = u.BrandProfile.CompanyLogo
		}
	default:
		record.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
		if u.CreatorProfile != nil {
			record.ProfilePicture = u.CreatorProfile.ProfilePicture
			record.Bio = u.CreatorProfile.Bio
			record.Country = u.CreatorProfile.Country
			record.ExperienceLevel = u.CreatorProfile.ExperienceLevel
			record.Address = u.CreatorProfile.Address
			record.PortfolioURL = u.CreatorProfile.PortfolioURL
			if u.CreatorProfile.SocialMediaLinks != nil {
				record.SocialMediaLinks = u.CreatorProfile.SocialMediaLinks
			}
		}
	}

	// Fall back to the email when the profile has no display name yet.
	if record.Name == "" {
		record.Name = u.Email
	}

	return record
}
