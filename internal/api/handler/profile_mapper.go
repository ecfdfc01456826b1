package handler

import (
	"time"

	"github.com/devconnector/devconnector-api/internal/core/domain"
	"github.com/devconnector/devconnector-api/internal/core/ports"
)

const dateLayout = "2006-01-02"

func toProfileFields(req profileRequest) domain.ProfileFields {
	return domain.ProfileFields{
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Status:         req.Status,
		Bio:            req.Bio,
		GitHubUsername: req.GitHubUsername,
		Skills:         req.Skills,
		Social: domain.Social{
			YouTube:   req.YouTube,
			Twitter:   req.Twitter,
			Facebook:  req.Facebook,
			LinkedIn:  req.LinkedIn,
			Instagram: req.Instagram,
		},
	}
}

func toExperienceInput(req experienceRequest) ports.ExperienceInput {
	return ports.ExperienceInput{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        parseDate(req.From),
		To:          parseOptionalDate(req.To),
		Current:     req.Current,
		Description: req.Description,
	}
}

func toEducationInput(req educationRequest) ports.EducationInput {
	return ports.EducationInput{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         parseDate(req.From),
		To:           parseOptionalDate(req.To),
		Current:      req.Current,
		Description:  req.Description,
	}
}

// parseDate expects a value the validator already accepted; anything else
// becomes the zero time, which the service rejects as missing.
func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func parseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := parseDate(s)
	if t.IsZero() {
		return nil
	}
	return &t
}
