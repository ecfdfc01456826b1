package ports

import (
	"context"
	"time"

	"github.com/devconnector/devconnector-api/internal/core/domain"
)

// ExperienceInput is a new work-history entry.
type ExperienceInput struct {
	Title       string
	Company     string
	Location    string
	From        time.Time
	To          *time.Time
	Current     bool
	Description string
}

// EducationInput is a new education entry.
type EducationInput struct {
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           *time.Time
	Current      bool
	Description  string
}

// Repository is one entry of a user's public source repositories.
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	HTMLURL         string    `json:"html_url"`
	Description     string    `json:"description"`
	StargazersCount int       `json:"stargazers_count"`
	WatchersCount   int       `json:"watchers_count"`
	ForksCount      int       `json:"forks_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// RepositoryLister lists a username's public repositories on a third-party
// host. Unknown users and remote failures both yield domain.ErrGitHubNotFound.
type RepositoryLister interface {
	ListRepositories(ctx context.Context, username string) ([]Repository, error)
}

type ProfileService interface {
	GetCurrent(ctx context.Context, ownerID string) (*domain.Profile, error)
	Upsert(ctx context.Context, ownerID string, fields domain.ProfileFields) (*domain.Profile, error)
	AddExperience(ctx context.Context, ownerID string, in ExperienceInput) (*domain.Profile, error)
	RemoveExperience(ctx context.Context, ownerID, experienceID string) (*domain.Profile, error)
	AddEducation(ctx context.Context, ownerID string, in EducationInput) (*domain.Profile, error)
	RemoveEducation(ctx context.Context, ownerID, educationID string) (*domain.Profile, error)
	Delete(ctx context.Context, ownerID string) error
	GetByUser(ctx context.Context, userID string) (*domain.Profile, error)
	List(ctx context.Context) ([]*domain.Profile, error)
	GitHubRepos(ctx context.Context, username string) ([]Repository, error)
}
