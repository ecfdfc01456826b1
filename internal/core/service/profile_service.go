package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-api/internal/core/domain"
	"github.com/devconnector/devconnector-api/internal/core/ports"
	"github.com/devconnector/devconnector-api/internal/pkg/metrics"
)

// ProfileService is the profile aggregate engine. Every mutation loads the
// whole document, changes it in memory and writes it back, serialized per
// owner.
type ProfileService struct {
	profiles ports.ProfileRepository
	users    ports.UserRepository
	repos    ports.RepositoryLister
	lock     ports.Serializer
	log      zerolog.Logger
	now      func() time.Time
}

func NewProfileService(
	profiles ports.ProfileRepository,
	users ports.UserRepository,
	repos ports.RepositoryLister,
	lock ports.Serializer,
	log zerolog.Logger,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		users:    users,
		repos:    repos,
		lock:     lock,
		log:      log,
		now:      time.Now,
	}
}

// userKey serializes everything a user owns outright: their profile, new
// posts by them, and the account cascade.
func userKey(userID string) string { return "user:" + userID }

func (s *ProfileService) GetCurrent(ctx context.Context, ownerID string) (*domain.Profile, error) {
	return s.profiles.FindByOwner(ctx, ownerID)
}

// Upsert creates the owner's profile on first use and afterwards only
// overwrites the supplied fields.
func (s *ProfileService) Upsert(ctx context.Context, ownerID string, fields domain.ProfileFields) (*domain.Profile, error) {
	var out *domain.Profile
	err := s.lock.Do(ctx, userKey(ownerID), func(ctx context.Context) error {
		now := s.now().UTC()
		p, err := s.profiles.FindByOwner(ctx, ownerID)
		switch {
		case errors.Is(err, domain.ErrProfileNotFound):
			owner, err := s.users.FindByID(ctx, ownerID)
			if err != nil {
				return err
			}
			p = domain.NewProfile(owner, now)
			p.Apply(fields, now)
			if err := s.profiles.Insert(ctx, p); err != nil {
				return err
			}
			metrics.AggregateMutationsTotal.WithLabelValues("profile", "create").Inc()
			s.log.Info().Str("user_id", ownerID).Msg("profile created")
		case err != nil:
			return err
		default:
			p.Apply(fields, now)
			if err := s.profiles.Replace(ctx, p); err != nil {
				return err
			}
			metrics.AggregateMutationsTotal.WithLabelValues("profile", "update").Inc()
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ProfileService) AddExperience(ctx context.Context, ownerID string, in ports.ExperienceInput) (*domain.Profile, error) {
	if errs := validateDated(in.From, in.To, in.Current, requiredField{"title", in.Title}, requiredField{"company", in.Company}); len(errs) > 0 {
		return nil, errs
	}
	return s.mutate(ctx, ownerID, "add_experience", func(p *domain.Profile) error {
		p.AddExperience(domain.Experience{
			Title:       in.Title,
			Company:     in.Company,
			Location:    in.Location,
			From:        in.From,
			To:          in.To,
			Current:     in.Current,
			Description: in.Description,
		})
		return nil
	})
}

func (s *ProfileService) RemoveExperience(ctx context.Context, ownerID, experienceID string) (*domain.Profile, error) {
	if err := domain.ValidateID(experienceID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, ownerID, "remove_experience", func(p *domain.Profile) error {
		return p.RemoveExperience(experienceID)
	})
}

func (s *ProfileService) AddEducation(ctx context.Context, ownerID string, in ports.EducationInput) (*domain.Profile, error) {
	errs := validateDated(in.From, in.To, in.Current,
		requiredField{"school", in.School},
		requiredField{"degree", in.Degree},
		requiredField{"fieldofstudy", in.FieldOfStudy},
	)
	if len(errs) > 0 {
		return nil, errs
	}
	return s.mutate(ctx, ownerID, "add_education", func(p *domain.Profile) error {
		p.AddEducation(domain.Education{
			School:       in.School,
			Degree:       in.Degree,
			FieldOfStudy: in.FieldOfStudy,
			From:         in.From,
			To:           in.To,
			Current:      in.Current,
			Description:  in.Description,
		})
		return nil
	})
}

func (s *ProfileService) RemoveEducation(ctx context.Context, ownerID, educationID string) (*domain.Profile, error) {
	if err := domain.ValidateID(educationID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, ownerID, "remove_education", func(p *domain.Profile) error {
		return p.RemoveEducation(educationID)
	})
}

// Delete removes the owner's profile; having none is fine.
func (s *ProfileService) Delete(ctx context.Context, ownerID string) error {
	return s.lock.Do(ctx, userKey(ownerID), func(ctx context.Context) error {
		return s.profiles.DeleteByOwner(ctx, ownerID)
	})
}

func (s *ProfileService) GetByUser(ctx context.Context, userID string) (*domain.Profile, error) {
	if err := domain.ValidateID(userID); err != nil {
		return nil, err
	}
	return s.profiles.FindByOwner(ctx, userID)
}

func (s *ProfileService) List(ctx context.Context) ([]*domain.Profile, error) {
	return s.profiles.List(ctx)
}

func (s *ProfileService) GitHubRepos(ctx context.Context, username string) ([]ports.Repository, error) {
	if username == "" {
		return nil, domain.Required("username")
	}
	return s.repos.ListRepositories(ctx, username)
}

// mutate runs one read-modify-write cycle on the owner's profile. When change
// fails nothing is written.
func (s *ProfileService) mutate(ctx context.Context, ownerID, op string, change func(*domain.Profile) error) (*domain.Profile, error) {
	var out *domain.Profile
	err := s.lock.Do(ctx, userKey(ownerID), func(ctx context.Context) error {
		p, err := s.profiles.FindByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		if err := change(p); err != nil {
			return err
		}
		p.UpdatedAt = s.now().UTC()
		if err := s.profiles.Replace(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		metrics.AggregateMutationsTotal.WithLabelValues("profile", op).Inc()
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type requiredField struct {
	name  string
	value string
}

func validateDated(from time.Time, to *time.Time, current bool, fields ...requiredField) domain.ValidationErrors {
	var errs domain.ValidationErrors
	for _, f := range fields {
		if f.value == "" {
			errs = append(errs, domain.Required(f.name)...)
		}
	}
	if from.IsZero() {
		errs = append(errs, domain.FieldError{Field: "from", Message: "from date is required"})
	}
	if to != nil && !from.IsZero() && to.Before(from) {
		errs = append(errs, domain.FieldError{Field: "to", Message: "to date must not be before from date"})
	}
	if to != nil && current {
		errs = append(errs, domain.FieldError{Field: "to", Message: "to date must be empty for a current entry"})
	}
	return errs
}
