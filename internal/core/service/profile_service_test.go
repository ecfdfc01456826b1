package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-api/internal/core/domain"
	"github.com/devconnector/devconnector-api/internal/core/ports"
)

type stubRepoLister struct {
	repos map[string][]ports.Repository
}

func (s stubRepoLister) ListRepositories(_ context.Context, username string) ([]ports.Repository, error) {
	r, ok := s.repos[username]
	if !ok {
		return nil, domain.ErrGitHubNotFound
	}
	return r, nil
}

const ownerID = "64b000000000000000000001"

func newTestProfileService() (*ProfileService, *stubProfileRepo, *inlineLock) {
	users := newStubUserRepo(&domain.User{ID: ownerID, Name: "Alice", Avatar: "avatar:alice"})
	profiles := newStubProfileRepo()
	lock := &inlineLock{}
	lister := stubRepoLister{repos: map[string][]ports.Repository{
		"octocat": {{ID: 1, Name: "hello-world"}},
	}}
	return NewProfileService(profiles, users, lister, lock, zerolog.Nop()), profiles, lock
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProfileService_Upsert_CreatesThenUpdates(t *testing.T) {
	svc, repo, lock := newTestProfileService()
	ctx := context.Background()

	p, err := svc.Upsert(ctx, ownerID, domain.ProfileFields{
		Status:  "Developer",
		Skills:  "go, js ,,",
		Company: "Acme",
	})
	if err != nil {
		t.Fatalf("Upsert (create) returned error: %v", err)
	}
	if p.Name != "Alice" || p.Avatar != "avatar:alice" {
		t.Fatalf("owner identity not copied: %+v", p)
	}
	if !reflect.DeepEqual(p.Skills, []string{"go", "js"}) {
		t.Fatalf("unexpected skills %v", p.Skills)
	}

	p, err = svc.Upsert(ctx, ownerID, domain.ProfileFields{Status: "Senior Developer"})
	if err != nil {
		t.Fatalf("Upsert (update) returned error: %v", err)
	}
	if p.Status != "Senior Developer" {
		t.Fatalf("status not updated: %q", p.Status)
	}
	if p.Company != "Acme" {
		t.Fatalf("omitted field was cleared: company=%q", p.Company)
	}
	if len(repo.byOwner) != 1 {
		t.Fatalf("expected exactly one profile, got %d", len(repo.byOwner))
	}
	if lock.keys[0] != "user:"+ownerID {
		t.Fatalf("unexpected serializer key %q", lock.keys[0])
	}
}

func TestProfileService_Upsert_Idempotent(t *testing.T) {
	svc, _, _ := newTestProfileService()
	ctx := context.Background()
	fields := domain.ProfileFields{Status: "Developer", Skills: "go"}

	first, err := svc.Upsert(ctx, ownerID, fields)
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	second, err := svc.Upsert(ctx, ownerID, fields)
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if first.ID != second.ID || first.Status != second.Status || !reflect.DeepEqual(first.Skills, second.Skills) {
		t.Fatalf("repeated upsert changed the document: %+v vs %+v", first, second)
	}
}

func TestProfileService_Experience_AddRemoveRoundTrip(t *testing.T) {
	svc, _, _ := newTestProfileService()
	ctx := context.Background()
	if _, err := svc.Upsert(ctx, ownerID, domain.ProfileFields{Status: "Dev", Skills: "go"}); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	p, err := svc.AddExperience(ctx, ownerID, ports.ExperienceInput{Title: "Engineer", Company: "Old Co", From: day(2018, 1, 1)})
	if err != nil {
		t.Fatalf("AddExperience returned error: %v", err)
	}
	before := append([]domain.Experience(nil), p.Experience...)

	p, err = svc.AddExperience(ctx, ownerID, ports.ExperienceInput{Title: "Lead", Company: "New Co", From: day(2021, 1, 1), Current: true})
	if err != nil {
		t.Fatalf("AddExperience returned error: %v", err)
	}
	if p.Experience[0].Company != "New Co" {
		t.Fatalf("newest entry not first: %+v", p.Experience)
	}

	p, err = svc.RemoveExperience(ctx, ownerID, p.Experience[0].ID)
	if err != nil {
		t.Fatalf("RemoveExperience returned error: %v", err)
	}
	if !reflect.DeepEqual(p.Experience, before) {
		t.Fatalf("add then remove did not restore list: %+v vs %+v", p.Experience, before)
	}
}

func TestProfileService_RemoveUnknownIDLeavesListUnchanged(t *testing.T) {
	svc, repo, _ := newTestProfileService()
	ctx := context.Background()
	if _, err := svc.Upsert(ctx, ownerID, domain.ProfileFields{Status: "Dev", Skills: "go"}); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if _, err := svc.AddEducation(ctx, ownerID, ports.EducationInput{
		School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: day(2010, 9, 1),
	}); err != nil {
		t.Fatalf("AddEducation returned error: %v", err)
	}
	version := repo.byOwner[ownerID].Version

	if _, err := svc.RemoveEducation(ctx, ownerID, domain.NewID()); !errors.Is(err, domain.ErrEducationNotFound) {
		t.Fatalf("expected ErrEducationNotFound, got %v", err)
	}
	if _, err := svc.RemoveExperience(ctx, ownerID, domain.NewID()); !errors.Is(err, domain.ErrExperienceNotFound) {
		t.Fatalf("expected ErrExperienceNotFound, got %v", err)
	}
	stored := repo.byOwner[ownerID]
	if len(stored.Education) != 1 || stored.Version != version {
		t.Fatalf("failed removal wrote the profile: %+v", stored)
	}
}

func TestProfileService_AddExperience_Validation(t *testing.T) {
	svc, _, _ := newTestProfileService()
	to := day(2019, 1, 1)

	_, err := svc.AddExperience(context.Background(), ownerID, ports.ExperienceInput{
		From:    day(2020, 1, 1),
		To:      &to,
		Current: true,
	})
	var ve domain.ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	fields := map[string]int{}
	for _, fe := range ve {
		fields[fe.Field]++
	}
	if fields["title"] != 1 || fields["company"] != 1 || fields["to"] != 2 {
		t.Fatalf("unexpected field errors %v", ve)
	}
}

func TestProfileService_MutateWithoutProfile(t *testing.T) {
	svc, _, _ := newTestProfileService()

	_, err := svc.AddEducation(context.Background(), ownerID, ports.EducationInput{
		School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: day(2010, 9, 1),
	})
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileService_GetByUser(t *testing.T) {
	svc, _, _ := newTestProfileService()
	ctx := context.Background()

	if _, err := svc.GetByUser(ctx, "not-an-id"); !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
	if _, err := svc.GetByUser(ctx, ownerID); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := svc.Upsert(ctx, ownerID, domain.ProfileFields{Status: "Dev", Skills: "go"}); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	p, err := svc.GetByUser(ctx, ownerID)
	if err != nil || p.User != ownerID {
		t.Fatalf("GetByUser = %+v, %v", p, err)
	}
}

func TestProfileService_GitHubRepos(t *testing.T) {
	svc, _, _ := newTestProfileService()
	ctx := context.Background()

	repos, err := svc.GitHubRepos(ctx, "octocat")
	if err != nil || len(repos) != 1 {
		t.Fatalf("GitHubRepos = %v, %v", repos, err)
	}
	if _, err := svc.GitHubRepos(ctx, "nobody"); !errors.Is(err, domain.ErrGitHubNotFound) {
		t.Fatalf("expected ErrGitHubNotFound, got %v", err)
	}
}

func TestProfileService_RemoveMalformedID(t *testing.T) {
	svc, _, _ := newTestProfileService()
	ctx := context.Background()
	if _, err := svc.Upsert(ctx, ownerID, domain.ProfileFields{Status: "Dev", Skills: "go"}); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if _, err := svc.RemoveExperience(ctx, ownerID, "not-an-id"); !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Fatalf("RemoveExperience: expected ErrInvalidIdentifier, got %v", err)
	}
	if _, err := svc.RemoveEducation(ctx, ownerID, "not-an-id"); !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Fatalf("RemoveEducation: expected ErrInvalidIdentifier, got %v", err)
	}
}
