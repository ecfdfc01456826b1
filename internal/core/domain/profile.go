package domain

import (
	"strings"
	"time"
)

// Social holds a profile's social network links.
type Social struct {
	YouTube   string `json:"youtube,omitempty"   bson:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"   bson:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"  bson:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"  bson:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty" bson:"instagram,omitempty"`
}

// Experience is one entry of a profile's work history.
type Experience struct {
	ID          string     `json:"_id"                   bson:"_id"`
	Title       string     `json:"title"                 bson:"title"`
	Company     string     `json:"company"               bson:"company"`
	Location    string     `json:"location,omitempty"    bson:"location,omitempty"`
	From        time.Time  `json:"from"                  bson:"from"`
	To          *time.Time `json:"to,omitempty"          bson:"to,omitempty"`
	Current     bool       `json:"current"               bson:"current"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
}

// Education is one entry of a profile's education history.
type Education struct {
	ID           string     `json:"_id"                   bson:"_id"`
	School       string     `json:"school"                bson:"school"`
	Degree       string     `json:"degree"                bson:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"          bson:"field_of_study"`
	From         time.Time  `json:"from"                  bson:"from"`
	To           *time.Time `json:"to,omitempty"          bson:"to,omitempty"`
	Current      bool       `json:"current"               bson:"current"`
	Description  string     `json:"description,omitempty" bson:"description,omitempty"`
}

// Profile is the aggregate root owned by exactly one user. Experience and
// education are kept most-recent-first.
type Profile struct {
	ID             string       `json:"_id"                      bson:"_id"`
	User           string       `json:"user"                     bson:"user"`
	Name           string       `json:"name"                     bson:"name"`
	Avatar         string       `json:"avatar"                   bson:"avatar"`
	Company        string       `json:"company,omitempty"        bson:"company,omitempty"`
	Website        string       `json:"website,omitempty"        bson:"website,omitempty"`
	Location       string       `json:"location,omitempty"       bson:"location,omitempty"`
	Status         string       `json:"status"                   bson:"status"`
	Bio            string       `json:"bio,omitempty"            bson:"bio,omitempty"`
	GitHubUsername string       `json:"githubusername,omitempty" bson:"github_username,omitempty"`
	Skills         []string     `json:"skills"                   bson:"skills"`
	Social         Social       `json:"social"                   bson:"social"`
	Experience     []Experience `json:"experience"               bson:"experience"`
	Education      []Education  `json:"education"                bson:"education"`
	Version        int64        `json:"-"                        bson:"version"`
	CreatedAt      time.Time    `json:"date"                     bson:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"               bson:"updated_at"`
}

// ProfileFields is a partial profile update. Empty values mean "not
// supplied" and leave the stored value untouched.
type ProfileFields struct {
	Company        string
	Website        string
	Location       string
	Status         string
	Bio            string
	GitHubUsername string
	Skills         string // comma separated
	Social         Social
}

// NewProfile creates an empty profile for owner.
func NewProfile(owner *User, now time.Time) *Profile {
	return &Profile{
		ID:         NewID(),
		User:       owner.ID,
		Name:       owner.Name,
		Avatar:     owner.Avatar,
		Skills:     []string{},
		Experience: []Experience{},
		Education:  []Education{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Apply overwrites the supplied fields. Applying the same fields twice
// yields the same document.
func (p *Profile) Apply(f ProfileFields, now time.Time) {
	setIf(&p.Company, f.Company)
	setIf(&p.Website, f.Website)
	setIf(&p.Location, f.Location)
	setIf(&p.Status, f.Status)
	setIf(&p.Bio, f.Bio)
	setIf(&p.GitHubUsername, f.GitHubUsername)
	if skills := SplitSkills(f.Skills); len(skills) > 0 {
		p.Skills = skills
	}
	setIf(&p.Social.YouTube, f.Social.YouTube)
	setIf(&p.Social.Twitter, f.Social.Twitter)
	setIf(&p.Social.Facebook, f.Social.Facebook)
	setIf(&p.Social.LinkedIn, f.Social.LinkedIn)
	setIf(&p.Social.Instagram, f.Social.Instagram)
	p.UpdatedAt = now
}

// AddExperience assigns a fresh id to e and puts it first.
func (p *Profile) AddExperience(e Experience) Experience {
	e.ID = NewID()
	p.Experience = insertHead(p.Experience, e)
	return e
}

// RemoveExperience removes the entry with the given id. An unknown id is an
// error and leaves the list untouched.
func (p *Profile) RemoveExperience(id string) error {
	out, ok := removeWhere(p.Experience, func(e Experience) bool { return e.ID == id })
	if !ok {
		return ErrExperienceNotFound
	}
	p.Experience = out
	return nil
}

// AddEducation assigns a fresh id to e and puts it first.
func (p *Profile) AddEducation(e Education) Education {
	e.ID = NewID()
	p.Education = insertHead(p.Education, e)
	return e
}

// RemoveEducation removes the entry with the given id. An unknown id is an
// error and leaves the list untouched.
func (p *Profile) RemoveEducation(id string) error {
	out, ok := removeWhere(p.Education, func(e Education) bool { return e.ID == id })
	if !ok {
		return ErrEducationNotFound
	}
	p.Education = out
	return nil
}

// SplitSkills turns "go, js ,," into ["go", "js"].
func SplitSkills(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if skill := strings.TrimSpace(part); skill != "" {
			out = append(out, skill)
		}
	}
	return out
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
