package domain

import (
	"strings"
	"time"
)

// Like marks one user's approval of a post. A post holds at most one like
// per user.
type Like struct {
	ID   string `json:"_id"  bson:"_id"`
	User string `json:"user" bson:"user"`
}

// Comment is one entry of a post's discussion, newest first.
type Comment struct {
	ID        string    `json:"_id"    bson:"_id"`
	User      string    `json:"user"   bson:"user"`
	Text      string    `json:"text"   bson:"text"`
	Name      string    `json:"name"   bson:"name"`
	Avatar    string    `json:"avatar" bson:"avatar"`
	CreatedAt time.Time `json:"date"   bson:"created_at"`
}

// Post is the aggregate root for a published text and its reactions.
type Post struct {
	ID        string    `json:"_id"      bson:"_id"`
	User      string    `json:"user"     bson:"user"`
	Text      string    `json:"text"     bson:"text"`
	Name      string    `json:"name"     bson:"name"`
	Avatar    string    `json:"avatar"   bson:"avatar"`
	Likes     []Like    `json:"likes"    bson:"likes"`
	Comments  []Comment `json:"comments" bson:"comments"`
	Version   int64     `json:"-"        bson:"version"`
	CreatedAt time.Time `json:"date"     bson:"created_at"`
}

// NewPost builds a post authored by author. Text must be non-blank.
func NewPost(author *User, text string, now time.Time) (*Post, error) {
	if isBlank(text) {
		return nil, Required("text")
	}
	return &Post{
		ID:        NewID(),
		User:      author.ID,
		Text:      text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		Likes:     []Like{},
		Comments:  []Comment{},
		CreatedAt: now,
	}, nil
}

// CanDelete reports whether requester may delete the post.
func (p *Post) CanDelete(requester string) error {
	if p.User != requester {
		return ErrForbidden
	}
	return nil
}

// LikedBy reports whether userID already likes the post.
func (p *Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.User == userID {
			return true
		}
	}
	return false
}

// Like records userID's like at the head of the list.
func (p *Post) Like(userID string) error {
	if p.LikedBy(userID) {
		return ErrAlreadyLiked
	}
	p.Likes = insertHead(p.Likes, Like{ID: NewID(), User: userID})
	return nil
}

// Unlike drops userID's like, leaving other users' likes in place.
func (p *Post) Unlike(userID string) error {
	out, ok := removeWhere(p.Likes, func(l Like) bool { return l.User == userID })
	if !ok {
		return ErrNotLiked
	}
	p.Likes = out
	return nil
}

// AddComment prepends a comment by author and returns it.
func (p *Post) AddComment(author *User, text string, now time.Time) (Comment, error) {
	if isBlank(text) {
		return Comment{}, Required("text")
	}
	c := Comment{
		ID:        NewID(),
		User:      author.ID,
		Text:      text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: now,
	}
	p.Comments = insertHead(p.Comments, c)
	return c, nil
}

// RemoveComment deletes commentID if requester wrote it.
func (p *Post) RemoveComment(commentID, requester string) error {
	idx := -1
	for i, c := range p.Comments {
		if c.ID == commentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrCommentNotFound
	}
	if p.Comments[idx].User != requester {
		return ErrForbidden
	}
	p.Comments, _ = removeWhere(p.Comments, func(c Comment) bool { return c.ID == commentID })
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
