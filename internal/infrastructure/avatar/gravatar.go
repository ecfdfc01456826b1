// Package avatar builds Gravatar image URLs.
package avatar

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

const gravatarBase = "https://www.gravatar.com/avatar/"

// Gravatar derives avatar URLs: 200px, PG rated, "mystery person" fallback.
type Gravatar struct {
	params string
}

func NewGravatar() Gravatar {
	q := url.Values{}
	q.Set("s", "200")
	q.Set("r", "pg")
	q.Set("d", "mm")
	return Gravatar{params: q.Encode()}
}

func (g Gravatar) AvatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return gravatarBase + hex.EncodeToString(sum[:]) + "?" + g.params
}
