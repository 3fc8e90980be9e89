package posts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post is the canonical database-backed blog post record.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID              uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Slug            string     `bun:"slug,notnull" json:"slug"`
	Title           string     `bun:"title,notnull" json:"title"`
	Excerpt         *string    `bun:"excerpt" json:"excerpt,omitempty"`
	Body            string     `bun:"body,notnull" json:"body"`
	ImageURL        *string    `bun:"image_url" json:"image_url,omitempty"`
	Published       bool       `bun:"published,notnull,default:false" json:"published"`
	PublishedAt     *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CategoryID      *uuid.UUID `bun:"category_id,type:uuid,nullzero" json:"category_id,omitempty"`
	AuthorID        uuid.UUID  `bun:"author_id,notnull,type:uuid" json:"author_id"`
	MetaTitle       *string    `bun:"meta_title" json:"meta_title,omitempty"`
	MetaDescription *string    `bun:"meta_description" json:"meta_description,omitempty"`
	MetaKeywords    *string    `bun:"meta_keywords" json:"meta_keywords,omitempty"`
	SocialImageURL  *string    `bun:"social_image_url" json:"social_image_url,omitempty"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Category *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	Author   *Author   `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	Tags     []*Tag    `bun:"m2m:post_tags,join:Post=Tag" json:"tags,omitempty"`
}

// EffectiveTimestamp returns the moment used to order posts in merged lists:
// updated_at when present, else published_at, else the zero time.
func (p *Post) EffectiveTimestamp() time.Time {
	if p == nil {
		return time.Time{}
	}
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return time.Time{}
}

// Category groups posts for navigation and filtering.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Slug      string    `bun:"slug,notnull" json:"slug"`
	Name      string    `bun:"name,notnull" json:"name"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Tag labels posts; posts and tags associate through post_tags.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Slug      string    `bun:"slug,notnull" json:"slug"`
	Name      string    `bun:"name,notnull" json:"name"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// PostTag is the join row backing the post/tag many-to-many association.
type PostTag struct {
	bun.BaseModel `bun:"table:post_tags,alias:pt"`

	PostID uuid.UUID `bun:"post_id,pk,type:uuid" json:"post_id"`
	TagID  uuid.UUID `bun:"tag_id,pk,type:uuid" json:"tag_id"`

	Post *Post `bun:"rel:belongs-to,join:post_id=id" json:"-"`
	Tag  *Tag  `bun:"rel:belongs-to,join:tag_id=id" json:"-"`
}

// Author identifies the staff member a post is attributed to.
type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     *string   `bun:"email" json:"email,omitempty"`
	AvatarURL *string   `bun:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
