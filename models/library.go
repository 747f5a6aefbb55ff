package models

import (
	"strings"
	"time"
)

type Profile struct {
	Id        string     `json:"id"`
	Email     string     `json:"email,omitempty"`
	Username  *string    `json:"username,omitempty"`
	FullName  *string    `json:"full_name,omitempty"`
	AvatarUrl *string    `json:"avatar_url,omitempty"`
	Bio       *string    `json:"bio,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Author is the subset of a profile embedded in public listings.
type Author struct {
	FullName  *string `json:"full_name,omitempty"`
	Username  *string `json:"username,omitempty"`
	AvatarUrl *string `json:"avatar_url,omitempty"`
}

type Prompt struct {
	Id            string     `json:"id,omitempty"`
	Title         string     `json:"title"`
	Description   *string    `json:"description,omitempty"`
	Content       string     `json:"content"`
	Category      *string    `json:"category,omitempty"`
	Tags          []string   `json:"tags"`
	ImageUrl      *string    `json:"image_url,omitempty"`
	ImagePublicId *string    `json:"image_public_id,omitempty"`
	IsPublic      bool       `json:"is_public"`
	UserId        string     `json:"user_id"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	Profiles      *Author    `json:"profiles,omitempty"`
}

type Collection struct {
	Id          string     `json:"id,omitempty"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	IsPublic    bool       `json:"is_public"`
	UserId      string     `json:"user_id"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type CollectionPrompt struct {
	Id           string     `json:"id,omitempty"`
	CollectionId string     `json:"collection_id"`
	PromptId     string     `json:"prompt_id"`
	AddedAt      *time.Time `json:"added_at,omitempty"`
	Prompts      *Prompt    `json:"prompts,omitempty"`
}

// CollectionDetails is a collection together with the prompts it holds.
type CollectionDetails struct {
	Collection Collection         `json:"collection"`
	Prompts    []CollectionPrompt `json:"prompts"`
}

// User is the authenticated caller as reported by the auth provider.
type User struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}

type Visibility string

const (
	VisibilityAll     Visibility = ""
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// PromptFilter narrows prompt listings. Empty fields do not filter.
type PromptFilter struct {
	Search     string
	Category   string
	Tags       []string
	Visibility Visibility
}

type LibraryFacets struct {
	Categories  []string `json:"categories"`
	PopularTags []string `json:"popularTags"`
}

type PromptDetails struct {
	Prompt  Prompt   `json:"prompt"`
	Related []Prompt `json:"related"`
}

type PromptInput struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=1000"`
	Content     string   `json:"content" binding:"required,max=20000"`
	Category    *string  `json:"category" binding:"omitempty,max=100"`
	Tags        []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	IsPublic    bool     `json:"is_public"`
}

type CollectionInput struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	IsPublic    bool    `json:"is_public"`
}

type ProfileInput struct {
	Username  *string `json:"username" binding:"omitempty,max=50"`
	FullName  *string `json:"full_name" binding:"omitempty,max=100"`
	AvatarUrl *string `json:"avatar_url" binding:"omitempty,url"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
}

// NormalizedTags trims, drops empty and de-duplicates tags, keeping first-seen order.
func (in PromptInput) NormalizedTags() []string {
	seen := make(map[string]bool, len(in.Tags))
	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		tags = append(tags, tag)
	}
	return tags
}
