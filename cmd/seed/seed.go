package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	apperrors "blogapi/internal/errors"
	"blogapi/internal/service"
)

// Fixture is the seed file layout: users with the tags and posts they own.
type Fixture struct {
	Users []SeedUser `json:"users"`
}

// SeedUser is one account plus its content. Post tags refer to tag names created anywhere in the fixture.
type SeedUser struct {
	Name     string     `json:"name"`
	LastName string     `json:"last_name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Tags     []string   `json:"tags"`
	Posts    []SeedPost `json:"posts"`
}

// SeedPost is a post owned by the enclosing user.
type SeedPost struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// Stats counts what a run created.
type Stats struct {
	Users        int
	SkippedUsers int
	Tags         int
	Posts        int
}

func parseFixture(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &f, nil
}

type seeder struct {
	auth  service.AuthService
	tags  service.TagService
	posts service.PostService
	log   *slog.Logger
}

// Run creates everything in the fixture through the services. Users whose email already exists are
// skipped together with their content, so running twice is harmless.
func (s *seeder) Run(ctx context.Context, f *Fixture) (Stats, error) {
	var stats Stats
	tagIDs := make(map[string]uuid.UUID)

	for _, u := range f.Users {
		user, err := s.auth.Register(ctx, service.RegisterInput{
			Name:     u.Name,
			LastName: u.LastName,
			Email:    u.Email,
			Password: u.Password,
		})
		if errors.Is(err, service.ErrUserAlreadyExists) {
			s.log.Info("user exists, skipping", slog.String("email", u.Email))
			stats.SkippedUsers++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("register %s: %w", u.Email, err)
		}
		stats.Users++

		for _, name := range u.Tags {
			tag, err := s.tags.CreateTag(ctx, name, user.ID)
			if errors.Is(err, apperrors.ErrConflict) {
				s.log.Warn("tag name taken, skipping", slog.String("tag", name))
				continue
			}
			if err != nil {
				return stats, fmt.Errorf("create tag %q: %w", name, err)
			}
			tagIDs[name] = tag.ID
			stats.Tags++
		}

		for _, p := range u.Posts {
			ids := make([]uuid.UUID, 0, len(p.Tags))
			for _, name := range p.Tags {
				if id, ok := tagIDs[name]; ok {
					ids = append(ids, id)
				}
			}
			if _, err := s.posts.CreatePost(ctx, service.CreatePostInput{
				Title:   p.Title,
				Content: p.Content,
				OwnerID: user.ID,
				TagIDs:  ids,
			}); err != nil {
				return stats, fmt.Errorf("create post %q: %w", p.Title, err)
			}
			stats.Posts++
		}
	}
	return stats, nil
}
