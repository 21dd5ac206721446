package announcement

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/validation"
)

type Repository interface {
	CreateAnnouncement(ctx context.Context, announcement *Announcement) error
	GetAnnouncement(ctx context.Context, id string) (*Announcement, error)
	ListAnnouncements(ctx context.Context) ([]Announcement, error)
	UpdateAnnouncement(ctx context.Context, announcement *Announcement) error
	DeleteAnnouncement(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List orders pinned announcements first, then by sort order, then newest.
func (s *Service) List(ctx context.Context) ([]Announcement, error) {
	items, err := s.repo.ListAnnouncements(ctx)
	if err != nil {
		return nil, err
	}
	Sort(items)
	return items, nil
}

func Sort(items []Announcement) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func (s *Service) Create(ctx context.Context, actor access.Actor, input Input) (*Announcement, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	input, err := normalize(input)
	if err != nil {
		return nil, err
	}

	announcement := Announcement{
		ID:        uuid.NewString(),
		CreatedBy: actor.ActorID(),
	}
	apply(&announcement, input)
	if err := s.repo.CreateAnnouncement(ctx, &announcement); err != nil {
		return nil, err
	}
	return &announcement, nil
}

func (s *Service) Update(ctx context.Context, actor access.Actor, id string, input Input) (*Announcement, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	input, err := normalize(input)
	if err != nil {
		return nil, err
	}

	announcement, err := s.repo.GetAnnouncement(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(announcement, input)
	if err := s.repo.UpdateAnnouncement(ctx, announcement); err != nil {
		return nil, err
	}
	return announcement, nil
}

func (s *Service) Delete(ctx context.Context, actor access.Actor, id string) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteAnnouncement(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAnnouncementNotFound
	}
	return nil
}

func apply(a *Announcement, input Input) {
	a.Title = input.Title
	a.Content = input.Content
	a.Category = input.Category
	a.IsPinned = input.IsPinned
	a.SortOrder = input.SortOrder
	a.ExternalLinks = input.ExternalLinks
	a.ContactPhone = input.ContactPhone
}

func normalize(input Input) (Input, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	input.ContactPhone = strings.TrimSpace(input.ContactPhone)
	if input.Title == "" {
		return input, validation.Required("title")
	}
	if input.Content == "" {
		return input, validation.Required("content")
	}
	if input.Category == "" {
		input.Category = CategoryOther
	}
	if !input.Category.Valid() {
		return input, validation.Newf("category", "unknown category %q", input.Category)
	}

	links := make([]Link, 0, len(input.ExternalLinks))
	for i, link := range input.ExternalLinks {
		field := "external_links[" + strconv.Itoa(i) + "]"
		link.Name = strings.TrimSpace(link.Name)
		link.URL = strings.TrimSpace(link.URL)
		if link.URL == "" {
			return input, validation.Required(field + ".url")
		}
		parsed, err := url.Parse(link.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return input, validation.New(field+".url", "must be an http or https URL")
		}
		if link.Name == "" {
			link.Name = parsed.Host
		}
		links = append(links, link)
	}
	input.ExternalLinks = links
	return input, nil
}
