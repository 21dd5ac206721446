// Package seed loads disaster areas and announcements from a YAML file.
package seed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/announcement"
	"relief-grid-go/internal/domain/area"
	"relief-grid-go/internal/domain/geo"
	"relief-grid-go/pkg/logger"
)

type File struct {
	Areas         []Area         `yaml:"areas"`
	Announcements []Announcement `yaml:"announcements"`
}

type Area struct {
	Name        string  `yaml:"name"`
	County      string  `yaml:"county"`
	Township    string  `yaml:"township"`
	Description string  `yaml:"description"`
	Center      Point   `yaml:"center"`
	Bounds      *Bounds `yaml:"bounds"`
}

type Point struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

type Bounds struct {
	North float64 `yaml:"north"`
	South float64 `yaml:"south"`
	East  float64 `yaml:"east"`
	West  float64 `yaml:"west"`
}

type Announcement struct {
	Title        string `yaml:"title"`
	Content      string `yaml:"content"`
	Category     string `yaml:"category"`
	Pinned       bool   `yaml:"pinned"`
	SortOrder    int    `yaml:"sort_order"`
	ContactPhone string `yaml:"contact_phone"`
	Links        []struct {
		Name string `yaml:"name"`
		URL  string `yaml:"url"`
	} `yaml:"links"`
}

type Areas interface {
	ListAreas(ctx context.Context, filter area.ListFilter) ([]area.DisasterArea, error)
	CreateArea(ctx context.Context, actor access.Actor, input area.CreateAreaInput) (*area.DisasterArea, error)
}

type Announcements interface {
	List(ctx context.Context) ([]announcement.Announcement, error)
	Create(ctx context.Context, actor access.Actor, input announcement.Input) (*announcement.Announcement, error)
}

type Result struct {
	AreasCreated         int
	AreasSkipped         int
	AnnouncementsCreated int
	AnnouncementsSkipped int
}

func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("seed: decode: %w", err)
	}
	return &f, nil
}

type Seeder struct {
	areas         Areas
	announcements Announcements
	log           logger.Logger
}

func New(areas Areas, announcements Announcements, log logger.Logger) *Seeder {
	return &Seeder{areas: areas, announcements: announcements, log: log}
}

// Apply creates every entry whose name (areas) or title (announcements) is
// not stored yet, compared case-insensitively.
func (s *Seeder) Apply(ctx context.Context, actor access.Actor, f *File) (Result, error) {
	var result Result

	existingAreas, err := s.areas.ListAreas(ctx, area.ListFilter{})
	if err != nil {
		return result, err
	}
	areaNames := make(map[string]struct{}, len(existingAreas))
	for _, a := range existingAreas {
		areaNames[key(a.Name)] = struct{}{}
	}

	for _, item := range f.Areas {
		if _, ok := areaNames[key(item.Name)]; ok {
			result.AreasSkipped++
			continue
		}
		input := area.CreateAreaInput{
			Name:        item.Name,
			County:      item.County,
			Township:    item.Township,
			Description: item.Description,
			Center:      geo.Coordinate{Lat: item.Center.Lat, Lng: item.Center.Lng},
		}
		if item.Bounds != nil {
			input.Bounds = &geo.Bounds{
				North: item.Bounds.North,
				South: item.Bounds.South,
				East:  item.Bounds.East,
				West:  item.Bounds.West,
			}
		}
		created, err := s.areas.CreateArea(ctx, actor, input)
		if err != nil {
			return result, fmt.Errorf("seed: area %q: %w", item.Name, err)
		}
		areaNames[key(created.Name)] = struct{}{}
		result.AreasCreated++
		s.log.Info("seed: area created", "id", created.ID, "name", created.Name)
	}

	existingAnnouncements, err := s.announcements.List(ctx)
	if err != nil {
		return result, err
	}
	titles := make(map[string]struct{}, len(existingAnnouncements))
	for _, a := range existingAnnouncements {
		titles[key(a.Title)] = struct{}{}
	}

	for _, item := range f.Announcements {
		if _, ok := titles[key(item.Title)]; ok {
			result.AnnouncementsSkipped++
			continue
		}
		input := announcement.Input{
			Title:        item.Title,
			Content:      item.Content,
			Category:     announcement.Category(item.Category),
			IsPinned:     item.Pinned,
			SortOrder:    item.SortOrder,
			ContactPhone: item.ContactPhone,
		}
		for _, link := range item.Links {
			input.ExternalLinks = append(input.ExternalLinks, announcement.Link{Name: link.Name, URL: link.URL})
		}
		created, err := s.announcements.Create(ctx, actor, input)
		if err != nil {
			return result, fmt.Errorf("seed: announcement %q: %w", item.Title, err)
		}
		titles[key(created.Title)] = struct{}{}
		result.AnnouncementsCreated++
		s.log.Info("seed: announcement created", "id", created.ID, "title", created.Title)
	}

	return result, nil
}

func key(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
