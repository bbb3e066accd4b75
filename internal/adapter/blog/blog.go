// Package blog serves the news posts shown on the home page.
package blog

import (
	"bytes"
	"cmp"
	"context"
	_ "embed"
	"fmt"
	"slices"
	"time"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/core/port"
	"gopkg.in/yaml.v3"
)

var _ port.BlogSource = (*Source)(nil)

//go:embed posts.yaml
var embeddedPosts []byte

const dateLayout = "2006-01-02"

type post struct {
	ID       int    `yaml:"id"`
	Title    string `yaml:"title"`
	Date     string `yaml:"date"`
	Category string `yaml:"category"`
	Image    string `yaml:"image"`
	Excerpt  string `yaml:"excerpt"`
}

// A Source holds posts newest first.
type Source struct {
	posts []domain.BlogPost
	limit int
}

// New returns the posts bundled with the binary. limit caps Posts; zero
// means all of them.
func New(limit int) (Source, error) {
	return Parse(embeddedPosts, limit)
}

func Parse(data []byte, limit int) (Source, error) {
	const op = "blog.Parse"

	var raw []post
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return Source{}, fmt.Errorf("%s: %w", op, err)
	}

	posts := make([]domain.BlogPost, 0, len(raw))
	for _, p := range raw {
		date, err := time.Parse(dateLayout, p.Date)
		if err != nil {
			return Source{}, fmt.Errorf("%s: post %d: %w", op, p.ID, err)
		}
		image := p.Image
		if image == "" {
			image = domain.PlaceholderImage
		}
		posts = append(posts, domain.BlogPost{
			ID:       p.ID,
			Title:    p.Title,
			Excerpt:  p.Excerpt,
			Date:     date,
			Image:    image,
			Category: p.Category,
		})
	}
	slices.SortStableFunc(posts, func(a, b domain.BlogPost) int {
		return cmp.Compare(b.Date.Unix(), a.Date.Unix())
	})
	return Source{posts: posts, limit: limit}, nil
}

func (s Source) Posts(ctx context.Context) ([]domain.BlogPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := len(s.posts)
	if s.limit > 0 {
		n = min(n, s.limit)
	}
	return slices.Clone(s.posts[:n]), nil
}
