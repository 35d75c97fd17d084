// Package catalog serves the read-only App and Recipe listings from a YAML file.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"marketplace/internal/domain"
)

type fileApp struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	CreditCost  int64    `yaml:"creditCost"`
	IsNew       bool     `yaml:"isNew"`
	IsPro       bool     `yaml:"isPro"`
}

type fileRecipe struct {
	ID          string    `yaml:"id"`
	AppID       string    `yaml:"appId"`
	CreatorID   string    `yaml:"creatorId"`
	CreatorName string    `yaml:"creatorName"`
	Title       string    `yaml:"title"`
	MediaRefs   []string  `yaml:"mediaRefs"`
	CreditsUsed int64     `yaml:"creditsUsed"`
	CreatedAt   time.Time `yaml:"createdAt"`
}

type file struct {
	Apps    []fileApp    `yaml:"apps"`
	Recipes []fileRecipe `yaml:"recipes"`
}

// Catalog is an immutable in-memory catalog.
type Catalog struct {
	apps         []domain.App
	appsByID     map[string]int
	recipes      map[string]domain.Recipe
	recipesByApp map[string][]string
}

var _ domain.Catalog = (*Catalog)(nil)

// Load reads and validates the catalog file at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a catalog document. Unknown fields are rejected.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc file
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	apps := make([]domain.App, 0, len(doc.Apps))
	for _, a := range doc.Apps {
		apps = append(apps, domain.App{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Tags:        a.Tags,
			CreditCost:  a.CreditCost,
			IsNew:       a.IsNew,
			IsPro:       a.IsPro,
		})
	}
	recipes := make([]domain.Recipe, 0, len(doc.Recipes))
	for _, rc := range doc.Recipes {
		recipes = append(recipes, domain.Recipe{
			ID:          rc.ID,
			AppID:       rc.AppID,
			CreatorID:   rc.CreatorID,
			CreatorName: rc.CreatorName,
			Title:       rc.Title,
			MediaRefs:   rc.MediaRefs,
			CreditsUsed: rc.CreditsUsed,
			CreatedAt:   rc.CreatedAt,
		})
	}
	return New(apps, recipes)
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(b []byte) (*Catalog, error) {
	return Parse(bytes.NewReader(b))
}

// New validates apps and recipes and builds a Catalog from them.
func New(apps []domain.App, recipes []domain.Recipe) (*Catalog, error) {
	c := &Catalog{
		appsByID:     make(map[string]int, len(apps)),
		recipes:      make(map[string]domain.Recipe, len(recipes)),
		recipesByApp: make(map[string][]string),
	}
	for _, a := range apps {
		if strings.TrimSpace(a.ID) == "" {
			return nil, errors.New("catalog: app without id")
		}
		if _, dup := c.appsByID[a.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate app %q", a.ID)
		}
		if a.CreditCost < 0 {
			return nil, fmt.Errorf("catalog: app %q has negative creditCost", a.ID)
		}
		c.appsByID[a.ID] = len(c.apps)
		c.apps = append(c.apps, a)
	}
	for _, rc := range recipes {
		if strings.TrimSpace(rc.ID) == "" {
			return nil, errors.New("catalog: recipe without id")
		}
		if _, dup := c.recipes[rc.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate recipe %q", rc.ID)
		}
		if _, ok := c.appsByID[rc.AppID]; !ok {
			return nil, fmt.Errorf("catalog: recipe %q references unknown app %q", rc.ID, rc.AppID)
		}
		if rc.CreditsUsed < 0 {
			return nil, fmt.Errorf("catalog: recipe %q has negative creditsUsed", rc.ID)
		}
		c.recipes[rc.ID] = rc
		c.recipesByApp[rc.AppID] = append(c.recipesByApp[rc.AppID], rc.ID)
	}
	for appID, ids := range c.recipesByApp {
		sort.SliceStable(ids, func(i, j int) bool {
			return c.recipes[ids[i]].CreatedAt.After(c.recipes[ids[j]].CreatedAt)
		})
		c.recipesByApp[appID] = ids
	}
	return c, nil
}

// App returns the app with id or ErrAppNotFound.
func (c *Catalog) App(_ context.Context, id string) (*domain.App, error) {
	idx, ok := c.appsByID[id]
	if !ok {
		return nil, fmt.Errorf("app %q: %w", id, domain.ErrAppNotFound)
	}
	app := c.apps[idx]
	return &app, nil
}

// Apps returns every app in file order.
func (c *Catalog) Apps(context.Context) ([]domain.App, error) {
	return append([]domain.App(nil), c.apps...), nil
}

// Recipe returns the recipe with id or ErrNotFound.
func (c *Catalog) Recipe(_ context.Context, id string) (*domain.Recipe, error) {
	rc, ok := c.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipe %q: %w", id, domain.ErrNotFound)
	}
	return &rc, nil
}

// Recipes returns the recipes of an app, newest first.
func (c *Catalog) Recipes(_ context.Context, appID string) ([]domain.Recipe, error) {
	if _, ok := c.appsByID[appID]; !ok {
		return nil, fmt.Errorf("app %q: %w", appID, domain.ErrAppNotFound)
	}
	ids := c.recipesByApp[appID]
	out := make([]domain.Recipe, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.recipes[id])
	}
	return out, nil
}
