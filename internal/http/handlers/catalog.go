package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *App) ListApps(w http.ResponseWriter, r *http.Request) {
	apps, err := a.Catalog.Apps(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]appView, 0, len(apps))
	for _, app := range apps {
		items = append(items, newAppView(app))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) GetApp(w http.ResponseWriter, r *http.Request) {
	app, err := a.Catalog.App(r.Context(), chi.URLParam(r, "appID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newAppView(*app))
}

// ListRecipes returns the shared runs of an app with their media resolved.
func (a *App) ListRecipes(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appID")
	if _, err := a.Catalog.App(r.Context(), appID); err != nil {
		a.fail(w, r, err)
		return
	}
	recipes, err := a.Catalog.Recipes(r.Context(), appID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]recipeView, 0, len(recipes))
	for _, rc := range recipes {
		urls := make([]string, 0, len(rc.MediaRefs))
		for _, ref := range rc.MediaRefs {
			if u := a.mediaURL(r.Context(), ref); u != "" {
				urls = append(urls, u)
			}
		}
		items = append(items, recipeView{
			ID:          rc.ID,
			AppID:       rc.AppID,
			CreatorID:   rc.CreatorID,
			CreatorName: rc.CreatorName,
			Title:       rc.Title,
			MediaURLs:   urls,
			CreditsUsed: rc.CreditsUsed,
			CreatedAt:   rc.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
