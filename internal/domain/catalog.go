package domain

import "time"

// App is a catalog entry describing a generation template and its price.
type App struct {
	ID          string
	Name        string
	Description string
	Tags        []string
	CreditCost  int64
	IsNew       bool
	IsPro       bool
}

// Recipe is a shared example run of an App. CreditsUsed is the price paid at the
// time of the run and is never recomputed from the App's current CreditCost.
type Recipe struct {
	ID          string
	AppID       string
	CreatorID   string
	CreatorName string
	Title       string
	MediaRefs   []string
	CreditsUsed int64
	CreatedAt   time.Time
}
