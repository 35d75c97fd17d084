// Package i18n negotiates the response locale and renders user-facing messages.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported locales. English is the fallback.
const (
	English    = "en"
	Indonesian = "id"
)

// Message keys.
const (
	MsgInsufficientCredits = "insufficient_credits"
	MsgAppNotFound         = "app_not_found"
	MsgNotFound            = "not_found"
	MsgInvalidTransition   = "invalid_transition"
	MsgInvalidProgress     = "invalid_progress"
	MsgInvalidRequest      = "invalid_request"
	MsgUnauthorized        = "unauthorized"
	MsgStoreUnavailable    = "store_unavailable"
	MsgInternal            = "internal"
	MsgRateLimited         = "rate_limited"
)

var (
	supported = []language.Tag{language.English, language.Indonesian}
	matcher   = language.NewMatcher(supported)
	messages  = newCatalog()
)

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	set := func(key, en, id string) {
		_ = b.SetString(language.English, key, en)
		_ = b.SetString(language.Indonesian, key, id)
	}
	set(MsgInsufficientCredits,
		"Not enough credits: this needs %d credits and your balance is %d.",
		"Kredit tidak cukup: dibutuhkan %d kredit dan saldo Anda %d.")
	set(MsgAppNotFound, "This app is not available.", "Aplikasi ini tidak tersedia.")
	set(MsgNotFound, "Not found.", "Tidak ditemukan.")
	set(MsgInvalidTransition, "This job cannot move to the requested state.", "Pekerjaan ini tidak dapat berpindah ke status yang diminta.")
	set(MsgInvalidProgress, "Progress must be between 0 and 100 and cannot go backwards.", "Progres harus antara 0 dan 100 dan tidak boleh mundur.")
	set(MsgInvalidRequest, "The request is invalid.", "Permintaan tidak valid.")
	set(MsgUnauthorized, "Please sign in again.", "Silakan masuk kembali.")
	set(MsgStoreUnavailable, "The service is temporarily unavailable. Please try again.", "Layanan sedang tidak tersedia. Silakan coba lagi.")
	set(MsgInternal, "Something went wrong.", "Terjadi kesalahan.")
	set(MsgRateLimited, "Too many requests. Slow down.", "Terlalu banyak permintaan. Mohon tunggu.")
	return b
}

// Normalize maps any BCP 47 tag onto a supported locale.
func Normalize(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return English
	}
	t, err := language.Parse(tag)
	if err != nil {
		return English
	}
	return base(matchTags(t))
}

// FromAcceptLanguage returns the best supported locale for an Accept-Language
// header, or "" when the header carries no usable tag.
func FromAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return base(matchTags(tags...))
}

// Sprintf renders the message key in locale.
func Sprintf(locale, key string, args ...any) string {
	tag := language.English
	if Normalize(locale) == Indonesian {
		tag = language.Indonesian
	}
	return message.NewPrinter(tag, message.Catalog(messages)).Sprintf(key, args...)
}

func matchTags(tags ...language.Tag) language.Tag {
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

func base(t language.Tag) string {
	b, _ := t.Base()
	return b.String()
}
