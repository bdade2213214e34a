// Package i18n holds the localizable message catalog for client-facing
// gateway responses and audit lines.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// BaseLocale is the canonical source locale for the catalog.
var BaseLocale = language.AmericanEnglish

var baseMessages = map[string]string{
	"dispatch.account.username_error":          "Username not found.",
	"dispatch.account.username_invalid":        "Invalid username format.",
	"dispatch.account.username_create_error":   "Unable to create account. Please try a different username.",
	"dispatch.account.server_max_player_limit": "The server is full. Please try again later.",
	"dispatch.account.account_cache_error":     "Game account cache error. Please log in again.",
	"dispatch.account.session_key_error":       "Session key error. Please log in again.",
	"dispatch.account.login_success":           "Client %s logged in as account %d.",
	"dispatch.account.login_create_success":    "Client %s registered account %d.",
	"dispatch.account.login_create_error":      "Client %s failed to register an account.",
	"dispatch.account.login_exist_error":       "Client %s tried to log in to an unknown account.",
	"dispatch.account.login_invalid_error":     "Client %s rejected: invalid username.",
	"dispatch.account.login_token_attempt":     "Client %s is trying to log in via token.",
	"dispatch.account.login_token_success":     "Client %s logged in via token as account %d.",
	"dispatch.account.login_token_error":       "Client %s failed to log in via token.",
	"dispatch.account.combo_token_success":     "Client %s exchanged a combo token.",
	"dispatch.account.combo_token_error":       "Client %s failed to exchange a combo token.",
	"dispatch.version.denied":                  "Access Denied (%d)",
	"dispatch.version.mismatch":                "(%s)\nServer SDK version is %s.\nYour current version is %s.\n\nPlease update your game client.",
	"dispatch.region.update_needed":            "Server version is %s\nYour current version is %s\n\nPlease update your game client to the server version.",
}

var printer = newPrinter()

func newPrinter() *message.Printer {
	builder := catalog.NewBuilder(catalog.Fallback(BaseLocale))
	for key, msg := range baseMessages {
		if err := builder.SetString(BaseLocale, key, msg); err != nil {
			panic("i18n: register message " + key + ": " + err.Error())
		}
	}
	return message.NewPrinter(BaseLocale, message.Catalog(builder))
}

// T renders the message registered under key, formatting args into it.
// Unregistered keys render as the key itself, which keeps missing
// translations visible instead of silently blank.
func T(key string, args ...any) string {
	return printer.Sprintf(key, args...)
}
