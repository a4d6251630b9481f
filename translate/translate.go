// Package translate renders the emulator's diagnostics, prompts and error
// messages through a printer matched to the user's locale. Messages are
// keyed by their en-US format string.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

const fallbackLocale = "en-US"

var printer = newPrinter()

func newPrinter() *message.Printer {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("lc3: detecting locale: %v", err)
	}
	if len(locales) == 0 {
		locales = []string{fallbackLocale}
	}
	return message.NewPrinter(message.MatchLanguage(locales...))
}

// From formats the en-US message key with args for the host locale.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
