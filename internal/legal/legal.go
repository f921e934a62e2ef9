// Package legal holds the statically served legal documents (terms of
// service and privacy policy). Documents are versioned by their effective
// date and served read-only over the API.
package legal

import "errors"

// ErrDocumentNotFound is returned for an unknown document slug.
var ErrDocumentNotFound = errors.New("legal document not found")

// Section is a numbered heading with its paragraphs.
type Section struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// Document is a complete legal document addressable by slug.
type Document struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Version     string    `json:"version"`
	LastUpdated string    `json:"lastUpdated"`
	Sections    []Section `json:"sections"`
}

var documents = map[string]*Document{
	"regulamin": {
		Slug:        "regulamin",
		Title:       "Regulamin serwisu PEDRO",
		Version:     "1.0",
		LastUpdated: "2026-01-01",
		Sections: []Section{
			{
				Title: "§1 Postanowienia ogólne",
				Paragraphs: []string{
					"Niniejszy regulamin określa zasady korzystania z serwisu PEDRO, umożliwiającego lokalnym firmom publikowanie ofert i kuponów rabatowych.",
					"Operatorem serwisu jest PEDRO sp. z o.o. z siedzibą w Warszawie.",
				},
			},
			{
				Title: "§2 Konta partnerów",
				Paragraphs: []string{
					"Rejestracja firmy w serwisie wymaga posiadania konta użytkownika oraz podania danych firmy, w tym numeru NIP.",
					"Jeden użytkownik może prowadzić w serwisie jedną firmę.",
				},
			},
			{
				Title: "§3 Rozliczenia",
				Paragraphs: []string{
					"W okresie beta korzystanie z serwisu jest bezpłatne.",
					"Po aktywacji modelu pay-per-use partner rozliczany jest wyłącznie za wykorzystane kupony, zgodnie z cennikiem.",
				},
			},
		},
	},
	"polityka-prywatnosci": {
		Slug:        "polityka-prywatnosci",
		Title:       "Polityka prywatności",
		Version:     "1.0",
		LastUpdated: "2026-01-01",
		Sections: []Section{
			{
				Title: "1. Administrator danych",
				Paragraphs: []string{
					"Administratorem danych osobowych jest PEDRO sp. z o.o. z siedzibą w Warszawie.",
				},
			},
			{
				Title: "2. Zakres przetwarzanych danych",
				Paragraphs: []string{
					"Przetwarzamy dane konta (adres e-mail, nazwa wyświetlana) oraz dane firmowe podane podczas rejestracji firmy.",
					"Dane płatnicze przetwarzane są przez operatora płatności Stripe; nie przechowujemy numerów kart.",
				},
			},
			{
				Title: "3. Prawa użytkownika",
				Paragraphs: []string{
					"Użytkownik może w każdej chwili usunąć swoje konto wraz z powiązanymi danymi z poziomu ustawień konta.",
				},
			},
		},
	},
}

// Get returns the document for slug or ErrDocumentNotFound.
func Get(slug string) (*Document, error) {
	doc, ok := documents[slug]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Slugs lists the available document slugs.
func Slugs() []string {
	out := make([]string, 0, len(documents))
	for slug := range documents {
		out = append(out, slug)
	}
	return out
}
