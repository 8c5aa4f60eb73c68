package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	shortNameLimit = 20
	shortNameKeep  = 18

	// map position used until the backend provides coordinates
	DefaultMapX = 600
	DefaultMapY = 245
)

// LocalityCard is the view of a locality used by the cards grid and the data modal.
// Cards are identified by their index in the page collection.
type LocalityCard struct {
	ShortName        string  `json:"nome"`
	FullName         string  `json:"nome_completo"`
	Code             string  `json:"codigo"`
	ChurchID         int     `json:"id_igreja"`
	Sector           string  `json:"setor"`
	City             string  `json:"cidade"`
	TotalStudents    int     `json:"total_alunos"`
	ActiveStudents   int     `json:"alunos_ativos"`
	TotalInstruments int     `json:"total_instrumentos"`
	TotalMTS         int     `json:"total_mts"`
	TotalMSA         int     `json:"total_msa"`
	TotalExams       int     `json:"total_provas"`
	AverageScore     float64 `json:"media_geral"`
	X                int     `json:"x"`
	Y                int     `json:"y"`
	Image            string  `json:"img"`
}

// NewLocalityCard maps a backend locality row to its card
func NewLocalityCard(l Locality) LocalityCard {
	return LocalityCard{
		ShortName:        ShortName(l.Name),
		FullName:         l.Name,
		Code:             l.Code,
		ChurchID:         l.ChurchID,
		Sector:           l.Sector.String(),
		City:             l.City.String(),
		TotalStudents:    l.TotalStudents,
		ActiveStudents:   l.ActiveStudents,
		TotalInstruments: l.TotalInstruments,
		TotalMTS:         l.TotalMTS,
		TotalMSA:         l.TotalMSA,
		TotalExams:       l.TotalExams,
		AverageScore:     l.AverageScore,
		X:                DefaultMapX,
		Y:                DefaultMapY,
		Image:            ImageSlug(l.Code),
	}
}

// NewLocalityCards maps every row, preserving order
func NewLocalityCards(rows []Locality) []LocalityCard {
	cards := make([]LocalityCard, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, NewLocalityCard(row))
	}
	return cards
}

// ShortName cuts names longer than 20 characters to their first 18 followed by "..."
func ShortName(name string) string {
	if utf8.RuneCountInString(name) <= shortNameLimit {
		return name
	}
	return string([]rune(name)[:shortNameKeep]) + "..."
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]`)

var lower = cases.Lower(language.BrazilianPortuguese)

// ImageSlug derives the card image name from the locality code: lower case, every character outside [a-z0-9] becomes "-"
func ImageSlug(code string) string {
	return nonSlugChars.ReplaceAllString(lower.String(code), "-")
}

// MTSPlusMSA is the combined counter shown in the data modal
func (c LocalityCard) MTSPlusMSA() int {
	return c.TotalMTS + c.TotalMSA
}

// AverageLabel formats the average exam score with two decimals, N/A when there is none
func (c LocalityCard) AverageLabel() string {
	if c.AverageScore == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", c.AverageScore)
}

// SelectedLocality is the locality currently inspected: the card merged with the detail fetched from the api.
type SelectedLocality struct {
	LocalityCard

	// Detail is the raw localidade object returned by the api
	Detail     map[string]json.RawMessage `json:"localidade,omitempty"`
	Students   []Student                  `json:"alunos"`
	Statistics map[string]any             `json:"estatisticas"`
	Index      int                        `json:"index"`

	// Detailed is false when the detail fetch failed and the selection is the plain card
	Detailed bool `json:"detailed"`
}

// detailFields lists the localidade members that overwrite a card field when present.
// The remaining members (nome_localidade, codigo_localidade, media_geral_provas...) do not map onto a card field and are only kept in Detail.
var detailFields = map[string]func(c *LocalityCard) any{
	"id_igreja":          func(c *LocalityCard) any { return &c.ChurchID },
	"setor":              func(c *LocalityCard) any { return (*Text)(&c.Sector) },
	"cidade":             func(c *LocalityCard) any { return (*Text)(&c.City) },
	"total_alunos":       func(c *LocalityCard) any { return &c.TotalStudents },
	"alunos_ativos":      func(c *LocalityCard) any { return &c.ActiveStudents },
	"total_instrumentos": func(c *LocalityCard) any { return &c.TotalInstruments },
	"total_mts":          func(c *LocalityCard) any { return &c.TotalMTS },
	"total_msa":          func(c *LocalityCard) any { return &c.TotalMSA },
	"total_provas":       func(c *LocalityCard) any { return &c.TotalExams },
}

// NewSelection builds the selection for the card at index without detail.
func NewSelection(index int, card LocalityCard) SelectedLocality {
	return SelectedLocality{
		LocalityCard: card,
		Students:     []Student{},
		Statistics:   map[string]any{},
		Index:        index,
	}
}

// MergeDetail shallow-merges the detail response over the card.
//
// Members present in the detail overwrite the matching card field (null resets it to the zero value),
// fields the detail does not carry keep the card value. Students and statistics are taken from the detail.
func MergeDetail(index int, card LocalityCard, detail *LocalityDetailResponse) (SelectedLocality, error) {
	sel := NewSelection(index, card)

	members := map[string]json.RawMessage{}
	if len(detail.Locality) > 0 && !bytes.Equal(bytes.TrimSpace(detail.Locality), []byte("null")) {
		if err := json.Unmarshal(detail.Locality, &members); err != nil {
			return sel, fmt.Errorf("decoding localidade detail: %w", err)
		}
	}

	merged := card
	for key, raw := range members {
		field, ok := detailFields[key]
		if !ok {
			continue
		}
		target := field(&merged)
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			clearField(target)
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return sel, fmt.Errorf("decoding localidade.%s: %w", key, err)
		}
	}

	sel.LocalityCard = merged
	sel.Detail = members
	sel.Detailed = true
	if detail.Students != nil {
		sel.Students = detail.Students
	}
	if detail.Statistics != nil {
		sel.Statistics = detail.Statistics
	}
	return sel, nil
}

func clearField(target any) {
	switch v := target.(type) {
	case *int:
		*v = 0
	case *Text:
		*v = ""
	}
}
