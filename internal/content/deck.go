// Package content holds the slide deck copy and its YAML loader.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed deck.yaml
var defaultDeckYAML []byte

const (
	KindIntro      = "intro"
	KindCards      = "cards"
	KindRoute      = "route"
	KindItinerary  = "itinerary"
	KindHighlights = "highlights"
	KindCTA        = "cta"
)

var (
	ErrEmptyDeck        = errors.New("deck has no slides")
	ErrDuplicateSlide   = errors.New("duplicate slide key")
	ErrUnknownSlideKind = errors.New("unknown slide kind")
)

type Deck struct {
	Brand         string  `yaml:"brand"`
	Tagline       string  `yaml:"tagline"`
	AgreementText string  `yaml:"agreement_text"`
	Slides        []Slide `yaml:"slides"`
}

type Slide struct {
	Key          string        `yaml:"key"`
	Kind         string        `yaml:"kind"`
	Title        string        `yaml:"title"`
	Headline     string        `yaml:"headline"`
	Lead         string        `yaml:"lead"`
	Chips        []Chip        `yaml:"chips"`
	Cards        []Card        `yaml:"cards"`
	Stations     []string      `yaml:"stations"`
	Legs         []Leg         `yaml:"legs"`
	Cities       []City        `yaml:"cities"`
	Accent       Accent        `yaml:"accent"`
	CallToAction *CallToAction `yaml:"call_to_action"`
}

type Chip struct {
	Icon  string `yaml:"icon"`
	Label string `yaml:"label"`
}

type Card struct {
	Title string   `yaml:"title"`
	Icon  string   `yaml:"icon"`
	Color string   `yaml:"color"`
	Lines []string `yaml:"lines"`
}

type Leg struct {
	Title  string `yaml:"title"`
	Detail string `yaml:"detail"`
}

type City struct {
	Key   string   `yaml:"key"`
	Name  string   `yaml:"name"`
	Flag  string   `yaml:"flag"`
	Color string   `yaml:"color"`
	Notes []string `yaml:"notes"`
	Tags  []string `yaml:"tags"`
}

type Accent struct {
	Caption string `yaml:"caption"`
	Color   string `yaml:"color"`
}

type CallToAction struct {
	Label          string `yaml:"label"`
	SecondaryLabel string `yaml:"secondary_label"`
}

func Default() (*Deck, error) {
	return Parse(defaultDeckYAML)
}

// Load reads a deck from path, or the embedded deck when path is empty.
func Load(path string) (*Deck, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Deck, error) {
	deck := &Deck{}
	if err := yaml.Unmarshal(raw, deck); err != nil {
		return nil, fmt.Errorf("parse deck: %w", err)
	}
	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return deck, nil
}

func (deck *Deck) Validate() error {
	if deck == nil || len(deck.Slides) == 0 {
		return ErrEmptyDeck
	}

	seen := make(map[string]struct{}, len(deck.Slides))
	for index, slide := range deck.Slides {
		key := strings.TrimSpace(slide.Key)
		if key == "" {
			return fmt.Errorf("slide %d: key is required", index)
		}
		if _, exists := seen[key]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateSlide, key)
		}
		seen[key] = struct{}{}

		if !isKnownKind(slide.Kind) {
			return fmt.Errorf("%w: %q on slide %s", ErrUnknownSlideKind, slide.Kind, key)
		}
		if slide.Kind == KindItinerary && len(slide.Cities) == 0 {
			return fmt.Errorf("slide %s: itinerary needs at least one city", key)
		}
	}
	return nil
}

func isKnownKind(kind string) bool {
	switch kind {
	case KindIntro, KindCards, KindRoute, KindItinerary, KindHighlights, KindCTA:
		return true
	default:
		return false
	}
}

func (deck *Deck) Len() int {
	return len(deck.Slides)
}

func (deck *Deck) Keys() []string {
	keys := make([]string, 0, len(deck.Slides))
	for _, slide := range deck.Slides {
		keys = append(keys, slide.Key)
	}
	return keys
}

// SlideAt clamps index into the deck bounds.
func (deck *Deck) SlideAt(index int) Slide {
	if index < 0 {
		index = 0
	}
	if index > len(deck.Slides)-1 {
		index = len(deck.Slides) - 1
	}
	return deck.Slides[index]
}

// Cities returns the stops of the first itinerary slide.
func (deck *Deck) Cities() []City {
	for _, slide := range deck.Slides {
		if slide.Kind == KindItinerary {
			return slide.Cities
		}
	}
	return nil
}
