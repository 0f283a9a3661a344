package services

import (
	"strings"

	"github.com/terraincognita07/travelgc/internal/models"
)

type OverlayMode string

const (
	OverlayDeck         OverlayMode = models.OverlayDeck
	OverlayRegistration OverlayMode = models.OverlayRegistration
)

func ParseOverlayMode(raw string) OverlayMode {
	if OverlayMode(strings.TrimSpace(raw)) == OverlayRegistration {
		return OverlayRegistration
	}
	return OverlayDeck
}

// Open and Close are idempotent: opening an open overlay or closing a closed
// one leaves the mode unchanged.
func (OverlayMode) Open() OverlayMode {
	return OverlayRegistration
}

func (OverlayMode) Close() OverlayMode {
	return OverlayDeck
}

func (mode OverlayMode) Visible() bool {
	return mode == OverlayRegistration
}

// AcceptsKeyboardNavigation is false while the registration form covers the
// deck. Directional keys received in that mode are dropped, not buffered.
func (mode OverlayMode) AcceptsKeyboardNavigation() bool {
	return !mode.Visible()
}

type NavigationKey string

const (
	KeyLeft  NavigationKey = "left"
	KeyRight NavigationKey = "right"
)

func ParseNavigationKey(raw string) (NavigationKey, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "arrowleft", "left":
		return KeyLeft, true
	case "arrowright", "right":
		return KeyRight, true
	default:
		return "", false
	}
}
