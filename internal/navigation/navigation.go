// Package navigation holds the screen route table and the edges between
// screens.
package navigation

// Screen names a top-level page.
type Screen string

const (
	Splash     Screen = "splash"
	Login      Screen = "login"
	Register   Screen = "register"
	Buyer      Screen = "buyer"
	Seller     Screen = "seller"
	AddArtwork Screen = "add_artwork"
)

var routes = map[Screen]string{
	Splash:     "/",
	Login:      "/login",
	Register:   "/register",
	Buyer:      "/buyer",
	Seller:     "/seller",
	AddArtwork: "/seller/artworks/new",
}

// Screens lists every screen in declaration order.
func Screens() []Screen {
	return []Screen{Splash, Login, Register, Buyer, Seller, AddArtwork}
}

// Route returns the URL path of s, or "" for an unknown screen.
func (s Screen) Route() string { return routes[s] }

// ScreenFor returns the screen served at path.
func ScreenFor(path string) (Screen, bool) {
	for s, r := range routes {
		if r == path {
			return s, true
		}
	}
	return "", false
}

// Edge is a permitted move from one screen to another.
type Edge struct {
	From Screen
	To   Screen
}

// Graph lists every permitted move. Moves into Login from Buyer and Seller
// are sign-outs.
var Graph = []Edge{
	{Splash, Login},
	{Splash, Buyer},
	{Splash, Seller},
	{Login, Register},
	{Login, Buyer},
	{Login, Seller},
	{Register, Login},
	{Register, Buyer},
	{Register, Seller},
	{Buyer, Login},
	{Seller, AddArtwork},
	{Seller, Login},
	{AddArtwork, Seller},
}

// CanNavigate reports whether Graph has an edge from -> to.
func CanNavigate(from, to Screen) bool {
	for _, e := range Graph {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// Resolve picks the landing screen after splash, login or register.
func Resolve(authenticated, isSeller bool) Screen {
	switch {
	case !authenticated:
		return Login
	case isSeller:
		return Seller
	default:
		return Buyer
	}
}
