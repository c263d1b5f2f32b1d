package source

import (
	"context"
	"net/http"
	"net/url"
)

const godvilleGameRoot = "https://godvillegame.com"

// GodvilleGame talks to the English sister site. It only exposes the
// public `.json` API; tokens are ignored.
type GodvilleGame struct {
	client *http.Client
	root   string
}

func NewGodvilleGame(client *http.Client) *GodvilleGame {
	return &GodvilleGame{client: client, root: godvilleGameRoot}
}

func (g *GodvilleGame) ID() string   { return "godvillegame" }
func (g *GodvilleGame) Name() string { return "Godville Game" }

func (g *GodvilleGame) HeroURL() string {
	return g.root + "/superhero"
}

func (g *GodvilleGame) TokenURL() string {
	return ""
}

func (g *GodvilleGame) Fetch(ctx context.Context, godname, _ string) ([]byte, error) {
	apiURL := g.root + "/gods/api/" + url.PathEscape(godname) + ".json"
	return getBody(ctx, g.client, g.ID(), apiURL)
}
