package source

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"godmon/internal/logger"
)

const godvilleRoot = "https://godville.net"

// Godville talks to godville.net. The token API endpoint occasionally
// 404s for gods created before the token era; the legacy `.json` URL is
// tried as a fallback, exactly like the official web client does.
type Godville struct {
	client *http.Client
	log    logger.Logger
	root   string
}

func NewGodville(client *http.Client, log logger.Logger) *Godville {
	return &Godville{client: client, log: log, root: godvilleRoot}
}

func (g *Godville) ID() string   { return "godville" }
func (g *Godville) Name() string { return "Godville" }

func (g *Godville) HeroURL() string {
	return g.root + "/superhero"
}

func (g *Godville) TokenURL() string {
	return g.root + "/user/profile"
}

func (g *Godville) apiURL(godname, token string) string {
	u := g.root + "/gods/api/" + url.QueryEscape(godname)
	if token != "" {
		u += "/" + token
	}
	return u
}

func (g *Godville) legacyAPIURL(godname string) string {
	return g.root + "/gods/api/" + url.QueryEscape(godname) + ".json"
}

func (g *Godville) Fetch(ctx context.Context, godname, token string) ([]byte, error) {
	apiURL := g.apiURL(godname, token)
	body, err := getBody(ctx, g.client, g.ID(), apiURL)
	if err == nil {
		return body, nil
	}

	if !errors.Is(err, errNotFound) {
		return nil, err
	}

	legacyURL := g.legacyAPIURL(godname)
	g.log.Warnw("token api url returned 404, trying legacy url",
		"url", apiURL,
		"legacy_url", legacyURL,
	)
	return getBody(ctx, g.client, g.ID(), legacyURL)
}
