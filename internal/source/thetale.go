package source

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"godmon/internal/logger"
)

const (
	theTaleRoot      = "https://the-tale.org"
	theTaleClientID  = "godmon-0.1"
	theTaleAPIInfo   = "/game/api/info"
	theTaleAuthState = "/accounts/third-party/tokens/api/authorisation-state"
	theTaleAuthReq   = "/accounts/third-party/tokens/api/request-authorisation"
)

// The Tale authorisation states.
const (
	taleAuthNotRequested = 0
	taleAuthNotConfirmed = 1
	taleAuthSuccess      = 2
	taleAuthRefused      = 3
)

// TheTale adapts the-tale.org's session API to the common snapshot field
// set. Session cookies persist under the XDG cache dir so authorization
// survives restarts. Until the user confirms the third-party application
// the source reports token_expired, and TokenURL points at the pending
// confirmation page.
type TheTale struct {
	client     *http.Client
	log        logger.Logger
	root       string
	cookieFile string
	cookies    map[string]string
	accountID  int64
	authPage   string
}

func NewTheTale(client *http.Client, log logger.Logger) *TheTale {
	t := &TheTale{
		client:     client,
		log:        log,
		root:       theTaleRoot,
		cookieFile: theTaleCookiePath(),
		cookies:    map[string]string{},
	}
	t.loadCookies()
	if t.cookies["csrftoken"] == "" {
		buf := make([]byte, 16)
		rand.Read(buf)
		t.cookies["csrftoken"] = hex.EncodeToString(buf)
	}
	return t
}

func theTaleCookiePath() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "godmon", "thetale.cookies.json")
}

func (t *TheTale) ID() string   { return "thetale" }
func (t *TheTale) Name() string { return "The Tale" }

func (t *TheTale) HeroURL() string {
	return t.root + "/game/"
}

func (t *TheTale) TokenURL() string {
	return t.authPage
}

func (t *TheTale) Fetch(ctx context.Context, _, _ string) ([]byte, error) {
	if t.accountID == 0 {
		requested, err := t.authorize(ctx)
		if err != nil {
			return nil, err
		}
		if requested {
			// Authorization pending user confirmation in the browser.
			return json.Marshal(map[string]any{"token_expired": true})
		}
	}

	info, err := t.runRequest(ctx, http.MethodGet, theTaleAPIInfo, "1.10",
		url.Values{"account": {fmt.Sprintf("%d", t.accountID)}}, nil)
	if err != nil {
		return nil, err
	}

	return json.Marshal(t.mapState(info))
}

// authorize checks the third-party-token state and, when authorization
// was never requested, asks for it. Returns true while confirmation from
// the user is still pending.
func (t *TheTale) authorize(ctx context.Context) (bool, error) {
	state, err := t.runRequest(ctx, http.MethodGet, theTaleAuthState, "1.0", nil, nil)
	if err != nil {
		return false, err
	}

	switch asInt(state["state"]) {
	case taleAuthSuccess:
		t.accountID = int64(asInt(state["account_id"]))
		return false, nil
	case taleAuthNotConfirmed:
		return true, nil
	case taleAuthRefused:
		return false, newFetchError(KindProtocol, t.root, fmt.Errorf("authorisation refused by server"))
	default: // not requested yet
		req, err := t.runRequest(ctx, http.MethodPost, theTaleAuthReq, "1.0", nil, url.Values{
			"application_name":        {"godmon"},
			"application_info":        {"console status monitor"},
			"application_description": {"Terminal dashboard for The Tale hero status"},
		})
		if err != nil {
			return false, err
		}
		if page, ok := req["authorisation_page"].(string); ok {
			t.authPage = t.root + page
		}
		return true, nil
	}
}

// runRequest performs one API call, maintains session cookies, and
// unwraps the {status, data} response envelope.
func (t *TheTale) runRequest(ctx context.Context, method, path, apiVersion string, query url.Values, post url.Values) (map[string]any, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_version", apiVersion)
	query.Set("api_client", theTaleClientID)
	rawURL := t.root + path + "?" + query.Encode()

	var bodyReader *strings.Reader
	if post != nil {
		bodyReader = strings.NewReader(post.Encode())
	} else {
		bodyReader = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, newFetchError(KindOther, rawURL, err)
	}
	req.Header.Set("X-CSRFToken", t.cookies["csrftoken"])
	req.Header.Set("Referer", t.root+"/")
	if post != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	var pairs []string
	for k, v := range t.cookies {
		if v != "" {
			pairs = append(pairs, k+"="+v)
		}
	}
	req.Header.Set("Cookie", strings.Join(pairs, "; "))

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, Classify(rawURL, err)
	}
	defer resp.Body.Close()

	for _, c := range resp.Cookies() {
		t.cookies[c.Name] = c.Value
	}
	t.saveCookies()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newFetchError(KindProtocol, rawURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var envelope struct {
		Status string         `json:"status"`
		Error  string         `json:"error"`
		Data   map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, newFetchError(KindProtocol, rawURL, err)
	}
	if envelope.Status == "error" {
		return nil, newFetchError(KindProtocol, rawURL, fmt.Errorf("api error: %s", envelope.Error))
	}

	return envelope.Data, nil
}

// mapState projects The Tale's hero info onto the Godville field names
// the presentation layer understands.
func (t *TheTale) mapState(info map[string]any) map[string]any {
	hero, _ := dig(info, "account", "hero").(map[string]any)

	state := map[string]any{
		"name":       dig(hero, "base", "name"),
		"level":      dig(hero, "base", "level"),
		"health":     dig(hero, "base", "health"),
		"max_health": dig(hero, "base", "max_health"),
		"godpower":   0,
		"gold_approx": fmt.Sprintf("%d",
			asInt(dig(hero, "base", "money"))),
		"distance": 0,
	}

	if toLevel := asInt(dig(hero, "base", "experience_to_level")); toLevel > 0 {
		state["exp_progress"] = 100 * asInt(dig(hero, "base", "experience")) / toLevel
	}
	if bag, ok := dig(hero, "bag").(map[string]any); ok {
		state["inventory_num"] = len(bag)
	}
	if messages, ok := dig(hero, "messages").([]any); ok && len(messages) > 0 {
		if last, ok := messages[len(messages)-1].([]any); ok && len(last) >= 3 {
			state["diary_last"] = last[2]
		}
	}
	if quests, ok := dig(hero, "quests", "quests").([]any); ok {
		for _, q := range quests {
			line, _ := dig(q, "line").([]any)
			if len(line) == 0 {
				continue
			}
			if lastStep, ok := line[len(line)-1].(map[string]any); ok {
				if name, ok := lastStep["name"].(string); ok && name != "" {
					state["quest"] = name
					break
				}
			}
		}
	}

	return state
}

func dig(v any, keys ...string) any {
	for _, key := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case json.Number:
		n, _ := t.Int64()
		return int(n)
	default:
		return 0
	}
}

func (t *TheTale) loadCookies() {
	if t.cookieFile == "" {
		return
	}
	raw, err := os.ReadFile(t.cookieFile)
	if err != nil {
		return
	}
	var cookies map[string]string
	if err := json.Unmarshal(raw, &cookies); err != nil {
		return
	}
	t.cookies = cookies
}

func (t *TheTale) saveCookies() {
	if t.cookieFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(t.cookieFile), 0o755); err != nil {
		t.log.Warnw("failed to create cookie dir", "error", err)
		return
	}
	raw, err := json.Marshal(t.cookies)
	if err != nil {
		return
	}
	if err := os.WriteFile(t.cookieFile, raw, 0o600); err != nil {
		t.log.Warnw("failed to persist cookies", "error", err)
	}
}
