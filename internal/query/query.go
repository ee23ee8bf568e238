// Package query assembles the query strings required by the paginated
// TikTok web API endpoints.
package query

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const BaseURL = "https://www.tiktok.com/api/"

// Endpoint identifies one of the supported paginated endpoints. The
// set is closed; anything else is a programmer error.
type Endpoint string

const (
	CommentList       Endpoint = "comment/list/"
	PostItemList      Endpoint = "post/item_list/"
	ChallengeItemList Endpoint = "challenge/item_list/"
	RelatedItemList   Endpoint = "related/item_list/"
	ItemDetail        Endpoint = "item/detail/"
	ChallengeDetail   Endpoint = "challenge/detail/"
	SearchGeneralFull Endpoint = "search/general/full/"
)

// ErrUnsupportedEndpoint is returned for endpoints outside the fixed
// table. It fires before any browser or network activity.
var ErrUnsupportedEndpoint = errors.New("unsupported endpoint")

// Each endpoint is keyed by its own id parameter name.
var endpointIDParams = map[Endpoint]string{
	CommentList:       "aweme_id",
	PostItemList:      "secUid",
	ChallengeItemList: "challengeID",
	RelatedItemList:   "itemID",
	ItemDetail:        "itemId",
	ChallengeDetail:   "challengeName",
	SearchGeneralFull: "keyword",
}

// Fixed parameters sent on every request. The values satisfy the
// site's request validation and carry no meaning to callers.
var templateParams = map[string]string{
	"aid":              "1988",
	"app_name":         "tiktok_web",
	"browser_language": "en-US",
	"browser_platform": "Win32",
	"count":            "30",
	"device_id":        "",
	"device_platform":  "web_pc",
	"os":               "windows",
	"priority_region":  "US",
	"referrer":         "",
	"region":           "US",
	"screen_height":    "0",
	"screen_width":     "0",
}

// IDParam returns the id parameter name for the endpoint.
func IDParam(endpoint Endpoint) (string, error) {
	name, ok := endpointIDParams[endpoint]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEndpoint, endpoint)
	}
	return name, nil
}

// UserAgentProvider reads the user agent live from the browser
// session, typically by opening a short-lived page.
type UserAgentProvider interface {
	UserAgent(ctx context.Context) (string, error)
}

// Build produces the full query string for one request against
// endpoint: template parameters, browser name/version read live from
// the session, the endpoint's id parameter set to target, the cursor,
// and any endpoint-specific extras.
func Build(ctx context.Context, session UserAgentProvider, endpoint Endpoint, cursor int64, target string, extra url.Values) (string, error) {
	idParam, err := IDParam(endpoint)
	if err != nil {
		return "", err
	}
	agent, err := session.UserAgent(ctx)
	if err != nil {
		return "", fmt.Errorf("read user agent: %w", err)
	}
	browserName, browserVersion, _ := strings.Cut(agent, "/")

	values := url.Values{}
	for k, v := range templateParams {
		values.Set(k, v)
	}
	values.Set("browser_name", browserName)
	values.Set("browser_version", browserVersion)
	for k, vs := range extra {
		for _, v := range vs {
			values.Add(k, v)
		}
	}
	values.Set("cursor", strconv.FormatInt(cursor, 10))
	values.Set(idParam, target)
	return values.Encode(), nil
}

// URL builds the fully-parameterized (but unsigned) request URL.
func URL(ctx context.Context, session UserAgentProvider, endpoint Endpoint, cursor int64, target string, extra url.Values) (string, error) {
	qs, err := Build(ctx, session, endpoint, cursor, target, extra)
	if err != nil {
		return "", err
	}
	return BaseURL + string(endpoint) + "?" + qs, nil
}
