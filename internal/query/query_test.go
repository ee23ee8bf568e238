package query

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAgent counts how often the browser was consulted.
type fakeAgent struct {
	agent string
	calls int
}

func (f *fakeAgent) UserAgent(ctx context.Context) (string, error) {
	f.calls++
	return f.agent, nil
}

func TestUnsupportedEndpointFailsBeforeBrowser(t *testing.T) {
	agent := &fakeAgent{agent: "Mozilla/5.0"}
	_, err := Build(context.Background(), agent, Endpoint("music/list/"), 0, "123", nil)
	require.ErrorIs(t, err, ErrUnsupportedEndpoint)
	require.Equal(t, 0, agent.calls)
}

func TestIDParamPerEndpoint(t *testing.T) {
	for endpoint, want := range map[Endpoint]string{
		CommentList:       "aweme_id",
		PostItemList:      "secUid",
		ChallengeItemList: "challengeID",
		RelatedItemList:   "itemID",
		ItemDetail:        "itemId",
		ChallengeDetail:   "challengeName",
		SearchGeneralFull: "keyword",
	} {
		got, err := IDParam(endpoint)
		require.NoError(t, err)
		require.Equal(t, want, got, "endpoint %s", endpoint)
	}
}

func TestBuildQueryString(t *testing.T) {
	agent := &fakeAgent{agent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"}
	qs, err := Build(context.Background(), agent, CommentList, 40, "7000000000", nil)
	require.NoError(t, err)
	require.Equal(t, 1, agent.calls)

	values, err := url.ParseQuery(qs)
	require.NoError(t, err)

	// The user agent splits on its first slash.
	require.Equal(t, "Mozilla", values.Get("browser_name"))
	require.Equal(t, "5.0 (Windows NT 10.0; Win64; x64)", values.Get("browser_version"))

	require.Equal(t, "7000000000", values.Get("aweme_id"))
	require.Equal(t, "40", values.Get("cursor"))
	require.Equal(t, "1988", values.Get("aid"))
	require.Equal(t, "tiktok_web", values.Get("app_name"))
	require.Equal(t, "30", values.Get("count"))

	// Empty-valued template parameters still appear.
	require.Contains(t, values, "device_id")
	require.Contains(t, values, "referrer")
}

func TestBuildExtraParams(t *testing.T) {
	agent := &fakeAgent{agent: "Mozilla/5.0"}
	extra := url.Values{"from_page": {"search"}, "offset": {"12"}}
	qs, err := Build(context.Background(), agent, SearchGeneralFull, 0, "cats", extra)
	require.NoError(t, err)

	values, err := url.ParseQuery(qs)
	require.NoError(t, err)
	require.Equal(t, "search", values.Get("from_page"))
	require.Equal(t, "12", values.Get("offset"))
	require.Equal(t, "cats", values.Get("keyword"))
}

func TestURLJoinsBaseAndEndpoint(t *testing.T) {
	agent := &fakeAgent{agent: "Mozilla/5.0"}
	u, err := URL(context.Background(), agent, ChallengeDetail, 0, "dance", nil)
	require.NoError(t, err)

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	require.Equal(t, "www.tiktok.com", parsed.Host)
	require.Equal(t, "/api/challenge/detail/", parsed.Path)
	require.Equal(t, "dance", parsed.Query().Get("challengeName"))
}
