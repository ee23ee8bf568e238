package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/LouYuanbo1/tiktokagent/internal/config"
	"github.com/LouYuanbo1/tiktokagent/internal/domain/model"
	"github.com/LouYuanbo1/tiktokagent/internal/infra/browser"
	"github.com/LouYuanbo1/tiktokagent/internal/paginate"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// fakeSession satisfies browser.Session without a browser. Scrape
// returns the canned page; Fetch is unused because the signer is faked
// separately.
type fakeSession struct {
	html     string
	captures []browser.Capture
}

func (f *fakeSession) UserAgent(ctx context.Context) (string, error) {
	return "Mozilla/5.0 (X11; Linux x86_64)", nil
}

func (f *fakeSession) Fetch(ctx context.Context, u string) ([]byte, error) {
	return nil, fmt.Errorf("unexpected fetch: %s", u)
}

func (f *fakeSession) Scrape(ctx context.Context, u string, opts browser.ScrapeOptions) (*browser.ScrapeResult, error) {
	return &browser.ScrapeResult{HTML: f.html, Captures: f.captures}, nil
}

func (f *fakeSession) Cookie(ctx context.Context, name string) (string, bool, error) {
	return "", false, nil
}

func (f *fakeSession) Close() {}

// fakeSigner routes signed requests to canned bodies by URL substring
// and records every URL it saw.
type fakeSigner struct {
	routes map[string]func(u *url.URL) []byte
	seen   []string
}

func (f *fakeSigner) SignAndFetch(ctx context.Context, rawURL string) ([]byte, error) {
	f.seen = append(f.seen, rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	for fragment, handler := range f.routes {
		if strings.Contains(rawURL, fragment) {
			return handler(u), nil
		}
	}
	return nil, fmt.Errorf("no canned response for %s", rawURL)
}

func testClient(t *testing.T, session browser.Session, sg *fakeSigner, mode paginate.Mode) *Client {
	t.Helper()
	cfg, err := config.ParseConfig([]byte(`{}`))
	require.NoError(t, err)
	log := logrus.New()
	return InitClient(session, sg, mode, cfg, log)
}

func TestCommentsPagination(t *testing.T) {
	sg := &fakeSigner{routes: map[string]func(u *url.URL) []byte{
		"comment/list/": func(u *url.URL) []byte {
			require.Equal(t, "7000000000000000001", u.Query().Get("aweme_id"))
			if u.Query().Get("cursor") == "0" {
				return []byte(`{
					"status_code": 0, "cursor": 20, "has_more": 1,
					"comments": [
						{"cid": "1", "text": "first", "user": "alice"},
						{"cid": "2", "text": "second", "user": "bob"}
					]
				}`)
			}
			return []byte(`{
				"status_code": 0, "cursor": 40, "has_more": 0,
				"comments": [{"cid": "3", "text": "third", "user": "carol"}]
			}`)
		},
	}}
	c := testClient(t, &fakeSession{}, sg, paginate.ModeBlocking)

	comments, err := c.Comments(7000000000000000001).Iter().Collect(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	require.Equal(t, "first", comments[0].Text)
	require.Equal(t, "third", comments[2].Text)
	require.Len(t, sg.seen, 2)

	// Fetched comments come back bound to the client.
	author, err := comments[0].Author()
	require.NoError(t, err)
	require.Equal(t, "alice", author.UniqueID())
}

func TestCommentsSurfaceStatusError(t *testing.T) {
	sg := &fakeSigner{routes: map[string]func(u *url.URL) []byte{
		"comment/list/": func(u *url.URL) []byte {
			return []byte(`{"status_code": 2053, "comments": []}`)
		},
	}}
	c := testClient(t, &fakeSession{}, sg, paginate.ModeBlocking)

	_, err := c.Comments(1).Iter().Collect(context.Background(), 0)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 2053, statusErr.Code)
}

func TestCommentsDecodeFailure(t *testing.T) {
	sg := &fakeSigner{routes: map[string]func(u *url.URL) []byte{
		"comment/list/": func(u *url.URL) []byte {
			return []byte(`<html>captcha</html>`)
		},
	}}
	c := testClient(t, &fakeSession{}, sg, paginate.ModeBlocking)

	_, err := c.Comments(1).Iter().Collect(context.Background(), 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode")
}

func sigiPage(state string) string {
	return `<html><head></head><body>` +
		`<script id="SIGI_STATE" type="application/json">` + state + `</script>` +
		`</body></html>`
}

func TestExtractEmbeddedState(t *testing.T) {
	state, err := extractEmbeddedState(sigiPage(`{"ok": true}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"ok": true}`, string(state))

	_, err = extractEmbeddedState(`<html><body>nothing here</body></html>`)
	require.Error(t, err)
}

func TestVideoScrapeMergesCaptures(t *testing.T) {
	page := sigiPage(`{
		"VideoPage": {"statusCode": 0},
		"ItemModule": {
			"7000000000000000001": {
				"id": "7000000000000000001",
				"desc": "a video",
				"author": "creator",
				"challenges": [{"id": "1", "title": "dance"}]
			}
		},
		"CommentItem": {
			"10": {"cid": "10", "text": "from page", "user": "alice"}
		}
	}`)
	captured := []browser.Capture{{
		URL: "https://www.tiktok.com/api/comment/list/?aweme_id=7000000000000000001",
		Body: []byte(`{
			"status_code": 0, "cursor": 20, "has_more": 1,
			"comments": [{"cid": "11", "text": "from capture", "user": "bob"}]
		}`),
	}}
	c := testClient(t, &fakeSession{html: page, captures: captured}, &fakeSigner{}, paginate.ModeBlocking)

	video, err := c.Video(context.Background(), "https://www.tiktok.com/@creator/video/7000000000000000001")
	require.NoError(t, err)
	require.EqualValues(t, 7000000000000000001, video.ID.Int64())
	require.Equal(t, "a video", video.Desc)
	require.Len(t, video.Comments, 2)
	require.NotNil(t, video.Creator)
	require.Equal(t, "creator", video.Creator.UniqueID())
	require.Equal(t, []string{"dance"}, video.TagNames())
}

func TestUserScrapeDowngradesPrivateLists(t *testing.T) {
	page := sigiPage(`{
		"UserPage": {"statusCode": 0},
		"UserModule": {
			"users": {"someone": {"id": "42", "uniqueId": "someone", "secUid": "MS4w", "privateAccount": true}},
			"stats": {"someone": {"followerCount": 10}}
		},
		"ItemModule": {}
	}`)
	sg := &fakeSigner{routes: map[string]func(u *url.URL) []byte{
		"user/list/": func(u *url.URL) []byte {
			return []byte(`{"statusCode": 10222}`)
		},
	}}
	c := testClient(t, &fakeSession{html: page}, sg, paginate.ModeBlocking)

	user, err := c.User(context.Background(), "someone")
	require.NoError(t, err)
	require.Equal(t, "someone", user.UniqueID)
	require.Equal(t, 10, user.Stats.FollowerCount)

	// Both list scenes were attempted, both denied, neither fatal.
	require.Len(t, sg.seen, 2)
	require.Empty(t, user.Followers)
	require.Empty(t, user.Following)
}

func TestUserScrapeFetchesUserLists(t *testing.T) {
	page := sigiPage(`{
		"UserPage": {"statusCode": 0},
		"UserModule": {
			"users": {"someone": {"id": "42", "uniqueId": "someone", "secUid": "MS4w"}},
			"stats": {}
		},
		"ItemModule": {}
	}`)
	sg := &fakeSigner{routes: map[string]func(u *url.URL) []byte{
		"scene=21": func(u *url.URL) []byte {
			return []byte(`{"statusCode": 0, "hasMore": false, "userList": [{"user": {"uniqueId": "followed"}}]}`)
		},
		"scene=67": func(u *url.URL) []byte {
			if u.Query().Get("minCursor") == "0" {
				return []byte(`{"statusCode": 0, "hasMore": true, "minCursor": 555, "userList": [{"user": {"uniqueId": "fan1"}}]}`)
			}
			return []byte(`{"statusCode": 0, "hasMore": false, "userList": [{"user": {"uniqueId": "fan2"}}]}`)
		},
	}}
	c := testClient(t, &fakeSession{html: page}, sg, paginate.ModeBlocking)

	user, err := c.User(context.Background(), "someone")
	require.NoError(t, err)
	require.Equal(t, []string{"followed"}, uniqueIDs(user.Following))
	require.Equal(t, []string{"fan1", "fan2"}, uniqueIDs(user.Followers))
}

func uniqueIDs(users []model.LightUser) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.UniqueID)
	}
	return names
}

func TestSearchVideosFiltersAndPaginates(t *testing.T) {
	sg := &fakeSigner{routes: map[string]func(u *url.URL) []byte{
		"search/general/full/": func(u *url.URL) []byte {
			require.Equal(t, "search", u.Query().Get("from_page"))
			if u.Query().Get("offset") == "0" {
				require.Empty(t, u.Query().Get("search_id"))
				return []byte(`{
					"status_code": 0, "cursor": 12, "has_more": 1,
					"data": [
						{"type": 1, "item": {"id": "1"}},
						{"type": 4, "item": {"id": "999"}},
						{"type": 1, "item": {"id": "2"}}
					],
					"extra": {"logid": "log-1"}
				}`)
			}
			require.Equal(t, "log-1", u.Query().Get("search_id"))
			return []byte(`{
				"status_code": 0, "cursor": 24, "has_more": 0,
				"data": [{"type": 1, "item": {"id": "3"}}],
				"extra": {"logid": "log-2"}
			}`)
		},
	}}
	c := testClient(t, &fakeSession{}, sg, paginate.ModeBlocking)

	videos, err := c.SearchVideos(context.Background(), "cats", -1)
	require.NoError(t, err)
	require.Len(t, videos, 3)
	require.EqualValues(t, 1, videos[0].ID.Int64())
	require.EqualValues(t, 3, videos[2].ID.Int64())
	require.Len(t, sg.seen, 2)
}

func TestSearchVideosHonorsLimit(t *testing.T) {
	sg := &fakeSigner{routes: map[string]func(u *url.URL) []byte{
		"search/general/full/": func(u *url.URL) []byte {
			return []byte(`{
				"status_code": 0, "cursor": 12, "has_more": 1,
				"data": [
					{"type": 1, "item": {"id": "1"}},
					{"type": 1, "item": {"id": "2"}}
				],
				"extra": {"logid": "log-1"}
			}`)
		},
	}}
	c := testClient(t, &fakeSession{}, sg, paginate.ModeBlocking)

	videos, err := c.SearchVideos(context.Background(), "cats", 2)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	require.Len(t, sg.seen, 1)
}

func TestClientModePropagatesToPagers(t *testing.T) {
	c := testClient(t, &fakeSession{}, &fakeSigner{}, paginate.ModeStream)

	it := c.Comments(1).Iter()
	require.False(t, it.Next(context.Background()))
	require.ErrorIs(t, it.Err(), paginate.ErrIterationMode)

	_, err := c.VideoComments(context.Background(), 1, 10)
	require.ErrorIs(t, err, paginate.ErrIterationMode)
}
