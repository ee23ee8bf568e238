// Package scrape is the TikTok API client: page scraping entry points,
// the deferred iterators over the paginated endpoints, and the
// Elasticsearch indexing service.
package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/LouYuanbo1/tiktokagent/internal/config"
	"github.com/LouYuanbo1/tiktokagent/internal/domain/model"
	"github.com/LouYuanbo1/tiktokagent/internal/infra/browser"
	"github.com/LouYuanbo1/tiktokagent/internal/infra/signer"
	"github.com/LouYuanbo1/tiktokagent/internal/paginate"
	"github.com/LouYuanbo1/tiktokagent/internal/query"
	"github.com/sirupsen/logrus"
)

// msTokenCookie is the session token some endpoints want as an extra
// query parameter when present.
const msTokenCookie = "msToken"

const embeddedStateTag = `<script id="SIGI_STATE" type="application/json">`

// Client drives one browser session. The mode fixes which iteration
// driver the pagers it hands out accept; a client is either blocking
// or streaming, never both.
type Client struct {
	session browser.Session
	signer  signer.Signer
	mode    paginate.Mode
	cfg     *config.Config
	log     *logrus.Logger
}

func InitClient(session browser.Session, sg signer.Signer, mode paginate.Mode, cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		session: session,
		signer:  sg,
		mode:    mode,
		cfg:     cfg,
		log:     log,
	}
}

// Mode returns the iteration mode the client was created with.
func (c *Client) Mode() paginate.Mode { return c.mode }

// requestJSON builds, signs and executes one API request and decodes
// the response into out.
func (c *Client) requestJSON(ctx context.Context, endpoint query.Endpoint, cursor int64, target string, extra url.Values, out any) error {
	reqURL, err := query.URL(ctx, c.session, endpoint, cursor, target, extra)
	if err != nil {
		return err
	}
	raw, err := c.signer.SignAndFetch(ctx, reqURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) makeRequest(ctx context.Context, endpoint query.Endpoint, cursor int64, target string, extra url.Values) (*model.APIResponse, error) {
	var resp model.APIResponse
	if err := c.requestJSON(ctx, endpoint, cursor, target, extra, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// extractEmbeddedState cuts the embedded JSON state out of a scraped
// page's HTML.
func extractEmbeddedState(html string) ([]byte, error) {
	_, rest, ok := strings.Cut(html, embeddedStateTag)
	if !ok {
		return nil, errors.New("embedded state script not found in page")
	}
	data, _, ok := strings.Cut(rest, "</script>")
	if !ok {
		return nil, errors.New("embedded state script not terminated")
	}
	return []byte(data), nil
}

func (c *Client) scrapeOptions() browser.ScrapeOptions {
	return browser.ScrapeOptions{
		WaitSelector: "#SIGI_STATE",
		CapturePatterns: []string{
			"*/api/challenge/item_list/*",
			"*/api/comment/list/*",
			"*/api/post/item_list/*",
		},
		ScrollTimes:          c.cfg.Scrape.ScrollTimes,
		StandardSleepSeconds: c.cfg.Scrape.StandardSleepSeconds,
		RandomDelaySeconds:   c.cfg.Scrape.RandomDelaySeconds,
	}
}

// scrapePage navigates to link, retrying per configuration, and
// returns the embedded state plus any captured API responses.
func (c *Client) scrapePage(ctx context.Context, link string) ([]byte, []*model.APIResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.Scrape.NavigationRetries; attempt++ {
		result, err := c.session.Scrape(ctx, link, c.scrapeOptions())
		if err != nil {
			lastErr = err
			c.log.Warnf("navigation attempt %d for %s failed: %v", attempt+1, link, err)
			continue
		}
		state, err := extractEmbeddedState(result.HTML)
		if err != nil {
			lastErr = err
			c.log.Warnf("attempt %d for %s: %v", attempt+1, link, err)
			continue
		}
		var extras []*model.APIResponse
		for _, capture := range result.Captures {
			var resp model.APIResponse
			if err := json.Unmarshal(capture.Body, &resp); err != nil {
				c.log.Warnf("skip malformed captured response from %s: %v", capture.URL, err)
				continue
			}
			extras = append(extras, &resp)
		}
		return state, extras, nil
	}
	return nil, nil, fmt.Errorf("scraping %s did not complete (retries: %d): %w",
		link, c.cfg.Scrape.NavigationRetries, lastErr)
}

// VideoLink returns the canonical page link for a video id.
func VideoLink(videoID int64) string {
	return fmt.Sprintf("%s/@/video/%d", browser.HomeURL, videoID)
}

// UserLink returns the profile page link for a unique user name.
func UserLink(uniqueID string) string {
	return fmt.Sprintf("%s/@%s", browser.HomeURL, url.PathEscape(uniqueID))
}

// ChallengeLink returns the tag page link for a challenge name.
func ChallengeLink(name string) string {
	return fmt.Sprintf("%s/tag/%s", browser.HomeURL, url.PathEscape(name))
}

// Video scrapes a video page: the full record, comments seeded from
// the page and captured API responses, a lazy creator handle, and tag
// names ready for the detail iterator.
func (c *Client) Video(ctx context.Context, link string) (*model.Video, error) {
	state, extras, err := c.scrapePage(ctx, link)
	if err != nil {
		return nil, err
	}
	var resp model.VideoResponse
	if err := json.Unmarshal(state, &resp); err != nil {
		return nil, fmt.Errorf("decode video page state: %w", err)
	}
	if resp.VideoPage.StatusCode != 0 {
		return nil, &StatusError{Code: resp.VideoPage.StatusCode}
	}
	var video *model.Video
	for _, v := range resp.ItemModule {
		video = v
		break
	}
	if video == nil {
		return nil, errors.New("video page carried no item record")
	}
	video.Bind(c)

	comments := make([]*model.Comment, 0, len(resp.CommentItem))
	for _, cm := range resp.CommentItem {
		comments = append(comments, cm)
	}
	for _, extra := range extras {
		comments = append(comments, extra.Comments...)
	}
	for _, cm := range comments {
		cm.Bind(c)
	}
	if len(comments) == 0 {
		c.log.Warn("no comments collected; a retry or a longer scroll phase might help")
	}
	video.Comments = comments
	video.Creator = model.NewUserGetter(c, video.Author.UniqueID)
	return video, nil
}

// User scrapes a profile page. Follower and following lists are
// fetched afterwards; private lists are downgraded to a warning and
// left absent.
func (c *Client) User(ctx context.Context, uniqueID string) (*model.User, error) {
	state, extras, err := c.scrapePage(ctx, UserLink(uniqueID))
	if err != nil {
		return nil, err
	}
	var resp model.UserResponse
	if err := json.Unmarshal(state, &resp); err != nil {
		return nil, fmt.Errorf("decode user page state: %w", err)
	}
	if resp.UserPage.StatusCode != 0 {
		return nil, &StatusError{Code: resp.UserPage.StatusCode}
	}
	if resp.UserModule == nil || len(resp.UserModule.Users) == 0 {
		return nil, fmt.Errorf("user %q not present in page state", uniqueID)
	}
	var user *model.User
	for name, u := range resp.UserModule.Users {
		user = u
		if stats, ok := resp.UserModule.Stats[name]; ok {
			user.Stats = stats
		}
		break
	}
	user.Videos = c.collectFeedSeed(resp.ItemModule, extras)

	for _, list := range []struct {
		scene int
		dst   *[]model.LightUser
	}{
		{sceneFollowing, &user.Following},
		{sceneFollowers, &user.Followers},
	} {
		users, err := c.userList(ctx, list.scene, user.SecUID)
		if err != nil {
			if errors.Is(err, ErrRestrictedList) {
				c.log.Warnf("user list scene %d for %s is private, skipping", list.scene, uniqueID)
				continue
			}
			c.log.Warnf("could not fetch user list scene %d for %s: %v", list.scene, uniqueID, err)
			continue
		}
		*list.dst = users
	}
	return user, nil
}

// Challenge scrapes a tag page.
func (c *Client) Challenge(ctx context.Context, name string) (*model.Challenge, error) {
	state, extras, err := c.scrapePage(ctx, ChallengeLink(name))
	if err != nil {
		return nil, err
	}
	var resp model.ChallengeResponse
	if err := json.Unmarshal(state, &resp); err != nil {
		return nil, fmt.Errorf("decode challenge page state: %w", err)
	}
	if resp.ChallengePage == nil || resp.ChallengePage.ChallengeInfo == nil {
		return nil, fmt.Errorf("challenge %q not present in page state", name)
	}
	if resp.ChallengePage.StatusCode != 0 {
		return nil, &StatusError{Code: resp.ChallengePage.StatusCode}
	}
	challenge := resp.ChallengePage.ChallengeInfo.Challenge
	challenge.Stats = resp.ChallengePage.ChallengeInfo.Stats
	challenge.Bind(c)
	challenge.Videos = c.collectFeedSeed(resp.ItemModule, extras)
	return challenge, nil
}

func (c *Client) collectFeedSeed(itemModule map[string]*model.LightVideo, extras []*model.APIResponse) []*model.LightVideo {
	videos := make([]*model.LightVideo, 0, len(itemModule))
	for _, v := range itemModule {
		videos = append(videos, v)
	}
	for _, extra := range extras {
		videos = append(videos, extra.ItemList...)
	}
	for _, v := range videos {
		v.Bind(c)
	}
	return videos
}

const (
	sceneFollowing = 21
	sceneFollowers = 67
)

// userList pages through the user/list endpoint by minCursor. The
// restricted-list status surfaces as ErrRestrictedList so callers can
// treat the list as optionally unavailable.
func (c *Client) userList(ctx context.Context, scene int, secUID string) ([]model.LightUser, error) {
	minCursor := int64(0)
	var out []model.LightUser
	for {
		reqURL := fmt.Sprintf("https://us.tiktok.com/api/user/list/?minCursor=%d&scene=%d&count=200&secUid=%s",
			minCursor, scene, url.QueryEscape(secUID))
		raw, err := c.signer.SignAndFetch(ctx, reqURL)
		if err != nil {
			return nil, err
		}
		var resp model.APIResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("decode user list response: %w", err)
		}
		if err := checkStatus(&resp); err != nil {
			return nil, err
		}
		for _, entry := range resp.UserList {
			out = append(out, entry.User.LightUser)
		}
		if !resp.HasMore || resp.MinCursor == -1 || resp.MinCursor == minCursor {
			return out, nil
		}
		minCursor = resp.MinCursor
	}
}

// VideoByID looks one video up through the item detail endpoint.
func (c *Client) VideoByID(ctx context.Context, videoID int64) (*model.Video, error) {
	var detail model.VideoDetail
	if err := c.requestJSON(ctx, query.ItemDetail, 0, fmt.Sprintf("%d", videoID), nil, &detail); err != nil {
		return nil, err
	}
	if detail.StatusCode != 0 {
		return nil, &StatusError{Code: detail.StatusCode}
	}
	if detail.ItemInfo == nil || detail.ItemInfo.Video == nil {
		return nil, fmt.Errorf("video %d not found", videoID)
	}
	video := detail.ItemInfo.Video
	video.Bind(c)
	video.Creator = model.NewUserGetter(c, video.Author.UniqueID)
	return video, nil
}

// ChallengeByName looks one challenge up through the detail endpoint.
func (c *Client) ChallengeByName(ctx context.Context, name string) (*model.Challenge, error) {
	var page model.ChallengePage
	if err := c.requestJSON(ctx, query.ChallengeDetail, 0, name, nil, &page); err != nil {
		return nil, err
	}
	if page.StatusCode != 0 {
		return nil, &StatusError{Code: page.StatusCode}
	}
	if page.ChallengeInfo == nil || page.ChallengeInfo.Challenge == nil {
		return nil, fmt.Errorf("challenge %q not found", name)
	}
	challenge := page.ChallengeInfo.Challenge
	challenge.Stats = page.ChallengeInfo.Stats
	challenge.Bind(c)
	return challenge, nil
}

// The client is the Resolver behind every lazy handle it hands out.

func (c *Client) ResolveUser(ctx context.Context, uniqueID string) (*model.User, error) {
	return c.User(ctx, uniqueID)
}

func (c *Client) ResolveVideo(ctx context.Context, id int64) (*model.Video, error) {
	return c.VideoByID(ctx, id)
}

func (c *Client) ResolveChallenge(ctx context.Context, name string) (*model.Challenge, error) {
	return c.ChallengeByName(ctx, name)
}

var _ model.Resolver = (*Client)(nil)
