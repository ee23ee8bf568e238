package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/LouYuanbo1/tiktokagent/internal/domain/model"
	"github.com/LouYuanbo1/tiktokagent/internal/paginate"
	"github.com/LouYuanbo1/tiktokagent/internal/query"
)

// Comments returns a pager over the comments of one video, oldest page
// first. Fetching is deferred until the pager is driven.
func (c *Client) Comments(videoID int64) *paginate.Pager[*model.Comment] {
	target := strconv.FormatInt(videoID, 10)
	fetch := func(ctx context.Context, cursor int64) (paginate.Page[*model.Comment], error) {
		resp, err := c.makeRequest(ctx, query.CommentList, cursor, target, nil)
		if err != nil {
			return paginate.Page[*model.Comment]{}, err
		}
		if err := checkStatus(resp); err != nil {
			return paginate.Page[*model.Comment]{}, err
		}
		return paginate.Page[*model.Comment]{
			Items:   resp.Comments,
			Cursor:  resp.Cursor,
			HasMore: resp.HasMore,
		}, nil
	}
	return paginate.NewPager(c.mode, 0, fetch, func(cm *model.Comment) { cm.Bind(c) })
}

// UserFeed returns a pager over a user's posted videos, newest first.
// The post feed is seeded with the current time in milliseconds; the
// server pages backwards from there.
func (c *Client) UserFeed(secUID string) *paginate.Pager[*model.LightVideo] {
	fetch := c.itemListFetch(query.PostItemList, secUID, true)
	return paginate.NewPager(c.mode, time.Now().UnixMilli(), fetch, func(v *model.LightVideo) { v.Bind(c) })
}

// ChallengeFeed returns a pager over the videos posted under one
// challenge.
func (c *Client) ChallengeFeed(challengeID int64) *paginate.Pager[*model.LightVideo] {
	fetch := c.itemListFetch(query.ChallengeItemList, strconv.FormatInt(challengeID, 10), false)
	return paginate.NewPager(c.mode, 0, fetch, func(v *model.LightVideo) { v.Bind(c) })
}

// RelatedVideos returns a pager over the videos the site recommends
// next to one video.
func (c *Client) RelatedVideos(itemID int64) *paginate.Pager[*model.LightVideo] {
	fetch := c.itemListFetch(query.RelatedItemList, strconv.FormatInt(itemID, 10), false)
	return paginate.NewPager(c.mode, 0, fetch, func(v *model.LightVideo) { v.Bind(c) })
}

// itemListFetch builds the shared fetch closure of the item-list
// endpoints. withToken adds the session msToken when the browser has
// one; the post feed rejects requests without it more often than not.
func (c *Client) itemListFetch(endpoint query.Endpoint, target string, withToken bool) paginate.FetchFunc[*model.LightVideo] {
	return func(ctx context.Context, cursor int64) (paginate.Page[*model.LightVideo], error) {
		var extra url.Values
		if withToken {
			if token, ok, err := c.session.Cookie(ctx, msTokenCookie); err == nil && ok {
				extra = url.Values{msTokenCookie: {token}}
			}
		}
		resp, err := c.makeRequest(ctx, endpoint, cursor, target, extra)
		if err != nil {
			return paginate.Page[*model.LightVideo]{}, err
		}
		if err := checkStatus(resp); err != nil {
			return paginate.Page[*model.LightVideo]{}, err
		}
		return paginate.Page[*model.LightVideo]{
			Items:   resp.ItemList,
			Cursor:  resp.Cursor,
			HasMore: resp.HasMore,
		}, nil
	}
}

// Challenges returns a pager resolving each named challenge through
// the detail endpoint, one lookup per name, in order.
func (c *Client) Challenges(names []string) *paginate.KeyPager[*model.Challenge] {
	fetch := func(ctx context.Context, name string) (*model.Challenge, error) {
		return c.ChallengeByName(ctx, name)
	}
	return paginate.NewKeyPager(c.mode, names, fetch, func(ch *model.Challenge) { ch.Bind(c) })
}

// Tags returns a pager over the full challenge records of a video's
// tag list.
func (c *Client) Tags(v *model.Video) *paginate.KeyPager[*model.Challenge] {
	return c.Challenges(v.TagNames())
}

// webSearchCode is an opaque experiment blob the search endpoint
// expects verbatim.
const webSearchCode = `{"tiktok":{"client_params_x":{"search_engine":{"ies_mt_user_live_video_card_use_libra":1,"mt_search_general_user_live_card":1}},"search_server":{}}}`

// SearchVideos runs a general search and collects up to limit video
// results, following the search cursor until the server runs dry. A
// limit below zero means no limit. Non-video result rows are dropped.
func (c *Client) SearchVideos(ctx context.Context, keyword string, limit int) ([]*model.LightVideo, error) {
	extra := url.Values{
		"from_page":       {"search"},
		"web_search_code": {webSearchCode},
	}
	var (
		videos []*model.LightVideo
		offset int64
	)
	for {
		extra.Set("offset", strconv.FormatInt(offset, 10))
		resp, err := c.makeRequest(ctx, query.SearchGeneralFull, offset, keyword, extra)
		if err != nil {
			return videos, err
		}
		if err := checkStatus(resp); err != nil {
			return videos, err
		}
		for _, item := range resp.Data {
			if !item.IsVideo() {
				continue
			}
			v := item.Item
			v.Bind(c)
			videos = append(videos, &v)
		}
		if resp.SearchID != "" {
			extra.Set("search_id", resp.SearchID)
		}
		if !resp.HasMore || (limit >= 0 && len(videos) >= limit) {
			break
		}
		offset = resp.Cursor
	}
	if limit >= 0 && len(videos) > limit {
		videos = videos[:limit]
	}
	return videos, nil
}

// VideoComments drains the comment pager for one video through the
// blocking driver, up to limit comments. Convenience for callers that
// want the slice rather than the iterator.
func (c *Client) VideoComments(ctx context.Context, videoID int64, limit int) ([]*model.Comment, error) {
	if c.mode != paginate.ModeBlocking {
		return nil, fmt.Errorf("%w: client is %s", paginate.ErrIterationMode, c.mode)
	}
	return c.Comments(videoID).Iter().Collect(ctx, limit)
}
