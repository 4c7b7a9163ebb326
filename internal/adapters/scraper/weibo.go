package scraper

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"trendpress/internal/domain"
	"trendpress/internal/ports"
)

const (
	weiboHotURL  = "https://s.weibo.com/top/summary"
	weiboBaseURL = "https://s.weibo.com"
	weiboMax     = 15
)

// WeiboSource harvests the Weibo hot-search summary board.
type WeiboSource struct {
	client *http.Client
	url    string
}

var _ ports.TrendSource = (*WeiboSource)(nil)

func NewWeiboSource(client *http.Client) *WeiboSource {
	if client == nil {
		client = defaultClient()
	}
	return &WeiboSource{client: client, url: weiboHotURL}
}

func (s *WeiboSource) Name() string { return "weibo" }

func (s *WeiboSource) Fetch(ctx context.Context) ([]domain.Trend, error) {
	doc, err := fetchDocument(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}

	var trends []domain.Trend
	doc.Find("td.td-02 a").Each(func(i int, sel *goquery.Selection) {
		// The first entry is the pinned promotion slot, not a trend.
		if i == 0 || len(trends) >= weiboMax {
			return
		}

		title := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		if len([]rune(title)) <= 2 || href == "" {
			return
		}

		trends = append(trends, domain.Trend{
			Title:  title,
			Source: s.Name(),
			Score:  90 - len(trends),
			URL:    weiboBaseURL + href,
		})
	})

	return trends, nil
}
