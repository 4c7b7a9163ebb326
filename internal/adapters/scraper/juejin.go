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
	juejinHotURL  = "https://juejin.cn/hot/articles"
	juejinBaseURL = "https://juejin.cn"
	juejinMax     = 10
)

// JuejinSource harvests the Juejin hot-articles board (tech topics).
type JuejinSource struct {
	client *http.Client
	url    string
}

var _ ports.TrendSource = (*JuejinSource)(nil)

func NewJuejinSource(client *http.Client) *JuejinSource {
	if client == nil {
		client = defaultClient()
	}
	return &JuejinSource{client: client, url: juejinHotURL}
}

func (s *JuejinSource) Name() string { return "juejin" }

func (s *JuejinSource) Fetch(ctx context.Context) ([]domain.Trend, error) {
	doc, err := fetchDocument(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}

	var trends []domain.Trend
	doc.Find(".article-item-link").Each(func(_ int, sel *goquery.Selection) {
		if len(trends) >= juejinMax {
			return
		}

		title := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		if title == "" || href == "" {
			return
		}

		trends = append(trends, domain.Trend{
			Title:  title,
			Source: s.Name(),
			Score:  85 - len(trends),
			URL:    juejinBaseURL + href,
		})
	})

	return trends, nil
}
