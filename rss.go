package curio

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/curio/listing"
)

const feedSize = 50

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// handleFeed serves the published-articles RSS feed.
func (a *App) handleFeed(c echo.Context) error {
	src := a.articles.src
	f := listing.NewFilter(listing.Published()).Size(feedSize)
	res, err := f.Run(c.Request().Context(), a.Store.DB(), src)
	if err != nil {
		return err
	}
	base := a.Config.URL
	items := make([]rssItem, 0, len(res.Rows))
	for _, row := range res.Rows {
		itemURL := BuildURL(base, src.ViewURL(row.ID))
		desc := ""
		if row.Excerpt.Valid {
			desc = row.Excerpt.String
		}
		items = append(items, rssItem{
			Title:       row.Title,
			Link:        itemURL,
			Description: desc,
			PubDate:     row.CreatedAt.Format(time.RFC1123Z),
			GUID:        itemURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
