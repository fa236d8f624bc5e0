package curio

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/curio/listing"
)

const sitemapSize = 500

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// handleSitemap lists every published row of every content kind.
func (a *App) handleSitemap(c echo.Context) error {
	base := a.Config.URL
	loc := a.Config.Location()
	urls := []sitemapURL{{Loc: BuildURL(base)}}
	for _, m := range a.modules {
		f := listing.NewFilter(listing.Published()).Size(sitemapSize)
		res, err := f.Run(c.Request().Context(), a.Store.DB(), m.src)
		if err != nil {
			return err
		}
		urls = append(urls, sitemapURL{Loc: BuildURL(base, m.kind.Key)})
		for _, row := range res.Rows {
			urls = append(urls, sitemapURL{
				Loc:     BuildURL(base, m.src.ViewURL(row.ID)),
				LastMod: listing.ShowDate(row.CreatedAt, loc),
			})
		}
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
