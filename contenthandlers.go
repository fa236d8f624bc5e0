package curio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/curio/apperr"
	"github.com/eringen/curio/listing"
	"github.com/eringen/curio/views"
)

// featuredWidgetSize is the row count of the featured sidebar on public lists.
const featuredWidgetSize = 5

// contentModule wires one content kind into the router. Articles, notes
// and books each get an instance.
type contentModule struct {
	app  *App
	kind ContentKind
	src  listing.Source
}

func newContentModule(a *App, k ContentKind) *contentModule {
	return &contentModule{app: a, kind: k, src: k.Source()}
}

func (m *contentModule) register(e *echo.Echo) {
	k := m.kind.Key
	e.GET("/"+k, m.listPub)
	e.GET("/"+k+"/cat/:cat", m.listPubCat)
	e.GET("/"+k+"/cat/:cat/:tid", m.listPubCatType)
	e.GET("/"+k+"/search", m.searchPub)
	e.GET("/"+k+"/view/:id", m.view)

	my := e.Group("/my/"+k, requireLogin)
	my.GET("", m.listMy)
	my.GET("/cat/:cat", m.listMyCat)
	my.GET("/cat/:cat/:tid", m.listMyCatType)
	my.GET("/search", m.searchMy)
	my.GET("/add", m.addForm)
	my.POST("/add", m.addSubmit)
	my.GET("/edit/:id", m.editForm)
	my.POST("/edit/:id", m.editSubmit)
	my.GET("/rm/:id", m.remove)
	my.GET("/good/:id", m.feature)
	my.GET("/good/cancel/:id", m.unfeature)
}

func (m *contentModule) listContext(c echo.Context, admin bool, pagerBase string, cat, typ uint8) listing.Context {
	u, _ := CurrentUser(c)
	return listing.Context{
		IsAdmin:            admin || u.Sudo(),
		IsSudo:             u.Sudo(),
		ShowSearchBar:      true,
		ShowCategoryLabels: true,
		PagerBase:          pagerBase,
		Categories:         m.kind.Categories,
		Types:              m.kind.Types,
		CurrentCat:         cat,
		CurrentType:        typ,
		Loc:                m.app.Config.Location(),
	}
}

// withFeatured lays the main list next to the featured sidebar.
func withFeatured(main, side templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="row"><div class="col-lg-9">`); err != nil {
			return err
		}
		if err := main.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</div><div class="col-lg-3">`); err != nil {
			return err
		}
		if err := side.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div></div>`)
		return err
	})
}

func (m *contentModule) featuredWidget(c echo.Context) templ.Component {
	f := listing.NewFilter(listing.Published()).Featured(1).Size(featuredWidgetSize)
	res, err := f.Run(c.Request().Context(), m.app.Store.DB(), m.src)
	if err != nil {
		m.app.Log.Warn("featured widget", zap.String("kind", m.kind.Key), zap.Error(err))
		res = listing.Result{}
	}
	rc := m.listContext(c, false, "", 0, 0)
	rc.Mode = listing.ModeFeatured
	rc.ShowSearchBar = false
	return listing.Render(f, res, m.src, rc)
}

func (m *contentModule) renderPublicList(c echo.Context, f listing.Filter, pagerBase string, cat, typ uint8) error {
	res, err := f.Run(c.Request().Context(), m.app.Store.DB(), m.src)
	if err != nil {
		return err
	}
	rc := m.listContext(c, false, pagerBase, cat, typ)
	body := withFeatured(listing.Render(f, res, m.src, rc), m.featuredWidget(c))
	return Render(c, views.Page(m.app.pageMeta(c, m.kind.Label), body))
}

func (m *contentModule) listPub(c echo.Context) error {
	f := listing.NewFilter(listing.Published()).Size(m.kind.PageSize).Page(queryPage(c))
	return m.renderPublicList(c, f, "/"+m.kind.Key, 0, 0)
}

func (m *contentModule) listPubCat(c echo.Context) error {
	catPath := c.Param("cat")
	cat, ok := m.kind.Categories.ID(catPath)
	if !ok {
		return apperr.ErrNotFound
	}
	f := listing.NewFilter(listing.Published()).Category(cat).
		Size(m.kind.PageSize).Page(queryPage(c))
	base := fmt.Sprintf("/%s/cat/%s", m.kind.Key, catPath)
	return m.renderPublicList(c, f, base, cat, 0)
}

func (m *contentModule) listPubCatType(c echo.Context) error {
	catPath := c.Param("cat")
	cat, ok := m.kind.Categories.ID(catPath)
	if !ok {
		return apperr.ErrNotFound
	}
	typ, ok := m.kind.Types.ID(c.Param("tid"))
	if !ok {
		return apperr.ErrNotFound
	}
	f := listing.NewFilter(listing.Published()).Category(cat).Type(typ).
		Size(m.kind.PageSize).Page(queryPage(c))
	base := fmt.Sprintf("/%s/cat/%s/%s", m.kind.Key, catPath, c.Param("tid"))
	return m.renderPublicList(c, f, base, cat, typ)
}

func (m *contentModule) searchPub(c echo.Context) error {
	key := strings.TrimSpace(c.QueryParam("key"))
	if key == "" {
		return redirect(c, "/"+m.kind.Key)
	}
	f := listing.NewFilter(listing.Published()).Search(listing.FullText(key)).
		Size(m.kind.PageSize).Page(queryPage(c))
	base := fmt.Sprintf("/%s/search?key=%s", m.kind.Key, url.QueryEscape(key))
	return m.renderPublicList(c, f, base, 0, 0)
}

func (m *contentModule) renderMyList(c echo.Context, f listing.Filter, pagerBase string, cat, typ uint8) error {
	res, err := f.Run(c.Request().Context(), m.app.Store.DB(), m.src)
	if err != nil {
		return err
	}
	rc := m.listContext(c, true, pagerBase, cat, typ)
	body := listing.Render(f, res, m.src, rc)
	return Render(c, views.Page(m.app.pageMeta(c, "My "+m.kind.Label), body))
}

func (m *contentModule) listMy(c echo.Context) error {
	u, _ := CurrentUser(c)
	f := listing.NewFilter(listing.OwnedBy(u.ID)).Size(m.kind.PageSize).Page(queryPage(c))
	return m.renderMyList(c, f, "/my/"+m.kind.Key, 0, 0)
}

func (m *contentModule) listMyCat(c echo.Context) error {
	u, _ := CurrentUser(c)
	catPath := c.Param("cat")
	cat, ok := m.kind.Categories.ID(catPath)
	if !ok {
		return apperr.ErrNotFound
	}
	f := listing.NewFilter(listing.OwnedBy(u.ID)).Category(cat).
		Size(m.kind.PageSize).Page(queryPage(c))
	base := fmt.Sprintf("/my/%s/cat/%s", m.kind.Key, catPath)
	return m.renderMyList(c, f, base, cat, 0)
}

func (m *contentModule) listMyCatType(c echo.Context) error {
	u, _ := CurrentUser(c)
	catPath := c.Param("cat")
	cat, ok := m.kind.Categories.ID(catPath)
	if !ok {
		return apperr.ErrNotFound
	}
	typ, ok := m.kind.Types.ID(c.Param("tid"))
	if !ok {
		return apperr.ErrNotFound
	}
	f := listing.NewFilter(listing.OwnedBy(u.ID)).Category(cat).Type(typ).
		Size(m.kind.PageSize).Page(queryPage(c))
	base := fmt.Sprintf("/my/%s/cat/%s/%s", m.kind.Key, catPath, c.Param("tid"))
	return m.renderMyList(c, f, base, cat, typ)
}

func (m *contentModule) searchMy(c echo.Context) error {
	u, _ := CurrentUser(c)
	key := strings.TrimSpace(c.QueryParam("key"))
	if key == "" {
		return redirect(c, "/my/"+m.kind.Key)
	}
	f := listing.NewFilter(listing.OwnedBy(u.ID)).Search(listing.TitleSubstring(key)).
		Size(m.kind.PageSize).Page(queryPage(c))
	base := fmt.Sprintf("/my/%s/search?key=%s", m.kind.Key, url.QueryEscape(key))
	return m.renderMyList(c, f, base, 0, 0)
}

func (m *contentModule) view(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return apperr.ErrNotFound
	}
	ctx := c.Request().Context()
	content, err := m.app.Store.GetContent(ctx, m.kind, id)
	if err != nil {
		return err
	}
	u, loggedIn := CurrentUser(c)
	canManage := loggedIn && (u.ID == content.OwnerID || u.Sudo())
	if content.Public != 1 && !canManage {
		// Drafts stay invisible to everyone but the owner and moderators.
		return apperr.ErrNotFound
	}
	if err := m.app.Store.BumpClick(ctx, m.kind, id); err != nil {
		m.app.Log.Warn("bump click", zap.String("kind", m.kind.Key), zap.Int64("id", id), zap.Error(err))
	}
	comments, err := m.app.Store.ListComments(ctx, m.kind.Key, id)
	if err != nil {
		return err
	}
	loc := m.app.Config.Location()
	page := views.ContentPage{
		Title:     content.Title,
		HTML:      content.HTML,
		OwnerName: content.OwnerName,
		Date:      views.ShowDate(content.CreatedAt, loc),
		Click:     content.Click + 1,
		Draft:     content.Public != 1,
		CanEdit:   canManage,
		EditURL:   m.src.EditURL(content.ID),
		CSRF:      CsrfToken(c),
	}
	if content.Tags.Valid && content.Tags.String != "" {
		page.Tags = FilterEmpty(strings.Split(content.Tags.String, ","))
	}
	if content.Category >= 0 && content.Category <= 255 {
		if _, name, ok := m.kind.Categories.PathName(uint8(content.Category)); ok {
			page.Category = name
		}
	}
	if content.Author.Valid {
		page.Author = content.Author.String
	}
	if content.Press.Valid {
		page.Press = content.Press.String
	}
	if content.URL.Valid {
		page.URL = content.URL.String
	}
	if content.File.Valid {
		page.File = content.File.String
	}
	if loggedIn {
		page.CommentTo = fmt.Sprintf("/my/comment/add/%s/%d", m.kind.Key, id)
	}
	for _, cm := range comments {
		cv := views.CommentView{
			Author: cm.UserName,
			HTML:   cm.HTML,
			Date:   views.ShowDate(cm.CreatedAt, loc),
		}
		if loggedIn && (cm.UserID == u.ID || u.Sudo()) {
			cv.DeleteTo = fmt.Sprintf("/my/comment/rm/%d", cm.ID)
		}
		page.Comments = append(page.Comments, cv)
	}
	return Render(c, views.Page(m.app.pageMeta(c, content.Title), views.ContentDetail(page)))
}

func (m *contentModule) bindInput(c echo.Context) ContentInput {
	return ContentInput{
		Title:    c.FormValue("title"),
		Body:     c.FormValue("body"),
		Brief:    c.FormValue("brief"),
		Tags:     c.FormValue("tags"),
		URL:      c.FormValue("url"),
		Public:   formInt16(c, "i_public"),
		Type:     formUint8(c, "i_type"),
		Category: formUint8(c, "i_category"),
		Good:     formInt16(c, "i_good"),
		Author:   c.FormValue("author"),
		Press:    c.FormValue("press"),
		File:     c.FormValue("file"),
	}
}

func (m *contentModule) formData(heading, action string, c echo.Context) views.ContentFormData {
	return views.ContentFormData{
		Heading:    heading,
		Action:     action,
		CSRF:       CsrfToken(c),
		Categories: m.kind.Categories,
		Types:      m.kind.Types,
		IsBook:     m.kind.HasAuthor,
		HasLink:    m.kind.HasLink,
	}
}

func fillFormData(d *views.ContentFormData, in ContentInput) {
	d.Title = in.Title
	d.Body = in.Body
	d.Brief = in.Brief
	d.Tags = in.Tags
	d.URL = in.URL
	d.Public = in.Public
	d.FeatureReq = in.Good
	d.Category = in.Category
	d.Type = in.Type
	d.Author = in.Author
	d.Press = in.Press
	d.File = in.File
}

func (m *contentModule) addForm(c echo.Context) error {
	d := m.formData("New "+m.kind.Label, "/my/"+m.kind.Key+"/add", c)
	d.Category = queryUint8(c, "cat")
	d.Type = queryUint8(c, "typ")
	return Render(c, views.Page(m.app.pageMeta(c, d.Heading), views.ContentForm(d)))
}

func (m *contentModule) addSubmit(c echo.Context) error {
	u, _ := CurrentUser(c)
	in := m.bindInput(c)
	if errs := in.Check(); len(errs) > 0 {
		d := m.formData("New "+m.kind.Label, "/my/"+m.kind.Key+"/add", c)
		fillFormData(&d, in)
		d.Errors = errs
		return RenderStatus(c, http.StatusUnprocessableEntity,
			views.Page(m.app.pageMeta(c, d.Heading), views.ContentForm(d)))
	}
	html := m.app.transform.ToHTML(in.Body)
	briefHTML := ""
	if in.Brief != "" {
		briefHTML = m.app.transform.ToHTML(in.Brief)
	}
	owner := User{ID: u.ID, Name: u.Name, Role: u.Role}
	id, err := m.app.Store.InsertContent(c.Request().Context(), m.kind, owner, in, html, briefHTML)
	if err != nil {
		return err
	}
	m.app.Log.Info("content created", zap.String("kind", m.kind.Key), zap.Int64("id", id), zap.Int64("user", u.ID))
	return redirect(c, "/my/"+m.kind.Key)
}

func (m *contentModule) editForm(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return apperr.ErrNotFound
	}
	content, err := m.app.Store.GetContent(c.Request().Context(), m.kind, id)
	if err != nil {
		return err
	}
	u, _ := CurrentUser(c)
	if content.OwnerID != u.ID && !u.Sudo() {
		return apperr.ErrForbidden
	}
	d := m.formData("Edit "+m.kind.Label, fmt.Sprintf("/my/%s/edit/%d", m.kind.Key, id), c)
	in := ContentInput{
		Title:    content.Title,
		Body:     content.Body,
		Brief:    content.Brief.String,
		Tags:     content.Tags.String,
		URL:      content.URL.String,
		Public:   content.Public,
		Good:     content.FeatureReq,
		Author:   content.Author.String,
		Press:    content.Press.String,
		File:     content.File.String,
	}
	if content.Category >= 0 && content.Category <= 255 {
		in.Category = uint8(content.Category)
	}
	if content.Type >= 0 && content.Type <= 255 {
		in.Type = uint8(content.Type)
	}
	fillFormData(&d, in)
	return Render(c, views.Page(m.app.pageMeta(c, d.Heading), views.ContentForm(d)))
}

func (m *contentModule) editSubmit(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return apperr.ErrNotFound
	}
	u, _ := CurrentUser(c)
	in := m.bindInput(c)
	if errs := in.Check(); len(errs) > 0 {
		d := m.formData("Edit "+m.kind.Label, fmt.Sprintf("/my/%s/edit/%d", m.kind.Key, id), c)
		fillFormData(&d, in)
		d.Errors = errs
		return RenderStatus(c, http.StatusUnprocessableEntity,
			views.Page(m.app.pageMeta(c, d.Heading), views.ContentForm(d)))
	}
	html := m.app.transform.ToHTML(in.Body)
	briefHTML := ""
	if in.Brief != "" {
		briefHTML = m.app.transform.ToHTML(in.Brief)
	}
	owner := User{ID: u.ID, Name: u.Name, Role: u.Role}
	if err := m.app.Store.UpdateContent(c.Request().Context(), m.kind, id, owner, u.Sudo(), in, html, briefHTML); err != nil {
		return err
	}
	return redirect(c, "/my/"+m.kind.Key)
}

func (m *contentModule) remove(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return apperr.ErrNotFound
	}
	u, _ := CurrentUser(c)
	owner := User{ID: u.ID, Name: u.Name, Role: u.Role}
	if err := m.app.Store.DeleteContent(c.Request().Context(), m.kind, id, owner, u.Sudo()); err != nil {
		return err
	}
	m.app.Log.Info("content removed", zap.String("kind", m.kind.Key), zap.Int64("id", id), zap.Int64("user", u.ID))
	return redirect(c, "/my/"+m.kind.Key)
}

func (m *contentModule) feature(c echo.Context) error {
	return m.setFeatured(c, true)
}

func (m *contentModule) unfeature(c echo.Context) error {
	return m.setFeatured(c, false)
}

func (m *contentModule) setFeatured(c echo.Context, on bool) error {
	u, _ := CurrentUser(c)
	if !u.Sudo() {
		return apperr.ErrForbidden
	}
	id, err := paramInt64(c, "id")
	if err != nil {
		return apperr.ErrNotFound
	}
	if err := m.app.Store.SetFeatured(c.Request().Context(), m.kind, id, on); err != nil {
		return err
	}
	back := c.Request().Referer()
	if back == "" {
		back = "/my/" + m.kind.Key
	}
	return redirect(c, back)
}

// queryUint8 parses a taxonomy id query parameter, defaulting to 0.
func queryUint8(c echo.Context, name string) uint8 {
	var n int
	if _, err := fmt.Sscanf(c.QueryParam(name), "%d", &n); err != nil || n < 0 || n > 255 {
		return 0
	}
	return uint8(n)
}
