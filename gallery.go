package curio

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/eringen/curio/apperr"
	"github.com/eringen/curio/listing"
	"github.com/eringen/curio/views"
)

const (
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

// ListImages returns one page of gallery pictures, newest first. A zero
// userID lists everyone's.
func (s *Store) ListImages(ctx context.Context, userID int64, page, size int) (int64, []GalleryImage, error) {
	where, args := "", []interface{}{}
	if userID != 0 {
		where = " WHERE user_id = $1"
		args = append(args, userID)
	}
	var total int64
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM gallery_image"+where, args...); err != nil {
		return 0, nil, apperr.QueryFailed(fmt.Errorf("count images: %w", err))
	}
	if page < 1 {
		page = 1
	}
	query := fmt.Sprintf(`SELECT id, user_id, title, brief, tags, file, created_at, updated_at
        FROM gallery_image%s ORDER BY id DESC LIMIT %d OFFSET %d`, where, size, (page-1)*size)
	var out []GalleryImage
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return 0, nil, apperr.QueryFailed(fmt.Errorf("list images: %w", err))
	}
	return total, out, nil
}

// GetImage fetches one gallery picture.
func (s *Store) GetImage(ctx context.Context, id int64) (*GalleryImage, error) {
	const query = `SELECT id, user_id, title, brief, tags, file, created_at, updated_at
        FROM gallery_image WHERE id = $1`
	var img GalleryImage
	if err := s.db.GetContext(ctx, &img, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.QueryFailed(fmt.Errorf("get image %d: %w", id, err))
	}
	return &img, nil
}

// InsertImage stores picture metadata after its files hit the disk.
func (s *Store) InsertImage(ctx context.Context, img GalleryImage) (int64, error) {
	const query = `INSERT INTO gallery_image (user_id, title, brief, tags, file)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int64
	err := s.db.GetContext(ctx, &id, query, img.UserID, img.Title, img.Brief, img.Tags, img.File)
	if err != nil {
		return 0, apperr.QueryFailed(fmt.Errorf("insert image: %w", err))
	}
	return id, nil
}

// UpdateImage rewrites picture metadata, enforcing ownership unless sudo.
func (s *Store) UpdateImage(ctx context.Context, img GalleryImage, sudo bool) error {
	query := `UPDATE gallery_image SET title = $1, brief = $2, tags = $3, updated_at = $4
        WHERE id = $5 AND user_id = $6`
	args := []interface{}{img.Title, img.Brief, img.Tags, time.Now(), img.ID, img.UserID}
	if sudo {
		query = `UPDATE gallery_image SET title = $1, brief = $2, tags = $3, updated_at = $4
        WHERE id = $5`
		args = args[:5]
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.QueryFailed(fmt.Errorf("update image %d: %w", img.ID, err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrForbidden
	}
	return nil
}

// DeleteImage removes picture metadata, enforcing ownership unless sudo.
func (s *Store) DeleteImage(ctx context.Context, id, userID int64, sudo bool) error {
	query := "DELETE FROM gallery_image WHERE id = $1 AND user_id = $2"
	args := []interface{}{id, userID}
	if sudo {
		query = "DELETE FROM gallery_image WHERE id = $1"
		args = args[:1]
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.QueryFailed(fmt.Errorf("delete image %d: %w", id, err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrForbidden
	}
	return nil
}

// processImage decodes an upload and produces one JPEG per configured
// size, each capped at the spec's width.
func processImage(src io.Reader, specs []ResizeSpec) (map[string][]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	out := make(map[string][]byte, len(specs))
	for _, spec := range specs {
		scaled := img
		bounds := img.Bounds()
		w, h := bounds.Dx(), bounds.Dy()
		if w > spec.Width {
			newH := h * spec.Width / w
			dst := image.NewRGBA(image.Rect(0, 0, spec.Width, newH))
			draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
			scaled = dst
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		out[spec.Prefix] = buf.Bytes()
	}
	return out, nil
}

// imageFileName derives a unique on-disk name from the title.
func imageFileName(title string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "picture"
	}
	return fmt.Sprintf("%s-%d.jpg", slug, time.Now().UnixNano())
}

func (a *App) setupGalleryRoutes() {
	a.Echo.GET("/gallery", a.galleryPub)
	g := a.Echo.Group("/my/gallery", requireLogin)
	g.GET("", a.galleryMy)
	g.GET("/add", a.galleryUploadForm)
	g.POST("/add", a.galleryUpload)
	g.GET("/edit/:id", a.galleryEditForm)
	g.POST("/edit/:id", a.galleryEdit)
	g.GET("/rm/:id", a.galleryRemove)
}

func (a *App) galleryItems(c echo.Context, imgs []GalleryImage, manage bool) []views.GalleryItem {
	u, _ := CurrentUser(c)
	pub := a.Config.Gallery.PublicURL
	items := make([]views.GalleryItem, 0, len(imgs))
	for _, img := range imgs {
		it := views.GalleryItem{
			Title:    img.Title,
			ThumbURL: fmt.Sprintf("%s/s-%s", pub, img.File),
			FullURL:  fmt.Sprintf("%s/m-%s", pub, img.File),
		}
		if img.Brief.Valid {
			it.Brief = img.Brief.String
		}
		if manage && (img.UserID == u.ID || u.Sudo()) {
			it.EditTo = fmt.Sprintf("/my/gallery/edit/%d", img.ID)
			it.DeleteTo = fmt.Sprintf("/my/gallery/rm/%d", img.ID)
		}
		items = append(items, it)
	}
	return items
}

func (a *App) galleryPub(c echo.Context) error {
	page := queryPage(c)
	size := a.Config.Gallery.PageSize
	total, imgs, err := a.Store.ListImages(c.Request().Context(), 0, page, size)
	if err != nil {
		return err
	}
	body := views.GalleryGrid("Gallery", a.galleryItems(c, imgs, false),
		listing.Pager("/gallery", total, size, page), "")
	return Render(c, views.Page(a.pageMeta(c, "Gallery"), body))
}

func (a *App) galleryMy(c echo.Context) error {
	u, _ := CurrentUser(c)
	page := queryPage(c)
	size := a.Config.Gallery.PageSize
	total, imgs, err := a.Store.ListImages(c.Request().Context(), u.ID, page, size)
	if err != nil {
		return err
	}
	body := views.GalleryGrid("My pictures", a.galleryItems(c, imgs, true),
		listing.Pager("/my/gallery", total, size, page), "/my/gallery/add")
	return Render(c, views.Page(a.pageMeta(c, "My pictures"), body))
}

func (a *App) galleryUploadForm(c echo.Context) error {
	body := views.GalleryUploadForm(CsrfToken(c), nil)
	return Render(c, views.Page(a.pageMeta(c, "Upload picture"), body))
}

func (a *App) galleryUpload(c echo.Context) error {
	u, _ := CurrentUser(c)
	title := strings.TrimSpace(c.FormValue("title"))

	fail := func(msg string) error {
		body := views.GalleryUploadForm(CsrfToken(c), []string{msg})
		return RenderStatus(c, http.StatusUnprocessableEntity,
			views.Page(a.pageMeta(c, "Upload picture"), body))
	}

	if title == "" {
		return fail("Title must not be empty.")
	}
	file, err := c.FormFile("image")
	if err != nil {
		return fail("No image file provided.")
	}
	if file.Size > maxUploadSize {
		return fail("File too large (max 10MB).")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	variants, err := processImage(src, a.Config.Gallery.Sizes)
	if err != nil {
		return fail("That file does not look like an image.")
	}
	name := imageFileName(title)
	dir := a.Config.Gallery.UploadDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	for prefix, data := range variants {
		path := filepath.Join(dir, prefix+"-"+name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
	}
	img := GalleryImage{
		UserID: u.ID,
		Title:  title,
		Brief:  nullStr(strings.TrimSpace(c.FormValue("brief"))),
		Tags:   nullStr(strings.TrimSpace(c.FormValue("tags"))),
		File:   name,
	}
	id, err := a.Store.InsertImage(c.Request().Context(), img)
	if err != nil {
		return err
	}
	a.Log.Info("picture uploaded", zap.Int64("id", id), zap.Int64("user", u.ID), zap.String("file", name))
	return redirect(c, "/my/gallery")
}

// ownedImage loads a picture and checks the caller may manage it.
func (a *App) ownedImage(c echo.Context) (*GalleryImage, error) {
	u, _ := CurrentUser(c)
	id, err := paramInt64(c, "id")
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	img, err := a.Store.GetImage(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if img.UserID != u.ID && !u.Sudo() {
		return nil, apperr.ErrForbidden
	}
	return img, nil
}

func (a *App) galleryEditForm(c echo.Context) error {
	img, err := a.ownedImage(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("/my/gallery/edit/%d", img.ID)
	body := views.GalleryEditForm(action, CsrfToken(c), nil,
		img.Title, img.Brief.String, img.Tags.String)
	return Render(c, views.Page(a.pageMeta(c, "Edit picture"), body))
}

func (a *App) galleryEdit(c echo.Context) error {
	u, _ := CurrentUser(c)
	img, err := a.ownedImage(c)
	if err != nil {
		return err
	}
	title := strings.TrimSpace(c.FormValue("title"))
	brief := strings.TrimSpace(c.FormValue("brief"))
	tags := strings.TrimSpace(c.FormValue("tags"))
	action := fmt.Sprintf("/my/gallery/edit/%d", img.ID)
	if title == "" {
		body := views.GalleryEditForm(action, CsrfToken(c),
			[]string{"Title must not be empty."}, title, brief, tags)
		return RenderStatus(c, http.StatusUnprocessableEntity,
			views.Page(a.pageMeta(c, "Edit picture"), body))
	}
	img.Title = title
	img.Brief = nullStr(brief)
	img.Tags = nullStr(tags)
	if err := a.Store.UpdateImage(c.Request().Context(), *img, u.Sudo()); err != nil {
		return err
	}
	return redirect(c, "/my/gallery")
}

func (a *App) galleryRemove(c echo.Context) error {
	u, _ := CurrentUser(c)
	id, err := paramInt64(c, "id")
	if err != nil {
		return apperr.ErrNotFound
	}
	img, err := a.Store.GetImage(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := a.Store.DeleteImage(c.Request().Context(), id, u.ID, u.Sudo()); err != nil {
		return err
	}
	for _, spec := range a.Config.Gallery.Sizes {
		_ = os.Remove(filepath.Join(a.Config.Gallery.UploadDir, spec.Prefix+"-"+img.File))
	}
	return redirect(c, "/my/gallery")
}
