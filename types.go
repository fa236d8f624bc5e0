package curio

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User roles. Disabled users cannot log in; moderators carry the extra
// feature-toggle powers on listings.
const (
	RoleDisabled  = 0
	RoleUser      = 1
	RoleModerator = 2
)

// User is a site account.
type User struct {
	ID        int64     `db:"user_id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	Role      int16     `db:"i_role"`
	CreatedAt time.Time `db:"created_at"`
}

// Sudo reports whether the user holds moderator powers.
func (u User) Sudo() bool {
	return u.Role >= RoleModerator
}

// Content is a row of any of the content tables. Articles and notes leave
// the book columns null.
type Content struct {
	ID         int64          `db:"id"`
	OwnerID    int64          `db:"user_id"`
	OwnerName  string         `db:"user_name"`
	Title      string         `db:"title"`
	Body       string         `db:"body"`
	HTML       string         `db:"html"`
	Brief      sql.NullString `db:"brief"`
	BriefHTML  sql.NullString `db:"brief_html"`
	Tags       sql.NullString `db:"tags"`
	URL        sql.NullString `db:"url"`
	Public     int16          `db:"i_public"`
	Type       int16          `db:"i_type"`
	Category   int16          `db:"i_category"`
	FeatureReq int16          `db:"i_good"`
	Featured   int16          `db:"good"`
	FeaturedAt sql.NullTime   `db:"good_at"`
	Click      int64          `db:"click"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  sql.NullTime   `db:"updated_at"`

	Author sql.NullString `db:"author"`
	Press  sql.NullString `db:"press"`
	File   sql.NullString `db:"file"`
}

// ContentInput carries a create/edit form submission for any content kind.
type ContentInput struct {
	Title    string
	Body     string
	Brief    string
	Tags     string
	URL      string
	Public   int16
	Type     uint8
	Category uint8
	Good     int16

	Author string
	Press  string
	File   string
}

// Check validates the input and returns human-readable problems.
func (in *ContentInput) Check() []string {
	var errs []string
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.Brief = strings.TrimSpace(in.Brief)
	in.Tags = strings.TrimSpace(in.Tags)
	in.URL = strings.TrimSpace(in.URL)
	if in.Title == "" {
		errs = append(errs, "Title must not be empty.")
	}
	if len(in.Title) > 200 {
		errs = append(errs, "Title is too long.")
	}
	if in.Body == "" {
		errs = append(errs, "Content must not be empty.")
	}
	if in.Public != 0 && in.Public != 1 {
		in.Public = 0
	}
	if in.Good != 0 && in.Good != 1 {
		in.Good = 0
	}
	return errs
}

// Message is a private note between two users, addressed by UUID.
type Message struct {
	ID        uuid.UUID `db:"id"`
	FromID    int64     `db:"user_id"`
	FromName  string    `db:"user_name"`
	ToID      int64     `db:"to_user_id"`
	ToName    string    `db:"to_user_name"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	HTML      string    `db:"html"`
	Status    int16     `db:"i_status"`
	InPublic  int16     `db:"in_public"`
	OutPublic int16     `db:"out_public"`
	CreatedAt time.Time `db:"created_at"`
}

// Message status values.
const (
	MessageUnread = 0
	MessageRead   = 1
)

// MessageInput carries a compose form submission.
type MessageInput struct {
	ToName string
	Title  string
	Body   string
}

func (in *MessageInput) Check() []string {
	var errs []string
	in.ToName = strings.TrimSpace(in.ToName)
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	if in.ToName == "" {
		errs = append(errs, "Recipient must not be empty.")
	}
	if in.Title == "" {
		errs = append(errs, "Subject must not be empty.")
	}
	if in.Body == "" {
		errs = append(errs, "Message must not be empty.")
	}
	return errs
}

// Comment is attached to a content row via (target_kind, target_id).
type Comment struct {
	ID         int64     `db:"id"`
	TargetKind string    `db:"target_kind"`
	TargetID   int64     `db:"target_id"`
	UserID     int64     `db:"user_id"`
	UserName   string    `db:"user_name"`
	Body       string    `db:"body"`
	HTML       string    `db:"html"`
	CreatedAt  time.Time `db:"created_at"`
}

// GalleryImage is an uploaded picture with its resized variants on disk.
type GalleryImage struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
	Title     string         `db:"title"`
	Brief     sql.NullString `db:"brief"`
	Tags      sql.NullString `db:"tags"`
	File      string         `db:"file"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt sql.NullTime   `db:"updated_at"`
}

// RegisterInput carries a sign-up form submission.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

func (in *RegisterInput) Check() []string {
	var errs []string
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Name == "" {
		errs = append(errs, "Name must not be empty.")
	}
	if strings.ContainsAny(in.Name, " \t/\\") {
		errs = append(errs, "Name must not contain spaces or slashes.")
	}
	if !strings.Contains(in.Email, "@") {
		errs = append(errs, "Email looks invalid.")
	}
	if len(in.Password) < 8 {
		errs = append(errs, "Password must be at least 8 characters.")
	}
	if in.Password != in.Confirm {
		errs = append(errs, "Passwords do not match.")
	}
	return errs
}
