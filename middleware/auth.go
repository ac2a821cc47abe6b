package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attendly_console/logger"
	"attendly_console/models"
	"attendly_console/session"
)

// Context keys set by the guard.
const (
	UserKey   = "user"
	TokenKey  = "token"
	StatusKey = "attendanceStatus"
)

const (
	LoginPath      = "/"
	AttendancePath = "/attendance"
)

type SessionReader interface {
	GetToken(ctx context.Context) (string, error)
	GetUser(ctx context.Context) (*models.User, error)
}

type StatusFetcher interface {
	StatusToday(ctx context.Context) (*models.AttendanceStatus, error)
}

// GuardState is the outcome of a guard check. There is no checking state:
// Check blocks on the status fetch, so the request renders nothing until it
// settles in one of these.
type GuardState string

const (
	StateUnauthenticated GuardState = "unauthenticated"
	StateAuthorized      GuardState = "authorized"
)

// Decision is the outcome of one guard check. Redirect is empty when the
// page may render.
type Decision struct {
	State     GuardState
	Redirect  string
	User      models.User
	Token     string
	Status    *models.AttendanceStatus
	StatusErr error
}

type Page string

const (
	PageAttendance   Page = "attendance"
	PageRegisterFace Page = "register_face"
	PageOther        Page = "other"
)

// PageOf classifies a request path. Sub-routes belong to their page, so
// actions posted from the attendance page count as the attendance page.
func PageOf(path string) Page {
	switch {
	case path == "/attendance/register" || strings.HasPrefix(path, "/attendance/register/"):
		return PageRegisterFace
	case strings.HasPrefix(path, "/attendance/records"):
		return PageOther
	case path == AttendancePath || strings.HasPrefix(path, AttendancePath+"/"):
		return PageAttendance
	default:
		return PageOther
	}
}

// RouteGuard runs before every protected page. Without a token it sends the
// operator to the login page. With one it asks for today's attendance status
// and sends a registered user who has not marked attendance yet to the
// attendance page. If the status cannot be fetched the page renders anyway.
type RouteGuard struct {
	sessions SessionReader
	status   StatusFetcher
	log      *logrus.Entry
}

func NewRouteGuard(sessions SessionReader, status StatusFetcher) *RouteGuard {
	return &RouteGuard{
		sessions: sessions,
		status:   status,
		log:      logger.For("guard"),
	}
}

func (g *RouteGuard) Check(ctx context.Context, path string) Decision {
	token, err := g.sessions.GetToken(ctx)
	if err != nil {
		g.log.WithError(err).Error("Error reading session")
	}
	if token == "" {
		return Decision{State: StateUnauthenticated, Redirect: LoginPath}
	}

	d := Decision{State: StateAuthorized, Token: token, User: g.currentUser(ctx, token)}

	status, err := g.status.StatusToday(ctx)
	if err != nil {
		g.log.WithError(err).WithField("path", path).Warn("Attendance status check failed, letting the page render")
		d.StatusErr = err
		return d
	}
	d.Status = status

	page := PageOf(path)
	if status.PendingToday() && page != PageAttendance && page != PageRegisterFace {
		d.Redirect = AttendancePath
	}
	return d
}

// currentUser prefers the stored profile and falls back to the token's
// claims. The id is taken from the claims when the profile lacks one.
func (g *RouteGuard) currentUser(ctx context.Context, token string) models.User {
	var user models.User
	if stored, err := g.sessions.GetUser(ctx); err == nil && stored != nil {
		user = *stored
	}
	if user.ID > 0 && user.Role != "" {
		return user
	}

	claims, err := session.ParseClaims(token)
	if err != nil {
		g.log.WithError(err).Debug("Token claims unreadable")
		return user
	}
	if user.ID == 0 {
		user.ID = claims.UserID
	}
	if user.Role == "" {
		user.Role = claims.Role
	}
	if user.Name == "" {
		user.Name = claims.Name
	}
	if user.Email == "" {
		user.Email = claims.Subject
	}
	return user
}

// Protect is the guard as gin middleware.
func (g *RouteGuard) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		d := g.Check(c.Request.Context(), c.Request.URL.Path)
		if d.Redirect != "" {
			g.log.WithFields(logrus.Fields{
				"path":  c.Request.URL.Path,
				"to":    d.Redirect,
				"state": d.State,
			}).Debug("Redirecting")
			c.Redirect(http.StatusFound, d.Redirect)
			c.Abort()
			return
		}

		c.Set(UserKey, d.User)
		c.Set(TokenKey, d.Token)
		if d.Status != nil {
			c.Set(StatusKey, d.Status)
		}
		c.Next()
	}
}

// CurrentUser returns the user the guard placed in the context.
func CurrentUser(c *gin.Context) models.User {
	if v, ok := c.Get(UserKey); ok {
		if user, ok := v.(models.User); ok {
			return user
		}
	}
	return models.User{}
}

// RequireRole rejects users whose role is not listed.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this page"})
		c.Abort()
	}
}
