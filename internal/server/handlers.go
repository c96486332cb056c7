package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sirjanpreet/portfolio/internal/carousel"
	"github.com/sirjanpreet/portfolio/internal/contact"
	"github.com/sirjanpreet/portfolio/internal/content"
	"github.com/sirjanpreet/portfolio/internal/scroll"
)

const (
	noticeExpired    = "Your session expired. Please reload the page and try again."
	noticeIncomplete = "Please fill in your name, a valid email and a message."
	noticePending    = "Your message is still being sent."
)

type navView struct {
	Threshold    float64
	HeaderOffset float64
	Resting      string
	Scrolled     string
	Classes      string
}

func newNavView() navView {
	style := scroll.DefaultNavStyle
	return navView{
		Threshold:    scroll.NavThreshold,
		HeaderOffset: scroll.HeaderOffset,
		Resting:      style.Resting,
		Scrolled:     style.Scrolled,
		// the page always loads at the top
		Classes: style.Classes(scroll.Scrolled(0, scroll.NavThreshold)),
	}
}

type techView struct {
	Current content.Tech
	Index   int
	Items   []content.Tech
}

func (s *Server) newTechView(c *carousel.Carousel[content.Tech]) techView {
	return techView{Current: c.Current(), Index: c.Index(), Items: s.opts.Site.TechStack}
}

type contactView struct {
	Form       contact.Form
	Status     string
	Submitting bool
	Notice     string
}

func newContactView(snap contact.Snapshot, notice string) contactView {
	v := contactView{
		Form:       snap.Form,
		Status:     snap.Status.String(),
		Submitting: snap.Submitting,
		Notice:     notice,
	}
	// a notice is about this request, the status about an earlier one
	if notice != "" {
		v.Status = contact.Idle.String()
	}
	return v
}

func (s *Server) index(c *gin.Context) {
	sess, err := s.sessions.create()
	if err != nil {
		s.logger.Error("error creating session", zap.Error(err))
		c.String(http.StatusInternalServerError, "Something went wrong.")
		return
	}
	// no Max-Age: the cookie lives as long as the tab does
	c.SetCookie(sessionCookie, sess.id, 0, "/", "", false, true)

	c.HTML(http.StatusOK, "index.html", gin.H{
		"site":    s.opts.Site,
		"nav":     newNavView(),
		"role":    sess.roles.Current(),
		"tech":    s.newTechView(sess.tech),
		"contact": newContactView(sess.contact.Snapshot(), ""),
	})
}

func (s *Server) privacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", gin.H{
		"title":         "Privacy Policy",
		"retentionDays": int(s.opts.Retention.Hours() / 24),
	})
}

func (s *Server) session(c *gin.Context) (*session, bool) {
	id, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.sessions.get(id)
}

// roleEvents streams the next role every period for as long as the page
// keeps the connection open.
func (s *Server) roleEvents(c *gin.Context) {
	var roles *carousel.Carousel[string]
	sess, ok := s.session(c)
	if ok {
		roles = sess.roles
	} else {
		var err error
		if roles, err = carousel.New(s.opts.Site.Roles); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	updates := make(chan string, 1)
	rot := carousel.NewRotator(roles, s.opts.RolePeriod, func(role string) {
		select {
		case updates <- role:
		case <-ctx.Done():
		}
	})
	if err := rot.Start(ctx); err != nil {
		cancel()
		c.Status(http.StatusInternalServerError)
		return
	}
	defer func() {
		cancel()
		rot.Stop()
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case role := <-updates:
			// an open stream means the page is still open
			if sess != nil {
				sess.touch(s.sessions.now())
			}
			var buf bytes.Buffer
			if err := s.templates.ExecuteTemplate(&buf, "role", role); err != nil {
				s.logger.Error("error rendering role", zap.Error(err))
				return
			}
			c.SSEvent("role", strings.ReplaceAll(buf.String(), "\n", " "))
			c.Writer.Flush()
		}
	}
}

// roleFragment renders the role shown after tick timer ticks, for pages
// that poll instead of holding a stream open.
func (s *Server) roleFragment(c *gin.Context) {
	tick, err := strconv.Atoi(c.DefaultQuery("tick", "0"))
	if err != nil || tick < 0 {
		c.String(http.StatusBadRequest, "tick must be a non-negative integer")
		return
	}
	roles, err := carousel.New(s.opts.Site.Roles)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.HTML(http.StatusOK, "role", roles.At(tick))
}

func (s *Server) techStep(forward bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.session(c)
		if !ok {
			c.String(http.StatusGone, noticeExpired)
			return
		}
		if forward {
			sess.tech.Next()
		} else {
			sess.tech.Prev()
		}
		c.HTML(http.StatusOK, "tech-card", s.newTechView(sess.tech))
	}
}

func (s *Server) techSelect(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		c.String(http.StatusGone, noticeExpired)
		return
	}
	i, err := strconv.Atoi(c.Param("index"))
	if err == nil {
		_, err = sess.tech.Select(i)
	}
	if err != nil {
		c.String(http.StatusBadRequest, "no such card")
		return
	}
	c.HTML(http.StatusOK, "tech-card", s.newTechView(sess.tech))
}

type contactRequest struct {
	Name    string `form:"name" binding:"required"`
	Email   string `form:"email" binding:"required,email"`
	Message string `form:"message" binding:"required"`
}

func (s *Server) submitContact(c *gin.Context) {
	posted := contact.Form{
		Name:    c.PostForm(contact.FieldName),
		Email:   c.PostForm(contact.FieldEmail),
		Message: c.PostForm(contact.FieldMessage),
	}

	sess, ok := s.session(c)
	if !ok {
		c.HTML(http.StatusGone, "contact-form", contactView{Form: posted, Status: contact.Idle.String(), Notice: noticeExpired})
		return
	}
	flow := sess.contact

	var req contactRequest
	if err := c.ShouldBind(&req); err != nil {
		if errors.Is(flow.Fill(posted), contact.ErrPending) {
			c.HTML(http.StatusConflict, "contact-form", newContactView(flow.Snapshot(), noticePending))
			return
		}
		c.HTML(http.StatusUnprocessableEntity, "contact-form", newContactView(flow.Snapshot(), noticeIncomplete))
		return
	}

	// a visitor navigating away must not abort a message already on its way
	ctx := context.WithoutCancel(c.Request.Context())
	snap, err := flow.SubmitForm(ctx, contact.Form{Name: req.Name, Email: req.Email, Message: req.Message})
	switch {
	case err == nil, errors.Is(err, contact.ErrRelayFailed):
		c.HTML(http.StatusOK, "contact-form", newContactView(snap, ""))
	case errors.Is(err, contact.ErrPending):
		c.HTML(http.StatusConflict, "contact-form", newContactView(snap, noticePending))
	case errors.Is(err, contact.ErrIncomplete):
		c.HTML(http.StatusUnprocessableEntity, "contact-form", newContactView(snap, noticeIncomplete))
	default:
		s.logger.Error("unexpected contact error", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "contact-form", newContactView(snap, ""))
	}
}
