// Package transport connects the bot to a chat gateway: an authenticated
// webhook for inbound messages and an HTTP client for replies.
package transport

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"keubot/bot"
	"keubot/pkg/geo"
	"keubot/pkg/media"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxUpload bounds multipart media uploads.
const MaxUpload = 5 << 20

// Handler consumes inbound messages.
type Handler interface {
	Handle(ctx context.Context, m bot.Message)
}

// Options configure NewRouter.
type Options struct {
	Handler  Handler
	Secret   []byte
	Sessions interface{ CountActive() int }
	Log      *zap.Logger
}

type server struct {
	handler  Handler
	sessions interface{ CountActive() int }
	log      *zap.Logger
}

// NewRouter builds the gin engine serving the webhook.
func NewRouter(o Options) *gin.Engine {
	s := &server{handler: o.Handler, sessions: o.Sessions, log: o.Log}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	r.GET("/healthz", s.health)

	hooks := r.Group("/webhook")
	hooks.Use(authMiddleware(o.Secret))
	hooks.POST("/messages", s.message)
	hooks.POST("/uploads", s.upload)
	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

func (s *server) health(c *gin.Context) {
	active := 0
	if s.sessions != nil {
		active = s.sessions.CountActive()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": active})
}

type inboundImage struct {
	URL       string `json:"url" binding:"omitempty,url"`
	MimeType  string `json:"mime_type"`
	Data      string `json:"data" binding:"omitempty,base64"`
	SpoolFile string `json:"spool_file"`
}

type inboundLocation struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

type inboundMessage struct {
	ID       string           `json:"id"`
	Sender   string           `json:"sender" binding:"required"`
	Chat     string           `json:"chat"`
	PushName string           `json:"push_name"`
	Text     string           `json:"text"`
	Image    *inboundImage    `json:"image"`
	Location *inboundLocation `json:"location"`
}

func (in inboundMessage) toMessage() (bot.Message, error) {
	m := bot.Message{
		ID:       in.ID,
		Sender:   in.Sender,
		Chat:     in.Chat,
		PushName: in.PushName,
		Text:     in.Text,
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Chat == "" {
		m.Chat = m.Sender
	}
	if in.Image != nil {
		ref := &media.Ref{MessageID: m.ID, MimeType: in.Image.MimeType, URL: in.Image.URL, SpoolFile: in.Image.SpoolFile}
		if in.Image.Data != "" {
			data, err := base64.StdEncoding.DecodeString(in.Image.Data)
			if err != nil {
				return m, err
			}
			ref.Data = data
		}
		m.Image = ref
	}
	if in.Location != nil {
		m.Location = &geo.Point{Latitude: *in.Location.Latitude, Longitude: *in.Location.Longitude}
	}
	return m, nil
}

func (s *server) message(c *gin.Context) {
	var in inboundMessage
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := in.toMessage()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image data is not base64"})
		return
	}
	s.dispatch(c, m)
}

// upload accepts a multipart image with the sender and optional caption as
// form fields, for gateways that cannot inline media.
func (s *server) upload(c *gin.Context) {
	sender := c.PostForm("sender")
	if sender == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sender missing"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > MaxUpload {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "open failed"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxUpload))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read failed"})
		return
	}
	in := inboundMessage{
		ID:       c.PostForm("id"),
		Sender:   sender,
		Chat:     c.PostForm("chat"),
		PushName: c.PostForm("push_name"),
		Text:     c.PostForm("caption"),
	}
	m, err := in.toMessage()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m.Image = &media.Ref{MessageID: m.ID, MimeType: file.Header.Get("Content-Type"), Data: data}
	s.dispatch(c, m)
}

// dispatch handles m before answering so a gateway that waits for the
// response delivers one user's messages in order.
func (s *server) dispatch(c *gin.Context, m bot.Message) {
	gateway, _ := c.Get(ctxGateway)
	s.log.Debug("inbound message",
		zap.Any("gateway", gateway),
		zap.String("id", m.ID),
		zap.String("chat", m.Chat),
		zap.Bool("image", m.Image != nil),
		zap.Bool("location", m.Location != nil))
	s.handler.Handle(context.WithoutCancel(c.Request.Context()), m)
	c.JSON(http.StatusOK, gin.H{"status": "processed", "id": m.ID})
}
