package handlers

import (
	"net/http"
	"path/filepath"

	"platechat-server/internal/chat"
	"platechat-server/internal/config"
	"platechat-server/internal/middleware"
	"platechat-server/internal/store"
	"platechat-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ChatHandler exposes the request/response side of the conversation engine:
// history, summaries, read state, per-side deletion, image upload and the
// websocket upgrade for live traffic.
type ChatHandler struct {
	Messages *store.ConversationStore
	Summary  *chat.SummaryBuilder
	Hub      *chat.Hub
	Service  *chat.Service
	Cfg      *config.Config
	upgrader websocket.Upgrader
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(messages *store.ConversationStore, summary *chat.SummaryBuilder, hub *chat.Hub, service *chat.Service, cfg *config.Config) *ChatHandler {
	return &ChatHandler{
		Messages: messages,
		Summary:  summary,
		Hub:      hub,
		Service:  service,
		Cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Mobile clients send no Origin header
				return origin == "" || origin == cfg.Origin
			},
		},
	}
}

// GetHistory returns the caller's view of the conversation with a partner,
// oldest first. Messages the caller soft-deleted are excluded; the partner's
// deletions do not affect the result. An optional "plate" query narrows the
// history to one contextual plate.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	partnerID := c.Param("partnerId")
	if partnerID == "" {
		utils.BadRequest(c, "Partner ID is required")
		return
	}
	scopePlate := utils.NormalizePlate(c.Query("plate"))

	messages, err := h.Messages.History(c.Request.Context(), userID, partnerID, scopePlate)
	if err != nil {
		utils.ServiceUnavailable(c, "Failed to fetch history: "+err.Error())
		return
	}

	utils.Success(c, "History fetched successfully", messages)
}

// GetConversations returns one summary row per counterpart for the caller.
func (h *ChatHandler) GetConversations(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	summaries, err := h.Summary.Conversations(c.Request.Context(), userID)
	if err != nil {
		utils.ServiceUnavailable(c, "Failed to fetch conversations: "+err.Error())
		return
	}

	utils.Success(c, "Conversations fetched successfully", summaries)
}

// MarkConversationRead marks every message from the partner to the caller as
// read. Idempotent.
func (h *ChatHandler) MarkConversationRead(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	partnerID := c.Param("partnerId")
	if err := h.Messages.MarkRead(c.Request.Context(), userID, partnerID); err != nil {
		utils.ServiceUnavailable(c, "Failed to mark conversation read: "+err.Error())
		return
	}

	utils.Success(c, "Conversation marked as read", nil)
}

// DeleteConversation hides the conversation with a partner from the caller's
// side only. The partner keeps their view.
func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	partnerID := c.Param("partnerId")
	if err := h.Messages.HideForSide(c.Request.Context(), userID, partnerID); err != nil {
		utils.ServiceUnavailable(c, "Failed to delete conversation: "+err.Error())
		return
	}

	utils.Success(c, "Conversation deleted", nil)
}

// UploadImage stores a chat image and returns its opaque reference. The chat
// engine only echoes this reference; it never interprets the content.
func (h *ChatHandler) UploadImage(c *gin.Context) {
	if _, exists := middleware.GetUserIDFromContext(c); !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		utils.BadRequest(c, "No image uploaded")
		return
	}

	filename := uuid.New().String() + filepath.Ext(file.Filename)
	dst := filepath.Join(h.Cfg.UploadDir, filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		utils.InternalServerError(c, "Failed to store image: "+err.Error())
		return
	}

	utils.Success(c, "Image uploaded", gin.H{"imageUrl": "/uploads/" + filename})
}

// ServeWS upgrades the connection to a websocket session and registers it
// with the hub.
func (h *ChatHandler) ServeWS(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := chat.NewClient(h.Hub, h.Service, conn, userID)
	h.Hub.Attach(client)
	client.Start()
}
