package handlers

import (
	"platechat-server/internal/middleware"
	"platechat-server/internal/store"
	"platechat-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// BlockHandler handles block-relationship management for the current user.
type BlockHandler struct {
	Blocks   *store.BlockStore
	Registry *store.Registry
}

// NewBlockHandler creates a new BlockHandler.
func NewBlockHandler(blocks *store.BlockStore, registry *store.Registry) *BlockHandler {
	return &BlockHandler{Blocks: blocks, Registry: registry}
}

// BlockUser creates a block edge from the caller to the target user.
// Blocking an already-blocked user succeeds without effect.
func (h *BlockHandler) BlockUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	targetID := c.Param("userId")
	if targetID == "" || targetID == userID {
		utils.BadRequest(c, "Invalid user to block")
		return
	}
	ctx := c.Request.Context()

	known, err := h.Registry.UserExists(ctx, targetID)
	if err != nil {
		utils.ServiceUnavailable(c, "Database error: "+err.Error())
		return
	}
	if !known {
		utils.NotFound(c, "User not found")
		return
	}

	if err := h.Blocks.Block(ctx, userID, targetID); err != nil {
		utils.ServiceUnavailable(c, "Failed to block user: "+err.Error())
		return
	}

	utils.Success(c, "User blocked", nil)
}

// UnblockUser removes the caller's block edge to the target user. Unblocking
// a user who was never blocked succeeds without effect.
func (h *BlockHandler) UnblockUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	targetID := c.Param("userId")
	if err := h.Blocks.Unblock(c.Request.Context(), userID, targetID); err != nil {
		utils.ServiceUnavailable(c, "Failed to unblock user: "+err.Error())
		return
	}

	utils.Success(c, "User unblocked", nil)
}

// ListBlocked returns the ids of all users the caller has blocked.
func (h *BlockHandler) ListBlocked(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	blocked, err := h.Blocks.ListBlockedBy(c.Request.Context(), userID)
	if err != nil {
		utils.ServiceUnavailable(c, "Failed to list blocked users: "+err.Error())
		return
	}

	utils.Success(c, "Blocked users fetched successfully", blocked)
}

// BlockStatus reports whether messaging between the caller and the target is
// forbidden in either direction.
func (h *BlockHandler) BlockStatus(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	targetID := c.Param("userId")
	blocked, err := h.Blocks.IsBlocked(c.Request.Context(), userID, targetID)
	if err != nil {
		utils.ServiceUnavailable(c, "Failed to check block status: "+err.Error())
		return
	}

	utils.Success(c, "Block status fetched", gin.H{"blocked": blocked})
}
