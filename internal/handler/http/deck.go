package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vastavikadi/BeatBRAWL/internal/service"
)

// DeckHandler 封装用户牌组相关的 HTTP 处理逻辑。
type DeckHandler struct {
	deckService *service.DeckService
}

// NewDeckHandler 创建 DeckHandler 实例。
func NewDeckHandler(deckService *service.DeckService) *DeckHandler {
	return &DeckHandler{deckService: deckService}
}

// GetDeck 返回当前用户的牌组。
func (h *DeckHandler) GetDeck(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	deck, err := h.deckService.GetDeck(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"deck": deck})
}

// SaveDeckRequest 是保存牌组的请求体。
type SaveDeckRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	SongIDs []uint `json:"songIds" binding:"required"`
}

// SaveDeck 创建或整体替换当前用户的牌组。
func (h *DeckHandler) SaveDeck(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SaveDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.SaveDeck: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: name and songIds are required")
		return
	}

	deck, err := h.deckService.SaveDeck(c.Request.Context(), userID, req.Name, req.SongIDs)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{
		"message": "Deck saved successfully",
		"deck":    deck,
	})
}

// DeleteDeck 清空当前用户的牌组。
func (h *DeckHandler) DeleteDeck(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.deckService.DeleteDeck(c.Request.Context(), userID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Deck deleted successfully"})
}

// MatchDeck 返回当前用户牌组的对局视图。
func (h *DeckHandler) MatchDeck(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	name, cards, err := h.deckService.MatchDeck(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{
		"deckName": name,
		"cards":    cards,
	})
}
