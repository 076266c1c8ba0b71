package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vastavikadi/BeatBRAWL/internal/service"
)

// CatalogHandler 封装歌曲目录和收藏相关的 HTTP 处理逻辑。
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler 创建 CatalogHandler 实例。
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListSongs 返回完整歌曲目录。
func (h *CatalogHandler) ListSongs(c *gin.Context) {
	songs, err := h.catalogService.ListSongs(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"songs": songs})
}

// MySongs 返回当前用户收藏的歌曲。
func (h *CatalogHandler) MySongs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	songs, err := h.catalogService.UserSongs(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"songs": songs})
}

// ClaimStatus 报告当前用户是否还能领取初始歌曲。
func (h *CatalogHandler) ClaimStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	canClaim, err := h.catalogService.ClaimStatus(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"canClaim": canClaim})
}

// ClaimInitialSongs 给当前用户发放一批初始歌曲。
func (h *CatalogHandler) ClaimInitialSongs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	songs, err := h.catalogService.ClaimInitialSongs(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "songs": len(songs)}).Info("Handler.ClaimInitialSongs: Initial songs claimed")
	SuccessResponse(c, http.StatusOK, gin.H{
		"message": "Initial songs claimed successfully",
		"songs":   songs,
	})
}

// PurchaseSong 把一首歌加入当前用户的收藏。
func (h *CatalogHandler) PurchaseSong(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	songID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || songID == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid song id")
		return
	}

	song, err := h.catalogService.PurchaseSong(c.Request.Context(), userID, uint(songID))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{
		"message": "Song purchased successfully",
		"song":    song,
	})
}
