// Package recipe 提供不綁定會話的食譜產生與 PDF 下載
package recipe

import (
	"context"
	"net/http"
	"strings"

	"cooking-buddy/internal/api/handlers"
	recipeService "cooking-buddy/internal/core/recipe"
	"cooking-buddy/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pipeline 食譜產生流程
type Pipeline interface {
	Run(ctx context.Context, rawIngredients, rawPreferences string) (*recipeService.Result, error)
}

// GenerateRequest 以食材與飲食偏好產生食譜
type GenerateRequest struct {
	Ingredients string `json:"ingredients"`
	Preferences string `json:"preferences"`
}

// GenerateResponse 流程結果
type GenerateResponse struct {
	Ingredients  string           `json:"ingredients"`
	Preferences  string           `json:"preferences"`
	Ideas        string           `json:"ideas"`
	Filtered     string           `json:"filtered"`
	FinalRecipes string           `json:"final_recipes"`
	Dishes       []Dish           `json:"dishes"`
	Warnings     []string         `json:"warnings,omitempty"`
	DurationsMS  map[string]int64 `json:"durations_ms,omitempty"`
}

// Dish 依標題切分後的單道料理
type Dish struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// DocumentRequest 將食譜轉為 PDF
type DocumentRequest struct {
	Recipes string `json:"recipes" binding:"required"`
}

// Handler 食譜處理程序
type Handler struct {
	pipeline Pipeline
	renderer handlers.DocumentRenderer
}

// NewHandler 創建新的食譜處理程序
func NewHandler(pipeline Pipeline, renderer handlers.DocumentRenderer) *Handler {
	return &Handler{
		pipeline: pipeline,
		renderer: renderer,
	}
}

// HandleGenerate 執行完整的食譜流程
func (h *Handler) HandleGenerate(c *gin.Context) {
	requestID := requestid.Get(c)

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	if strings.TrimSpace(req.Ingredients) == "" {
		handlers.RespondError(c, common.ErrEmptyIngredients)
		return
	}

	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	result, err := h.pipeline.Run(c.Request.Context(), req.Ingredients, req.Preferences)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewGenerateResponse(result))
}

// HandleDocument 將傳入的食譜轉為 PDF 下載
func (h *Handler) HandleDocument(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	handlers.SendDocument(c, h.renderer, req.Recipes)
}

// NewGenerateResponse 將流程結果轉成回應
func NewGenerateResponse(result *recipeService.Result) GenerateResponse {
	resp := GenerateResponse{
		Ingredients:  result.Ingredients,
		Preferences:  result.Preferences,
		Ideas:        result.Ideas,
		Filtered:     result.Filtered,
		FinalRecipes: result.FinalRecipes,
		Dishes:       []Dish{},
		Warnings:     result.Warnings,
	}
	for _, g := range result.Dishes() {
		resp.Dishes = append(resp.Dishes, Dish{Title: g.Title, Body: g.Body})
	}
	if len(result.Durations) > 0 {
		resp.DurationsMS = make(map[string]int64, len(result.Durations))
		for stage, d := range result.Durations {
			resp.DurationsMS[stage] = d.Milliseconds()
		}
	}
	return resp
}
