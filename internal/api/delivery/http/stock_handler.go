package http

import (
	"net/http"

	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/internal/api/service"
	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StockHandler handles HTTP requests for quotes, search, history, predictions and news.
type StockHandler struct {
	stockService service.StockService
	logger       *logger.Logger
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockService service.StockService, logger *logger.Logger) *StockHandler {
	return &StockHandler{stockService: stockService, logger: logger}
}

// RegisterRoutes registers the stock routes to the Echo group.
func (h *StockHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/news/watchlist", h.GetWatchlistNews)
	g.GET("/news/:symbol", h.GetNews)
	g.GET("/search/:query", h.Search)
	g.POST("/predict", h.Predict)
	g.GET("/:symbol/history", h.GetHistory)
	g.GET("/:symbol", h.GetQuote)
}

// GetQuote godoc
// @Summary Live quote
// @Description Get the latest quote for a symbol
// @Tags stocks
// @Produce  json
// @Security BearerAuth
// @Param   symbol  path    string true    "Ticker symbol"
// @Success 200 {object} dto.Quote
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /stocks/{symbol} [get]
func (h *StockHandler) GetQuote(c echo.Context) error {
	quote, err := h.stockService.GetQuote(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quote)
}

// Search godoc
// @Summary Symbol search
// @Description Search symbols by ticker or company name
// @Tags stocks
// @Produce  json
// @Security BearerAuth
// @Param   query  path    string true    "Search text"
// @Success 200 {array} dto.SearchResult
// @Failure 400 {object} dto.ErrorResponse
// @Router /stocks/search/{query} [get]
func (h *StockHandler) Search(c echo.Context) error {
	results, err := h.stockService.Search(c.Request().Context(), c.Param("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, results)
}

// GetHistory godoc
// @Summary Price history
// @Description Get daily closes for a symbol over 7d, 1m, 3m or 1y
// @Tags stocks
// @Produce  json
// @Security BearerAuth
// @Param   symbol  path    string true    "Ticker symbol"
// @Param   period  query   string false   "History window" Enums(7d, 1m, 3m, 1y)
// @Success 200 {object} dto.HistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /stocks/{symbol}/history [get]
func (h *StockHandler) GetHistory(c echo.Context) error {
	resp, err := h.stockService.GetHistory(c.Request().Context(), c.Param("symbol"), c.QueryParam("period"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Predict godoc
// @Summary Predict
// @Description Forward a prediction request to the model service and record the result
// @Tags stocks
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   request  body    dto.PredictRequest   true    "Symbol and horizon in days"
// @Success 200 {object} dto.MLPrediction
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /stocks/predict [post]
func (h *StockHandler) Predict(c echo.Context) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	var req dto.PredictRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	raw, err := h.stockService.Predict(c.Request().Context(), account.ID, &req)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, raw)
}

// GetNews godoc
// @Summary Symbol news
// @Description Get recent headlines for a symbol labelled with a sentiment impact
// @Tags stocks
// @Produce  json
// @Security BearerAuth
// @Param   symbol  path    string true    "Ticker symbol"
// @Success 200 {array} dto.NewsItem
// @Failure 400 {object} dto.ErrorResponse
// @Router /stocks/news/{symbol} [get]
func (h *StockHandler) GetNews(c echo.Context) error {
	items, err := h.stockService.GetNews(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// GetWatchlistNews godoc
// @Summary Watchlist news
// @Description Get recent headlines for every symbol on the caller's watchlist
// @Tags stocks
// @Produce  json
// @Security BearerAuth
// @Success 200 {array} dto.NewsItem
// @Failure 401 {object} dto.ErrorResponse
// @Router /stocks/news/watchlist [get]
func (h *StockHandler) GetWatchlistNews(c echo.Context) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	items, err := h.stockService.GetWatchlistNews(c.Request().Context(), account.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
