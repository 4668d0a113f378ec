package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Sternrassler/pokedex-client/pkg/catalog"
	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/pagestate"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	CachedPages int    `json:"cached_pages"`
}

// PageResponse is the body of GET /api/pokemon.
type PageResponse struct {
	Page        int             `json:"page"`
	TotalPages  int             `json:"total_pages"`
	Search      string          `json:"search,omitempty"`
	Results     []catalog.Entry `json:"results"`
	Pagination  []int           `json:"pagination"`
	HasPrevious bool            `json:"has_previous"`
	HasNext     bool            `json:"has_next"`
	Source      string          `json:"source"`
}

func (s *Server) healthRoute(c *fiber.Ctx) error {
	n, err := s.store.Len(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "degraded",
			Version: s.config.Version,
		})
	}

	return c.JSON(HealthResponse{
		Status:      "ok",
		Version:     s.config.Version,
		CachedPages: n,
	})
}

func (s *Server) listRoute(c *fiber.Ctx) error {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "page must be a positive integer")
		}
		page = n
	}

	controller, err := pagestate.New(s.fetcher, s.store, s.config.PageState)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	// Page 1 tells us the total; it is almost always cached.
	result, err := controller.LoadPage(ctx, 1)
	if err != nil {
		return upstreamError(err)
	}

	if page != 1 {
		result, err = controller.SetPage(ctx, page)
		if err != nil {
			return upstreamError(err)
		}
		if result == nil {
			return fiber.NewError(fiber.StatusNotFound,
				"page "+strconv.Itoa(page)+" is beyond the last page ("+strconv.Itoa(controller.TotalPages())+")")
		}
	}

	controller.SetSearchTerm(c.Query("search"))
	state := controller.Snapshot()

	return c.JSON(PageResponse{
		Page:        state.CurrentPage,
		TotalPages:  state.TotalPages,
		Search:      state.SearchTerm,
		Results:     controller.VisibleEntries(),
		Pagination:  controller.PaginationWindow(0),
		HasPrevious: state.HasPrevious,
		HasNext:     state.HasNext,
		Source:      string(result.Source),
	})
}

func (s *Server) detailRoute(c *fiber.Ctx) error {
	if s.details == nil {
		return fiber.ErrNotImplemented
	}

	name := c.Params("name")
	detail, err := s.details.FetchDetail(c.UserContext(), s.config.DetailBaseURL+"/pokemon/"+name+"/")
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return fiber.NewError(fiber.StatusNotFound, "no pokémon named "+strconv.Quote(name))
		}
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	return c.JSON(detail)
}

func upstreamError(err error) error {
	switch {
	case errors.Is(err, pagestate.ErrLoadFailed):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, pagestate.ErrPageOutOfRange):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return err
}
