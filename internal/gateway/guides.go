package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/magabrotheeeer/venue-console/internal/models"
)

const guidesPath = "/api/guides"

// FetchGuides перечитывает список гидов.
func (g *Gateway) FetchGuides(ctx context.Context) bool {
	return fetchList(ctx, g, &g.guides, "gateway.FetchGuides", guidesPath, "Failed to fetch guides")
}

// AddGuide создает гида.
func (g *Gateway) AddGuide(ctx context.Context, in models.GuideInput) bool {
	return g.mutate(ctx, mutation{
		op:             "gateway.AddGuide",
		method:         http.MethodPost,
		path:           guidesPath,
		body:           in,
		successTitle:   "Guide added",
		successMessage: "Guide has been added successfully",
		failTitle:      "Failed to add guide",
	}, g.FetchGuides)
}

func (g *Gateway) UpdateGuide(ctx context.Context, id int64, patch models.GuidePatch) bool {
	return g.mutate(ctx, mutation{
		op:             "gateway.UpdateGuide",
		method:         http.MethodPut,
		path:           fmt.Sprintf("%s/%d", guidesPath, id),
		body:           patch,
		successTitle:   "Guide updated",
		successMessage: "Guide has been updated successfully",
		failTitle:      "Failed to update guide",
	}, g.FetchGuides)
}

func (g *Gateway) DeleteGuide(ctx context.Context, id int64) bool {
	return g.mutate(ctx, mutation{
		op:             "gateway.DeleteGuide",
		method:         http.MethodDelete,
		path:           fmt.Sprintf("%s/%d", guidesPath, id),
		successTitle:   "Guide deleted",
		successMessage: "Guide has been deleted successfully",
		failTitle:      "Failed to delete guide",
	}, g.FetchGuides)
}
