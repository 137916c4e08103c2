package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/magabrotheeeer/venue-console/internal/models"
)

const ticketsPath = "/api/tickets"

// FetchTickets перечитывает список билетов.
func (g *Gateway) FetchTickets(ctx context.Context) bool {
	return fetchList(ctx, g, &g.tickets, "gateway.FetchTickets", ticketsPath, "Failed to fetch tickets")
}

// AddTicket создает билет.
func (g *Gateway) AddTicket(ctx context.Context, in models.TicketInput) bool {
	return g.mutate(ctx, mutation{
		op:             "gateway.AddTicket",
		method:         http.MethodPost,
		path:           ticketsPath,
		body:           in,
		successTitle:   "Ticket added",
		successMessage: "Ticket has been added successfully",
		failTitle:      "Failed to add ticket",
	}, g.FetchTickets)
}

// UpdateTicket частично обновляет билет.
func (g *Gateway) UpdateTicket(ctx context.Context, id int64, patch models.TicketPatch) bool {
	return g.mutate(ctx, mutation{
		op:             "gateway.UpdateTicket",
		method:         http.MethodPut,
		path:           fmt.Sprintf("%s/%d", ticketsPath, id),
		body:           patch,
		successTitle:   "Ticket updated",
		successMessage: "Ticket has been updated successfully",
		failTitle:      "Failed to update ticket",
	}, g.FetchTickets)
}

// DeleteTicket удаляет билет.
func (g *Gateway) DeleteTicket(ctx context.Context, id int64) bool {
	return g.mutate(ctx, mutation{
		op:             "gateway.DeleteTicket",
		method:         http.MethodDelete,
		path:           fmt.Sprintf("%s/%d", ticketsPath, id),
		successTitle:   "Ticket deleted",
		successMessage: "Ticket has been deleted successfully",
		failTitle:      "Failed to delete ticket",
	}, g.FetchTickets)
}
