package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/magabrotheeeer/venue-console/internal/models"
)

const countersPath = "/api/counters"

// FetchCounters перечитывает список касс.
func (g *Gateway) FetchCounters(ctx context.Context) bool {
	return fetchList(ctx, g, &g.counters, "gateway.FetchCounters", countersPath, "Failed to fetch counters")
}

// RegisterCounter создает учетную запись кассы. Пустая role не отправляется,
// сервер назначает роль по умолчанию.
func (g *Gateway) RegisterCounter(ctx context.Context, username, password string, role models.Role) bool {
	return g.mutate(ctx, mutation{
		op:             "gateway.RegisterCounter",
		method:         http.MethodPost,
		path:           countersPath + "/register",
		body:           models.CounterInput{Username: username, Password: password, Role: role},
		successTitle:   "Counter created",
		successMessage: fmt.Sprintf("Counter %s has been created successfully", username),
		failTitle:      "Failed to create counter",
	}, g.FetchCounters)
}

// AddCounter создает кассу через POST /api/counters.
func (g *Gateway) AddCounter(ctx context.Context, in models.CounterInput) bool {
	return g.mutate(ctx, mutation{
		op:             "gateway.AddCounter",
		method:         http.MethodPost,
		path:           countersPath,
		body:           in,
		successTitle:   "Counter created",
		successMessage: fmt.Sprintf("Counter %s has been created successfully", in.Username),
		failTitle:      "Failed to create counter",
	}, g.FetchCounters)
}

// UpdateCounter частично обновляет кассу.
func (g *Gateway) UpdateCounter(ctx context.Context, id int64, patch models.CounterPatch) bool {
	return g.mutate(ctx, mutation{
		op:             "gateway.UpdateCounter",
		method:         http.MethodPut,
		path:           fmt.Sprintf("%s/%d", countersPath, id),
		body:           patch,
		successTitle:   "Counter updated",
		successMessage: "Counter has been updated successfully",
		failTitle:      "Failed to update counter",
	}, g.FetchCounters)
}

// DeleteCounter удаляет кассу.
func (g *Gateway) DeleteCounter(ctx context.Context, id int64) bool {
	return g.mutate(ctx, mutation{
		op:             "gateway.DeleteCounter",
		method:         http.MethodDelete,
		path:           fmt.Sprintf("%s/%d", countersPath, id),
		successTitle:   "Counter deleted",
		successMessage: "Counter has been deleted successfully",
		failTitle:      "Failed to delete counter",
	}, g.FetchCounters)
}

// ChangeCounterPassword меняет пароль текущей кассы. Список не перечитывается.
func (g *Gateway) ChangeCounterPassword(ctx context.Context, currentPassword, newPassword string) bool {
	return g.mutate(ctx, mutation{
		op:             "gateway.ChangeCounterPassword",
		method:         http.MethodPut,
		path:           countersPath + "/change-password",
		body:           models.PasswordChange{CurrentPassword: currentPassword, NewPassword: newPassword},
		successTitle:   "Password changed",
		successMessage: "Password has been changed successfully",
		failTitle:      "Failed to change password",
	}, nil)
}
