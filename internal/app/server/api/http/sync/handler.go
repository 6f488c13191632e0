package sync

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"studynotes/internal/app/server/api/http/apierror"
	"studynotes/internal/app/server/api/http/middleware/auth"
	"studynotes/internal/domain/sync"
)

const statusOk = "Ok"

type Handler struct {
	service    sync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "sync_handler"),
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.getChangesOp(), h.getChanges)
	huma.Register(api, h.batchSyncOp(), h.batchSync)
	huma.Register(api, h.getStatusOp(), h.getStatus)
	huma.Register(api, h.getConflictsOp(), h.getConflicts)
	huma.Register(api, h.resolveConflictOp(), h.resolveConflict)
	huma.Register(api, h.getDevicesOp(), h.getDevices)
	huma.Register(api, h.registerDeviceOp(), h.registerDevice)
	huma.Register(api, h.removeDeviceOp(), h.removeDevice)
	huma.Register(api, h.getStatsOp(), h.getStats)
}

func (h *Handler) getChanges(ctx context.Context, input *getChangesInput) (*getChangesOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	req := sync.GetChangesRequest{
		LastSyncTime: input.Body.LastSyncTime,
		Limit:        input.Body.Limit,
		Offset:       input.Body.Offset,
		Shape:        input.Body.Shape,
		DeviceID:     input.DeviceID,
	}
	if input.Body.Until != nil {
		req.Until = *input.Body.Until
	}

	response, err := h.service.GetChanges(ctx, userID, req)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &getChangesOutput{Body: response}, nil
}

func (h *Handler) batchSync(ctx context.Context, input *batchSyncInput) (*batchSyncOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	req := input.Body
	req.DeviceID = input.DeviceID
	response, err := h.service.ProcessBatch(ctx, userID, req)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	if response.Failed > 0 || len(response.Conflicts) > 0 {
		h.log.Info("batch processed with issues",
			slog.Int("user_id", userID),
			slog.Int("failed", response.Failed),
			slog.Int("conflicts", len(response.Conflicts)))
	}
	return &batchSyncOutput{Body: response}, nil
}

func (h *Handler) getStatus(ctx context.Context, _ *struct{}) (*getStatusOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	status, err := h.service.GetStatus(ctx, userID)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &getStatusOutput{Body: status}, nil
}

func (h *Handler) getConflicts(ctx context.Context, _ *struct{}) (*getConflictsOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	conflicts, err := h.service.GetConflicts(ctx, userID)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &getConflictsOutput{Body: conflicts}, nil
}

func (h *Handler) resolveConflict(ctx context.Context, input *resolveConflictInput) (*statusOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.ResolveConflict(ctx, userID, input.ID, input.Body); err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &statusOutput{Body: StatusResponse{Status: statusOk}}, nil
}

func (h *Handler) getDevices(ctx context.Context, _ *struct{}) (*getDevicesOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	devices, err := h.service.GetDevices(ctx, userID)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &getDevicesOutput{Body: devices}, nil
}

func (h *Handler) registerDevice(ctx context.Context, input *registerDeviceInput) (*statusOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.RegisterDevice(ctx, userID, input.DeviceID, input.UserAgent); err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &statusOutput{Body: StatusResponse{Status: statusOk}}, nil
}

func (h *Handler) removeDevice(ctx context.Context, input *removeDeviceInput) (*struct{}, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.RemoveDevice(ctx, userID, input.ID); err != nil {
		return nil, apierror.From(h.log, err)
	}
	return nil, nil
}

func (h *Handler) getStats(ctx context.Context, _ *struct{}) (*getStatsOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	stats, err := h.service.GetStats(ctx, userID)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &getStatsOutput{Body: stats}, nil
}
