package sync

import (
	"time"

	"studynotes/internal/domain/sync"
)

// ChangesRequest тело запроса изменений
type ChangesRequest struct {
	LastSyncTime time.Time  `json:"last_sync_time" doc:"Курсор предыдущей синхронизации (server_time)"`
	Until        *time.Time `json:"until,omitempty" required:"false" doc:"Верхняя граница, общая для всех страниц прохода"`
	Limit        int        `json:"limit,omitempty" required:"false" minimum:"0" maximum:"1000"`
	Offset       int        `json:"offset,omitempty" required:"false" minimum:"0"`
	Shape        sync.Shape `json:"shape,omitempty" required:"false" enum:"simple,enhanced"`
}

type getChangesInput struct {
	DeviceID string `header:"X-Device-ID" doc:"Идентификатор устройства клиента"`
	Body ChangesRequest
}

type getChangesOutput struct {
	Body *sync.GetChangesResponse
}

type batchSyncInput struct {
	DeviceID string `header:"X-Device-ID" doc:"Идентификатор устройства клиента"`
	Body sync.BatchSyncRequest
}

type batchSyncOutput struct {
	Body *sync.BatchSyncResponse
}

type getStatusOutput struct {
	Body *sync.SyncStatus
}

type getConflictsOutput struct {
	Body []sync.Conflict
}

type resolveConflictInput struct {
	ID   int `path:"id" minimum:"1"`
	Body sync.ResolveConflictRequest
}

type statusOutput struct {
	Body StatusResponse
}

type StatusResponse struct {
	Status string `json:"status"`
}

type getDevicesOutput struct {
	Body []sync.Device
}

type registerDeviceInput struct {
	DeviceID  string `header:"X-Device-ID" required:"true" minLength:"1" maxLength:"128"`
	UserAgent string `header:"User-Agent"`
}

type removeDeviceInput struct {
	ID string `path:"id" maxLength:"128"`
}

type getStatsOutput struct {
	Body *sync.SyncStats
}
