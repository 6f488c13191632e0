package client

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"studynotes/internal/domain/note"
	"studynotes/internal/domain/sync"
)

type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) GetChanges(ctx context.Context, deviceID string, req changesRequest) (*sync.GetChangesResponse, error) {
	args := m.Called(ctx, deviceID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.GetChangesResponse), args.Error(1)
}

func (m *MockRemote) SendBatch(ctx context.Context, deviceID string, records []sync.EnhancedRecord) (*sync.BatchSyncResponse, error) {
	args := m.Called(ctx, deviceID, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.BatchSyncResponse), args.Error(1)
}

func (m *MockRemote) Conflicts(ctx context.Context) ([]sync.Conflict, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sync.Conflict), args.Error(1)
}

func (m *MockRemote) ResolveConflict(ctx context.Context, id int, req sync.ResolveConflictRequest) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}

func newTestSync(t *testing.T, strategy Strategy) (*SyncService, *MockRemote, *SQLiteStorage) {
	t.Helper()
	store := newTestStore(t)
	remote := new(MockRemote)
	lockPath := filepath.Join(t.TempDir(), "sync.lock")
	return NewSyncService(remote, store, lockPath, strategy, 2, slog.Default()), remote, store
}

func emptyChanges(serverTime time.Time) *sync.GetChangesResponse {
	return &sync.GetChangesResponse{Records: []sync.EnhancedRecord{}, ServerTime: serverTime}
}

func firstPage(req changesRequest) bool {
	return req.Offset == 0 && req.Until == nil
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []string{"client", "server", "newer", "manual"} {
		got, err := ParseStrategy(s)
		require.NoError(t, err)
		assert.Equal(t, Strategy(s), got)
	}

	_, err := ParseStrategy("latest")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestStrategy_Winner(t *testing.T) {
	early := baseTime
	late := baseTime.Add(time.Second)

	tests := []struct {
		name     string
		strategy Strategy
		local    time.Time
		server   time.Time
		want     sync.Resolution
		ok       bool
	}{
		{name: "client", strategy: StrategyClient, local: early, server: late, want: sync.ResolveClient, ok: true},
		{name: "server", strategy: StrategyServer, local: late, server: early, want: sync.ResolveServer, ok: true},
		{name: "newer local", strategy: StrategyNewer, local: late, server: early, want: sync.ResolveClient, ok: true},
		{name: "newer server", strategy: StrategyNewer, local: early, server: late, want: sync.ResolveServer, ok: true},
		{name: "newer tie goes to server", strategy: StrategyNewer, local: early, server: early, want: sync.ResolveServer, ok: true},
		{name: "manual", strategy: StrategyManual, local: late, server: early, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.strategy.winner(tt.local, tt.server)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSync_UploadsFoldersThenNotes(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyNewer)

	folder := testFolder("Physics", StatePending)
	require.NoError(t, store.SaveFolder(ctx, folder))
	n1 := testNote("Waves", StatePending)
	n1.FolderID = &folder.ID
	n2 := testNote("Optics", StatePending)
	n3 := testNote("Already synced", StateSynced)
	for _, n := range []*LocalNote{n1, n2, n3} {
		require.NoError(t, store.SaveNote(ctx, n))
	}

	deviceID, err := store.DeviceID(ctx)
	require.NoError(t, err)
	serverTime := baseTime.Add(time.Hour)

	var order []sync.Kind
	remote.On("SendBatch", mock.Anything, deviceID, mock.MatchedBy(func(recs []sync.EnhancedRecord) bool {
		return len(recs) == 1 && recs[0].Kind == sync.KindFolder
	})).Run(func(args mock.Arguments) {
		order = append(order, sync.KindFolder)
	}).Return(&sync.BatchSyncResponse{Processed: 1}, nil).Once()
	remote.On("SendBatch", mock.Anything, deviceID, mock.MatchedBy(func(recs []sync.EnhancedRecord) bool {
		return len(recs) == 2 && recs[0].Kind == sync.KindNote && recs[0].ContentHash != ""
	})).Run(func(args mock.Arguments) {
		order = append(order, sync.KindNote)
	}).Return(&sync.BatchSyncResponse{Processed: 2}, nil).Once()
	remote.On("GetChanges", mock.Anything, deviceID, mock.MatchedBy(firstPage)).
		Return(emptyChanges(serverTime), nil).Once()

	var reports []sync.Progress
	result, err := svc.Sync(ctx, sync.DirectionBoth, func(p sync.Progress) {
		reports = append(reports, p)
	})
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.Equal(t, 3, result.Uploaded)
	assert.Equal(t, []sync.Kind{sync.KindFolder, sync.KindNote}, order)
	assert.True(t, serverTime.Equal(result.Cursor))

	require.NotEmpty(t, reports)
	assert.Equal(t, 100, reports[len(reports)-1].Percent())
	assert.Equal(t, 1, reports[len(reports)-1].TotalFoldersToUpload)
	assert.Equal(t, 2, reports[len(reports)-1].TotalNotesToUpload)

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.PendingNotes)
	assert.Zero(t, counts.PendingFolders)
	assert.True(t, serverTime.Equal(counts.LastSync))

	remote.AssertExpectations(t)
}

func TestSync_UploadErrorsKeepRecordsPending(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyNewer)

	good := testNote("Good", StatePending)
	bad := testNote("Bad", StatePending)
	bad.UpdatedAt = baseTime.Add(time.Minute)
	require.NoError(t, store.SaveNote(ctx, good))
	require.NoError(t, store.SaveNote(ctx, bad))

	remote.On("SendBatch", mock.Anything, mock.Anything, mock.Anything).Return(&sync.BatchSyncResponse{
		Processed: 1,
		Failed:    1,
		Errors:    []sync.RecordError{{ID: bad.ID, Message: "storage limit exceeded"}},
	}, nil).Once()

	result, err := svc.Sync(ctx, sync.DirectionUpload, nil)
	require.NoError(t, err)

	assert.False(t, result.Success())
	assert.Equal(t, 1, result.Uploaded)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, bad.ID, result.Errors[0].RecordID)

	gotBad, err := store.GetNote(ctx, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, StatePending, gotBad.State)
	gotGood, err := store.GetNote(ctx, good.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSynced, gotGood.State)

	remote.AssertNotCalled(t, "GetChanges", mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_DownloadPagesWithFixedUpperBound(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyNewer)

	cursor := baseTime
	require.NoError(t, store.SetLastSyncTime(ctx, cursor))
	serverTime := baseTime.Add(2 * time.Hour)

	folder := note.Folder{ID: uuid.NewString(), Name: "Chemistry", Color: "#FF0000", Version: 1, CreatedAt: baseTime, UpdatedAt: baseTime}
	n1 := note.Note{ID: uuid.NewString(), FolderID: &folder.ID, Title: "Acids", SourceType: note.SourceText, Content: "pH", Status: note.StatusReady, Version: 2, CreatedAt: baseTime, UpdatedAt: baseTime}
	n2 := note.Note{ID: uuid.NewString(), Title: "Bases", SourceType: note.SourceAudio, Status: note.StatusPending, Version: 1, CreatedAt: baseTime, UpdatedAt: baseTime}

	remote.On("GetChanges", mock.Anything, mock.Anything, mock.MatchedBy(func(req changesRequest) bool {
		return firstPage(req) && req.LastSyncTime.Equal(cursor) && req.Limit == 2 && req.Shape == sync.ShapeEnhancedRecords
	})).Return(&sync.GetChangesResponse{
		Records:      []sync.EnhancedRecord{sync.ShapeEnhanced(n1), sync.FolderRecord(folder)},
		HasMore:      true,
		ServerTime:   serverTime,
		TotalFolders: 1,
		TotalNotes:   2,
	}, nil).Once()
	remote.On("GetChanges", mock.Anything, mock.Anything, mock.MatchedBy(func(req changesRequest) bool {
		return req.Offset == 2 && req.Until != nil && req.Until.Equal(serverTime)
	})).Return(&sync.GetChangesResponse{
		Records:    []sync.EnhancedRecord{sync.ShapeEnhanced(n2)},
		ServerTime: serverTime,
	}, nil).Once()

	var last sync.Progress
	result, err := svc.Sync(ctx, sync.DirectionDownload, func(p sync.Progress) { last = p })
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.Equal(t, 3, result.Downloaded)
	assert.Equal(t, 1, last.FoldersDownloaded)
	assert.Equal(t, 2, last.NotesDownloaded)
	assert.Equal(t, 100, last.Percent())

	got, err := store.GetNote(ctx, n1.ID)
	require.NoError(t, err)
	assert.Equal(t, "pH", got.Content)
	assert.Equal(t, folder.ID, *got.FolderID)
	assert.Equal(t, StateSynced, got.State)

	gotFolder, err := store.GetFolder(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "#FF0000", gotFolder.Color)

	stored, err := store.LastSyncTime(ctx)
	require.NoError(t, err)
	assert.True(t, serverTime.Equal(stored))

	remote.AssertExpectations(t)
}

func TestSync_DownloadFailureKeepsCursor(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyNewer)

	require.NoError(t, store.SetLastSyncTime(ctx, baseTime))
	remote.On("GetChanges", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset")).Once()

	result, err := svc.Sync(ctx, sync.DirectionDownload, nil)
	require.NoError(t, err)

	assert.False(t, result.Success())
	assert.True(t, result.Cursor.IsZero())

	stored, err := store.LastSyncTime(ctx)
	require.NoError(t, err)
	assert.True(t, baseTime.Equal(stored))
}

func TestSync_DownloadInvalidRecordKeepsCursor(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyNewer)

	broken := sync.ShapeEnhanced(note.Note{ID: uuid.NewString(), Title: "x", SourceType: note.SourceText, Status: note.StatusReady, Version: 1})
	broken.OriginalContent = "***"
	good := note.Note{ID: uuid.NewString(), Title: "ok", SourceType: note.SourceText, Status: note.StatusReady, Version: 1, CreatedAt: baseTime, UpdatedAt: baseTime}

	remote.On("GetChanges", mock.Anything, mock.Anything, mock.Anything).Return(&sync.GetChangesResponse{
		Records:    []sync.EnhancedRecord{broken, sync.ShapeEnhanced(good)},
		ServerTime: baseTime.Add(time.Hour),
	}, nil).Once()

	result, err := svc.Sync(ctx, sync.DirectionDownload, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Downloaded)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, broken.ID, result.Errors[0].RecordID)

	stored, err := store.LastSyncTime(ctx)
	require.NoError(t, err)
	assert.True(t, stored.IsZero())
}

func TestSync_DownloadCollisionNewer(t *testing.T) {
	t.Run("local is newer", func(t *testing.T) {
		ctx := context.Background()
		svc, remote, store := newTestSync(t, StrategyNewer)

		local := testNote("Local edit", StatePending)
		local.Version = 2
		local.UpdatedAt = baseTime.Add(2 * time.Hour)
		require.NoError(t, store.SaveNote(ctx, local))

		server := local.Note
		server.Title = "Server edit"
		server.Version = 3
		server.UpdatedAt = baseTime.Add(time.Hour)

		remote.On("GetChanges", mock.Anything, mock.Anything, mock.Anything).Return(&sync.GetChangesResponse{
			Records:    []sync.EnhancedRecord{sync.ShapeEnhanced(server)},
			ServerTime: baseTime.Add(3 * time.Hour),
		}, nil).Once()

		result, err := svc.Sync(ctx, sync.DirectionDownload, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Conflicts)
		assert.Equal(t, 1, result.Resolved)

		got, err := store.GetNote(ctx, local.ID)
		require.NoError(t, err)
		assert.Equal(t, "Local edit", got.Title)
		assert.Equal(t, 4, got.Version)
		assert.Equal(t, 3, got.BaseVersion, "next upload must be based on the server version")
		assert.Equal(t, StatePending, got.State)
	})

	t.Run("server is newer", func(t *testing.T) {
		ctx := context.Background()
		svc, remote, store := newTestSync(t, StrategyNewer)

		local := testNote("Local edit", StatePending)
		local.Version = 2
		require.NoError(t, store.SaveNote(ctx, local))

		server := local.Note
		server.Title = "Server edit"
		server.Version = 2
		server.UpdatedAt = baseTime.Add(time.Hour)

		remote.On("GetChanges", mock.Anything, mock.Anything, mock.Anything).Return(&sync.GetChangesResponse{
			Records:    []sync.EnhancedRecord{sync.ShapeEnhanced(server)},
			ServerTime: baseTime.Add(3 * time.Hour),
		}, nil).Once()

		_, err := svc.Sync(ctx, sync.DirectionDownload, nil)
		require.NoError(t, err)

		got, err := store.GetNote(ctx, local.ID)
		require.NoError(t, err)
		assert.Equal(t, "Server edit", got.Title)
		assert.Equal(t, StateSynced, got.State)
	})
}

func TestSync_DownloadCollisionManualKeepsLocal(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyManual)

	local := testNote("Mine", StatePending)
	require.NoError(t, store.SaveNote(ctx, local))

	server := local.Note
	server.Title = "Theirs"
	server.Version = 2
	server.UpdatedAt = baseTime.Add(time.Hour)

	remote.On("GetChanges", mock.Anything, mock.Anything, mock.Anything).Return(&sync.GetChangesResponse{
		Records:    []sync.EnhancedRecord{sync.ShapeEnhanced(server)},
		ServerTime: baseTime.Add(time.Hour),
	}, nil).Once()

	result, err := svc.Sync(ctx, sync.DirectionDownload, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Conflicts)
	assert.Zero(t, result.Resolved)

	got, err := store.GetNote(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)
	assert.Equal(t, StatePending, got.State)
}

func TestSync_StaleDownloadIgnored(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyServer)

	local := testNote("Current", StateSynced)
	local.Version = 5
	require.NoError(t, store.SaveNote(ctx, local))

	stale := local.Note
	stale.Title = "Old"
	stale.Version = 4

	remote.On("GetChanges", mock.Anything, mock.Anything, mock.Anything).Return(&sync.GetChangesResponse{
		Records:    []sync.EnhancedRecord{sync.ShapeEnhanced(stale)},
		ServerTime: baseTime,
	}, nil).Once()

	_, err := svc.Sync(ctx, sync.DirectionDownload, nil)
	require.NoError(t, err)

	got, err := store.GetNote(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, "Current", got.Title)
}

func conflictFor(t *testing.T, id int, local, server note.Note) sync.Conflict {
	t.Helper()
	localData, err := json.Marshal(sync.ShapeEnhanced(local))
	require.NoError(t, err)
	serverData, err := json.Marshal(sync.ShapeEnhanced(server))
	require.NoError(t, err)
	return sync.Conflict{
		ID:         id,
		RecordID:   local.ID,
		Kind:       sync.KindNote,
		LocalData:  localData,
		ServerData: serverData,
		Type:       sync.ConflictEditEdit,
	}
}

func TestSync_UploadConflictServerStrategy(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyServer)

	local := testNote("Local", StatePending)
	local.Version = 2
	require.NoError(t, store.SaveNote(ctx, local))

	server := local.Note
	server.Title = "Server"
	server.Version = 3

	remote.On("SendBatch", mock.Anything, mock.Anything, mock.Anything).Return(&sync.BatchSyncResponse{
		Conflicts: []sync.ConflictBrief{{ID: 7, RecordID: local.ID, Kind: sync.KindNote, Type: sync.ConflictEditEdit}},
	}, nil).Once()
	remote.On("Conflicts", mock.Anything).Return([]sync.Conflict{conflictFor(t, 7, local.Note, server)}, nil).Once()
	remote.On("ResolveConflict", mock.Anything, 7, sync.ResolveConflictRequest{Resolution: sync.ResolveServer}).Return(nil).Once()

	result, err := svc.Sync(ctx, sync.DirectionUpload, nil)
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.Zero(t, result.Uploaded)
	assert.Equal(t, 1, result.Conflicts)
	assert.Equal(t, 1, result.Resolved)

	got, err := store.GetNote(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, "Server", got.Title)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, StateSynced, got.State)

	remote.AssertExpectations(t)
}

func TestSync_UploadConflictClientStrategy(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyClient)

	local := testNote("Local", StatePending)
	require.NoError(t, store.SaveNote(ctx, local))
	server := local.Note
	server.Title = "Server"

	remote.On("SendBatch", mock.Anything, mock.Anything, mock.Anything).Return(&sync.BatchSyncResponse{
		Conflicts: []sync.ConflictBrief{{ID: 3, RecordID: local.ID, Kind: sync.KindNote}},
	}, nil).Once()
	remote.On("Conflicts", mock.Anything).Return([]sync.Conflict{conflictFor(t, 3, local.Note, server)}, nil).Once()
	remote.On("ResolveConflict", mock.Anything, 3, sync.ResolveConflictRequest{Resolution: sync.ResolveClient}).Return(nil).Once()

	_, err := svc.Sync(ctx, sync.DirectionUpload, nil)
	require.NoError(t, err)

	got, err := store.GetNote(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, "Local", got.Title)
	assert.Equal(t, StateSynced, got.State)
	assert.Equal(t, 2, got.Version, "server stored the local copy one above its own version")
	assert.Equal(t, 2, got.BaseVersion)

	remote.AssertExpectations(t)
}

func TestSync_DownloadAtBaseIsNotCollision(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyServer)

	local := testNote("Offline edit", StatePending)
	local.Version = 4
	local.BaseVersion = 3
	require.NoError(t, store.SaveNote(ctx, local))

	server := local.Note
	server.Title = "Before edit"
	server.Version = 3

	remote.On("GetChanges", mock.Anything, mock.Anything, mock.Anything).Return(&sync.GetChangesResponse{
		Records:    []sync.EnhancedRecord{sync.ShapeEnhanced(server)},
		ServerTime: baseTime.Add(time.Hour),
	}, nil).Once()

	result, err := svc.Sync(ctx, sync.DirectionDownload, nil)
	require.NoError(t, err)
	assert.Zero(t, result.Conflicts)

	got, err := store.GetNote(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, "Offline edit", got.Title, "server strategy must not drop an edit made on top of this version")
	assert.Equal(t, StatePending, got.State)
}

func TestSync_UploadCarriesBaseAndStoredVersion(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyNewer)

	local := testNote("Edited", StatePending)
	local.Version = 6
	local.BaseVersion = 4
	require.NoError(t, store.SaveNote(ctx, local))

	remote.On("SendBatch", mock.Anything, mock.Anything, mock.MatchedBy(func(recs []sync.EnhancedRecord) bool {
		return len(recs) == 1 && recs[0].BaseVersion == 4 && recs[0].Version == 6
	})).Return(&sync.BatchSyncResponse{
		Processed: 1,
		Versions:  map[string]int{local.ID: 6},
	}, nil).Once()

	result, err := svc.Sync(ctx, sync.DirectionUpload, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Uploaded)

	got, err := store.GetNote(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSynced, got.State)
	assert.Equal(t, 6, got.BaseVersion)

	remote.AssertExpectations(t)
}

func TestSync_ReplayAdoptsServerVersion(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyNewer)

	// сервер уже хранит это содержимое под версией 5
	local := testNote("Same", StatePending)
	local.Version = 4
	local.BaseVersion = 2
	require.NoError(t, store.SaveNote(ctx, local))

	remote.On("SendBatch", mock.Anything, mock.Anything, mock.Anything).Return(&sync.BatchSyncResponse{
		Processed: 1,
		Versions:  map[string]int{local.ID: 5},
	}, nil).Once()

	_, err := svc.Sync(ctx, sync.DirectionUpload, nil)
	require.NoError(t, err)

	got, err := store.GetNote(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSynced, got.State)
	assert.Equal(t, 5, got.Version)
	assert.Equal(t, 5, got.BaseVersion)
}

func TestSync_UploadConflictManual(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyManual)

	local := testNote("Local", StatePending)
	require.NoError(t, store.SaveNote(ctx, local))

	remote.On("SendBatch", mock.Anything, mock.Anything, mock.Anything).Return(&sync.BatchSyncResponse{
		Conflicts: []sync.ConflictBrief{{ID: 9, RecordID: local.ID, Kind: sync.KindNote}},
	}, nil).Once()

	result, err := svc.Sync(ctx, sync.DirectionUpload, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Conflicts)

	got, err := store.GetNote(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, StateConflict, got.State)

	remote.AssertNotCalled(t, "Conflicts", mock.Anything)
	remote.AssertNotCalled(t, "ResolveConflict", mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_ResolveManually(t *testing.T) {
	ctx := context.Background()
	svc, remote, store := newTestSync(t, StrategyManual)

	local := testNote("Local", StateConflict)
	require.NoError(t, store.SaveNote(ctx, local))
	server := local.Note
	server.Title = "Server"
	server.Version = 2

	remote.On("Conflicts", mock.Anything).Return([]sync.Conflict{conflictFor(t, 4, local.Note, server)}, nil)
	remote.On("ResolveConflict", mock.Anything, 4, sync.ResolveConflictRequest{Resolution: sync.ResolveServer}).Return(nil).Once()

	require.NoError(t, svc.Resolve(ctx, 4, sync.ResolveServer))

	got, err := store.GetNote(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, "Server", got.Title)
	assert.Equal(t, StateSynced, got.State)

	assert.ErrorIs(t, svc.Resolve(ctx, 99, sync.ResolveClient), sync.ErrConflictNotFound)
	assert.ErrorIs(t, svc.Resolve(ctx, 4, sync.ResolveMerged), sync.ErrInvalidResolution)
}

func TestSync_LockHeldByAnotherProcess(t *testing.T) {
	store := newTestStore(t)
	lockPath := filepath.Join(t.TempDir(), "sync.lock")
	svc := NewSyncService(new(MockRemote), store, lockPath, StrategyNewer, 10, slog.Default())

	other := flock.New(lockPath)
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	_, err = svc.Sync(context.Background(), sync.DirectionBoth, nil)
	assert.ErrorIs(t, err, ErrSyncInProgress)
}

func TestChunk(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunk([]int{1, 2, 3, 4, 5}, 2))
	assert.Nil(t, chunk([]int{}, 3))
	assert.Equal(t, [][]int{{1, 2}}, chunk([]int{1, 2}, 0))
}
