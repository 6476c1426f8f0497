package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/kiosk-complaint-api/internal/dto"
	"github.com/noah-isme/kiosk-complaint-api/internal/models"
	"github.com/noah-isme/kiosk-complaint-api/internal/repository"
	appErrors "github.com/noah-isme/kiosk-complaint-api/pkg/errors"
)

type fakeComplaintStore struct {
	*repository.MemoryComplaintRepository
	mu        sync.Mutex
	creates   int
	lists     int
	createErr error
	listErr   error
	updateErr error
}

func newFakeComplaintStore() *fakeComplaintStore {
	return &fakeComplaintStore{MemoryComplaintRepository: repository.NewMemoryComplaintRepository()}
}

func (f *fakeComplaintStore) Create(ctx context.Context, c *models.Complaint) error {
	f.mu.Lock()
	f.creates++
	err := f.createErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryComplaintRepository.Create(ctx, c)
}

func (f *fakeComplaintStore) List(ctx context.Context) ([]models.Complaint, error) {
	f.mu.Lock()
	f.lists++
	err := f.listErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.MemoryComplaintRepository.List(ctx)
}

func (f *fakeComplaintStore) Update(ctx context.Context, id string, u models.ComplaintUpdate) error {
	f.mu.Lock()
	err := f.updateErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryComplaintRepository.Update(ctx, id, u)
}

func (f *fakeComplaintStore) seed(t *testing.T, c models.Complaint) {
	t.Helper()
	require.NoError(t, f.MemoryComplaintRepository.Create(context.Background(), &c))
}

type fakeCacheRepo struct {
	mu          sync.Mutex
	values      map[string][]models.Complaint
	invalidated int
	deleteErr   error
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{values: map[string][]models.Complaint{}}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*[]models.Complaint)) = v
	return nil
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value.([]models.Complaint)
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.values = map[string][]models.Complaint{}
	f.invalidated++
	return nil
}

func newComplaintService(store complaintStore) *ComplaintService {
	return NewComplaintService(store, validator.New(), nil, nil, zap.NewNop())
}

var citizen = models.Session{DisplayName: "김민수", ContactNumber: "+821012345678", Role: models.RoleCitizen}

func TestSubmitRejectsIncompleteFormsWithoutTouchingStore(t *testing.T) {
	cases := map[string]dto.SubmitComplaintRequest{
		"missing category": {Title: "조명", Body: "고장"},
		"unknown category": {Category: "전체", Title: "조명", Body: "고장"},
		"blank title":      {Category: string(models.CategoryFacility), Title: "   ", Body: "고장"},
		"empty body":       {Category: string(models.CategoryFacility), Title: "조명"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			store := newFakeComplaintStore()
			svc := newComplaintService(store)

			_, err := svc.Submit(context.Background(), citizen, req)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Equal(t, MessageMissingFields, appErr.Message)
			assert.Zero(t, store.creates)
		})
	}
}

func TestSubmitCreatesUnprocessedComplaint(t *testing.T) {
	store := newFakeComplaintStore()
	svc := newComplaintService(store)
	fixed := time.Date(2024, 5, 2, 1, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	created, err := svc.Submit(context.Background(), citizen, dto.SubmitComplaintRequest{
		Category: string(models.CategoryFacility),
		Title:    "체육관 조명 고장",
		Body:     "2층 조명이 꺼져 있습니다.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusUnprocessed, created.Status)
	assert.Nil(t, created.Reply)
	assert.Equal(t, "김민수", created.SubmitterName)
	assert.Equal(t, "+821012345678", created.SubmitterContact)
	assert.Equal(t, fixed, created.CreatedAt)

	list, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestSubmitTwiceCreatesTwoRecords(t *testing.T) {
	store := newFakeComplaintStore()
	svc := newComplaintService(store)
	req := dto.SubmitComplaintRequest{Category: string(models.CategoryOther), Title: "문의", Body: "내용"}

	_, err := svc.Submit(context.Background(), citizen, req)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), citizen, req)
	require.NoError(t, err)

	list, _ := svc.ListAll(context.Background())
	assert.Len(t, list, 2)
}

func TestSubmitReportsPersistenceFailure(t *testing.T) {
	store := newFakeComplaintStore()
	store.createErr = errors.New("store offline")
	svc := newComplaintService(store)

	_, err := svc.Submit(context.Background(), citizen, dto.SubmitComplaintRequest{Category: string(models.CategoryOther), Title: "t", Body: "b"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPersistence.Code, appErr.Code)
	assert.Equal(t, MessageSubmitFailed, appErr.Message)
	assert.Equal(t, 1, store.creates)
}

func TestSubmitRequiresIdentity(t *testing.T) {
	svc := newComplaintService(newFakeComplaintStore())
	_, err := svc.Submit(context.Background(), models.Session{Role: models.RoleAdministrator}, dto.SubmitComplaintRequest{Category: string(models.CategoryOther), Title: "t", Body: "b"})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestListMineMatchesNameExactly(t *testing.T) {
	store := newFakeComplaintStore()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store.seed(t, models.Complaint{ID: "a", SubmitterName: "김민수", CreatedAt: base})
	store.seed(t, models.Complaint{ID: "b", SubmitterName: "김민수영", CreatedAt: base.Add(time.Hour)})
	store.seed(t, models.Complaint{ID: "c", SubmitterName: "Kim Minsu", CreatedAt: base.Add(2 * time.Hour)})
	store.seed(t, models.Complaint{ID: "d", SubmitterName: "김민수", CreatedAt: base.Add(3 * time.Hour)})
	svc := newComplaintService(store)

	mine, err := svc.ListMine(context.Background(), "김민수")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "d", mine[0].ID)
	assert.Equal(t, "a", mine[1].ID)

	none, err := svc.ListMine(context.Background(), "박지성")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListAllReportsPersistenceFailure(t *testing.T) {
	store := newFakeComplaintStore()
	store.listErr = errors.New("timeout")
	svc := newComplaintService(store)

	_, err := svc.ListAll(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrPersistence)
	_, err = svc.ListMine(context.Background(), "김민수")
	assert.ErrorIs(t, err, appErrors.ErrPersistence)
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	store := newFakeComplaintStore()
	store.seed(t, models.Complaint{ID: "x", Status: models.StatusCompleted})
	svc := newComplaintService(store)

	require.NoError(t, svc.UpdateStatus(context.Background(), "x", models.StatusUnprocessed))
	list, _ := svc.ListAll(context.Background())
	assert.Equal(t, models.StatusUnprocessed, list[0].Status)

	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), "x", "보류"), appErrors.ErrValidation)
	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), "missing", models.StatusCompleted), appErrors.ErrNotFound)
}

func TestUpdateFailureIsPersistenceError(t *testing.T) {
	store := newFakeComplaintStore()
	store.seed(t, models.Complaint{ID: "x", Status: models.StatusInProgress})
	store.updateErr = errors.New("write conflict")
	svc := newComplaintService(store)

	err := svc.SaveReply(context.Background(), "x", "답변")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPersistence.Code, appErr.Code)
	assert.Equal(t, MessageReplyFailed, appErr.Message)
}

func TestListingCacheIsInvalidatedByWrites(t *testing.T) {
	store := newFakeComplaintStore()
	store.seed(t, models.Complaint{ID: "x", Status: models.StatusUnprocessed})
	cacheRepo := newFakeCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewComplaintService(store, validator.New(), cache, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.ListAll(ctx)
	require.NoError(t, err)
	_, err = svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.lists)

	require.NoError(t, svc.UpdateStatus(ctx, "x", models.StatusCompleted))
	assert.Equal(t, 1, cacheRepo.invalidated)

	list, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.lists)
	assert.Equal(t, models.StatusCompleted, list[0].Status)
}

func TestListFreshBypassesAndReseedsCache(t *testing.T) {
	store := newFakeComplaintStore()
	store.seed(t, models.Complaint{ID: "x", Status: models.StatusUnprocessed})
	cacheRepo := newFakeCacheRepo()
	cacheRepo.deleteErr = errors.New("redis down")
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewComplaintService(store, validator.New(), cache, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, "x", models.StatusCompleted))

	stale, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnprocessed, stale[0].Status)

	fresh, err := svc.ListFresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, fresh[0].Status)

	reseeded, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, reseeded[0].Status)
}
