package repository

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fadilmartias/cv-optimizer/internal/model"
	"github.com/fadilmartias/cv-optimizer/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) (*CVRepository, storage.BlobStore) {
	t.Helper()
	store, err := storage.NewFilesystem(filepath.Join(t.TempDir(), "cvfiles"), nil)
	require.NoError(t, err)
	return NewCVRepository(store, nil), store
}

func record(id, user string, uploaded time.Time) *model.CVRecord {
	return &model.CVRecord{
		ID:           id,
		UserID:       user,
		FileName:     "cv.txt",
		UploadDate:   uploaded,
		OriginalText: "text of " + id,
		Status:       model.CVStatusProcessing,
	}
}

func TestCVRepository_MetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, store := newTestRepository(t)

	rec := record("cv-1", "demo-user", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, repo.PutMetadata(ctx, rec))

	got, err := repo.GetMetadata(ctx, "cv-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.OriginalText, got.OriginalText)
	assert.True(t, rec.UploadDate.Equal(got.UploadDate))

	raw, err := store.Get(ctx, "cv-1/metadata.json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"id\""), "metadata is pretty printed")
}

func fullRecord() *model.CVRecord {
	years := 6.0
	return &model.CVRecord{
		ID:           "cv-full",
		UserID:       "demo-user",
		FileName:     "resume.pdf",
		UploadDate:   time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.UTC),
		OriginalText: "Jane Doe\nBackend engineer",
		Status:       model.CVStatusCompleted,
		BlobURL:      "file:///tmp/cv-full/resume.pdf",
		ParsedData: &model.ParsedCV{
			PersonalInfo: model.PersonalInfo{Name: "Jane Doe", Email: "jane@example.com", LinkedIn: "in/jane"},
			Skills:       []model.Skill{{Name: "Go", Category: model.SkillCategoryTechnical, Proficiency: model.ProficiencyExpert, YearsOfExperience: &years}},
			Experience: []model.Experience{{
				ID: "exp-1", Company: "Acme", Position: "Engineer", StartDate: "2019", Current: true,
				Description: "Built things", Achievements: []string{"Shipped"}, Technologies: []string{"Go"},
			}},
			Education: []model.Education{{ID: "edu-1", Institution: "MIT", Degree: "BSc", Field: "CS", StartDate: "2012", EndDate: "2016", GPA: "3.9"}},
			Summary:   "Backend engineer",
		},
		OptimizedData: &model.OptimizedCV{
			ATSScore:         72,
			OptimizedText:    "Jane Doe - Backend engineer",
			Suggestions:      []model.Suggestion{{ID: "s-1", Type: "content", Severity: "high", Message: "Quantify", Original: "Built things", Suggested: "Built 3 services", Reason: "Numbers"}},
			ImprovementAreas: []model.ImprovementArea{{Category: "Impact", Score: 60, Recommendations: []string{"Add metrics"}}},
			KeywordMatches:   []model.KeywordMatch{{Keyword: "Kubernetes", Found: false, Importance: "medium", Suggestion: "Mention k8s"}},
		},
	}
}

func TestCVRepository_FullRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	rec := fullRecord()
	require.NoError(t, repo.PutMetadata(ctx, rec))

	got, err := repo.GetMetadata(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestCVRepository_PutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, store := newTestRepository(t)

	rec := fullRecord()
	require.NoError(t, repo.PutMetadata(ctx, rec))
	require.NoError(t, repo.PutMetadata(ctx, rec))

	first, err := repo.Put(ctx, rec.ID, "resume.pdf", []byte("%PDF"))
	require.NoError(t, err)
	second, err := repo.Put(ctx, rec.ID, "resume.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	keys, err := store.List(ctx, rec.ID+"/")
	require.NoError(t, err)
	assert.Equal(t, []string{rec.ID + "/metadata.json", rec.ID + "/resume.pdf"}, keys)

	got, err := repo.GetMetadata(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	data, err := repo.Get(ctx, rec.ID, "resume.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)
}

func TestCVRepository_GetMetadataMissing(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	got, err := repo.GetMetadata(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetMetadata(ctx, "../etc")
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := repo.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCVRepository_GetMetadataCorrupt(t *testing.T) {
	ctx := context.Background()
	repo, store := newTestRepository(t)

	_, err := store.Put(ctx, "bad/metadata.json", []byte("{not json"), "application/json")
	require.NoError(t, err)

	_, err = repo.GetMetadata(ctx, "bad")
	assert.Error(t, err)
}

func TestCVRepository_ListByUser(t *testing.T) {
	ctx := context.Background()
	repo, store := newTestRepository(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.PutMetadata(ctx, record("old", "u1", base)))
	require.NoError(t, repo.PutMetadata(ctx, record("new", "u1", base.Add(48*time.Hour))))
	require.NoError(t, repo.PutMetadata(ctx, record("mid", "u1", base.Add(24*time.Hour))))
	require.NoError(t, repo.PutMetadata(ctx, record("other", "u2", base)))
	_, err := repo.Put(ctx, "new", "cv.txt", []byte("x"))
	require.NoError(t, err)
	_, err = store.Put(ctx, "broken/metadata.json", []byte("garbage"), "application/json")
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, "old", list[2].ID)

	none, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCVRepository_DeleteAll(t *testing.T) {
	ctx := context.Background()
	repo, store := newTestRepository(t)

	require.NoError(t, repo.PutMetadata(ctx, record("cv-1", "u1", time.Now())))
	_, err := repo.Put(ctx, "cv-1", "resume.pdf", []byte("%PDF"))
	require.NoError(t, err)
	require.NoError(t, repo.PutMetadata(ctx, record("cv-10", "u1", time.Now())))

	require.NoError(t, repo.DeleteAll(ctx, "cv-1"))

	keys, err := store.List(ctx, "cv-1/")
	require.NoError(t, err)
	assert.Empty(t, keys)

	survivor, err := repo.GetMetadata(ctx, "cv-10")
	require.NoError(t, err)
	assert.NotNil(t, survivor, "prefix deletion must not touch sibling ids")
}

func TestCVRepository_UserFileCannotReplaceMetadata(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	rec := record("cv-1", "u1", time.Now())
	require.NoError(t, repo.PutMetadata(ctx, rec))
	_, err := repo.Put(ctx, "cv-1", "metadata.json", []byte(`{"id":"evil"}`))
	require.NoError(t, err)

	got, err := repo.GetMetadata(ctx, "cv-1")
	require.NoError(t, err)
	assert.Equal(t, "cv-1", got.ID)

	data, err := repo.Get(ctx, "cv-1", "metadata.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"evil"}`, string(data))
}

func TestStoredFileName(t *testing.T) {
	assert.Equal(t, "cv.pdf", StoredFileName("cv.pdf"))
	assert.Equal(t, "cv.pdf", StoredFileName("../../cv.pdf"))
	assert.Equal(t, "cv.pdf", StoredFileName(`C:\Users\me\cv.pdf`))
	assert.Equal(t, "original-metadata.json", StoredFileName("metadata.json"))
	assert.Equal(t, "upload", StoredFileName(""))
}

type countingStore struct {
	storage.BlobStore
	ensureCalls atomic.Int32
	fail        atomic.Bool
}

func (c *countingStore) EnsureContainer(ctx context.Context) error {
	c.ensureCalls.Add(1)
	time.Sleep(10 * time.Millisecond)
	if c.fail.Load() {
		return errors.New("unavailable")
	}
	return c.BlobStore.EnsureContainer(ctx)
}

func TestCVRepository_LazyContainerCreation(t *testing.T) {
	ctx := context.Background()
	inner, err := storage.NewFilesystem(filepath.Join(t.TempDir(), "cvfiles"), nil)
	require.NoError(t, err)
	store := &countingStore{BlobStore: inner}
	store.fail.Store(true)
	repo := NewCVRepository(store, nil)

	assert.Error(t, repo.Ping(ctx))
	store.fail.Store(false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.GetMetadata(ctx, "x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	calls := store.ensureCalls.Load()
	assert.GreaterOrEqual(t, calls, int32(2))
	assert.Less(t, calls, int32(10))

	require.NoError(t, repo.Ping(ctx))
	assert.Equal(t, calls, store.ensureCalls.Load(), "ready container is not re-created")
}

type gatedStore struct {
	storage.BlobStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) EnsureContainer(ctx context.Context) error {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.BlobStore.EnsureContainer(ctx)
}

func TestCVRepository_ContainerCreationSurvivesCancelledCaller(t *testing.T) {
	inner, err := storage.NewFilesystem(filepath.Join(t.TempDir(), "cvfiles"), nil)
	require.NoError(t, err)
	store := &gatedStore{BlobStore: inner, entered: make(chan struct{}), release: make(chan struct{})}
	repo := NewCVRepository(store, nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- repo.Ping(firstCtx) }()
	<-store.entered

	second := make(chan error, 1)
	go func() { second <- repo.Ping(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	close(store.release)
	assert.NoError(t, <-first)
	assert.NoError(t, <-second)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestCVRepository_RecordJSONShape(t *testing.T) {
	rec := record("cv-1", "u1", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, k := range []string{"id", "userId", "fileName", "uploadDate", "originalText", "status"} {
		assert.Contains(t, fields, k)
	}
	assert.NotContains(t, fields, "parsedData")
	assert.Equal(t, "2024-05-01T10:00:00Z", fields["uploadDate"])
}
