package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fadilmartias/cv-optimizer/internal/apperror"
	"github.com/fadilmartias/cv-optimizer/internal/event"
	"github.com/fadilmartias/cv-optimizer/internal/logger"
	"github.com/fadilmartias/cv-optimizer/internal/model"
	"github.com/fadilmartias/cv-optimizer/internal/util"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultTextFileName = "pasted-cv.txt"

type CVStore interface {
	Put(ctx context.Context, cvID, fileName string, data []byte) (string, error)
	PutMetadata(ctx context.Context, rec *model.CVRecord) error
	GetMetadata(ctx context.Context, cvID string) (*model.CVRecord, error)
	ListByUser(ctx context.Context, userID string) ([]model.CVRecord, error)
	DeleteAll(ctx context.Context, cvID string) error
}

type CVAnalyzer interface {
	ParseCV(ctx context.Context, text string) (*model.ParsedCV, error)
	OptimizeCV(ctx context.Context, text string, parsed *model.ParsedCV) (*model.OptimizedCV, error)
	MatchJob(ctx context.Context, cvText, jobDescription string) (*model.JobMatchResult, error)
	CareerInsights(ctx context.Context, parsed *model.ParsedCV) (*model.CareerInsight, error)
}

// CVUsecase owns the CV lifecycle. Writes to one CV are serialized within
// the process. LLM calls run unlocked and their results are applied to a
// record re-read under the lock.
type CVUsecase struct {
	repo      CVStore
	llm       CVAnalyzer
	publisher event.Publisher
	log       logger.Logger
	locks     cvLocks
	now       func() time.Time
}

func NewCVUsecase(repo CVStore, llm CVAnalyzer, publisher event.Publisher, log logger.Logger) *CVUsecase {
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &CVUsecase{
		repo:      repo,
		llm:       llm,
		publisher: publisher,
		log:       log.With(zap.String("component", "cv_usecase")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// update re-reads the record under its lock and persists whatever apply
// leaves on it. A record deleted in the meantime is reported as NOT_FOUND.
func (uc *CVUsecase) update(ctx context.Context, userID, cvID string, apply func(rec *model.CVRecord) error) (*model.CVRecord, error) {
	unlock, err := uc.locks.acquire(ctx, cvID)
	if err != nil {
		return nil, apperror.NewInternal("Request cancelled while waiting for CV", err)
	}
	defer unlock()

	rec, err := uc.Get(ctx, userID, cvID)
	if err != nil {
		return nil, err
	}
	if err := apply(rec); err != nil {
		return nil, err
	}
	if err := uc.repo.PutMetadata(ctx, rec); err != nil {
		return nil, apperror.NewInternal("Failed to save CV", err)
	}
	return rec, nil
}

// UploadFile stores a pdf, docx or txt document after extracting its text.
func (uc *CVUsecase) UploadFile(ctx context.Context, userID, fileName string, data []byte) (*model.CVRecord, error) {
	if !util.IsSupportedFile(fileName) {
		return nil, apperror.New(apperror.CodeInvalidFileType, "Only PDF, DOCX and TXT files are supported", nil)
	}
	text, err := util.ExtractText(fileName, data)
	if err != nil {
		if errors.Is(err, util.ErrUnsupportedFileType) {
			return nil, apperror.New(apperror.CodeInvalidFileType, "Only PDF, DOCX and TXT files are supported", err)
		}
		return nil, apperror.New(apperror.CodeExtraction, "Could not extract text from the uploaded file", err)
	}
	if text == "" {
		return nil, apperror.New(apperror.CodeEmptyDocument, "The uploaded file contains no readable text", nil)
	}
	return uc.create(ctx, userID, fileName, data, text)
}

// UploadText stores pasted CV text. fileName defaults to pasted-cv.txt.
func (uc *CVUsecase) UploadText(ctx context.Context, userID, text, fileName string) (*model.CVRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.NewInvalidInput("CV text is required")
	}
	if strings.TrimSpace(fileName) == "" {
		fileName = DefaultTextFileName
	}
	return uc.create(ctx, userID, fileName, []byte(text), text)
}

func (uc *CVUsecase) create(ctx context.Context, userID, fileName string, data []byte, text string) (*model.CVRecord, error) {
	rec := &model.CVRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		FileName:     fileName,
		UploadDate:   uc.now(),
		OriginalText: text,
		Status:       model.CVStatusProcessing,
	}

	url, err := uc.repo.Put(ctx, rec.ID, fileName, data)
	if err != nil {
		return nil, apperror.NewInternal("Failed to store CV", err)
	}
	rec.BlobURL = url

	if err := uc.repo.PutMetadata(ctx, rec); err != nil {
		if cleanupErr := uc.repo.DeleteAll(ctx, rec.ID); cleanupErr != nil {
			uc.log.Error("failed to remove orphaned cv blob", cleanupErr, zap.String("cv_id", rec.ID))
		}
		return nil, apperror.NewInternal("Failed to store CV metadata", err)
	}

	uc.log.Info("cv uploaded", zap.String("cv_id", rec.ID), zap.String("user_id", userID), zap.Int("bytes", len(data)))
	uc.publish(ctx, event.TypeUploaded, rec)
	return rec, nil
}

// Get returns NOT_FOUND for missing records and for records owned by
// another user.
func (uc *CVUsecase) Get(ctx context.Context, userID, cvID string) (*model.CVRecord, error) {
	if strings.TrimSpace(cvID) == "" {
		return nil, apperror.NewInvalidInput("CV ID is required")
	}
	rec, err := uc.repo.GetMetadata(ctx, cvID)
	if err != nil {
		return nil, apperror.NewInternal("Failed to load CV", err)
	}
	if rec == nil || rec.UserID != userID {
		return nil, apperror.NewNotFound("CV", cvID)
	}
	return rec, nil
}

func (uc *CVUsecase) List(ctx context.Context, userID string) ([]model.CVRecord, error) {
	records, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal("Failed to list CVs", err)
	}
	return records, nil
}

// Parse extracts structured data and stores it on the record. The status
// is left as it is.
func (uc *CVUsecase) Parse(ctx context.Context, userID, cvID string) (*model.ParsedCV, error) {
	rec, err := uc.Get(ctx, userID, cvID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rec.OriginalText) == "" {
		return nil, apperror.NewInvalidState("CV text not available for parsing")
	}

	parsed, err := uc.llm.ParseCV(ctx, rec.OriginalText)
	if err != nil {
		return nil, apperror.New(apperror.CodeParse, "Failed to parse CV", err)
	}

	rec, err = uc.update(ctx, userID, cvID, func(rec *model.CVRecord) error {
		rec.ParsedData = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, event.TypeParsed, rec)
	return parsed, nil
}

// Optimize commits the optimization and the completed status together, or
// nothing at all.
func (uc *CVUsecase) Optimize(ctx context.Context, userID, cvID string) (*model.OptimizedCV, error) {
	rec, err := uc.Get(ctx, userID, cvID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rec.OriginalText) == "" {
		return nil, apperror.NewInvalidState("CV text not available for optimization")
	}
	if !model.CanTransition(rec.Status, model.CVStatusCompleted) {
		return nil, apperror.NewInvalidState("CV cannot be optimized in status " + string(rec.Status))
	}

	optimized, err := uc.llm.OptimizeCV(ctx, rec.OriginalText, rec.ParsedData)
	if err != nil {
		return nil, apperror.New(apperror.CodeOptimization, "Failed to optimize CV", err)
	}

	rec, err = uc.update(ctx, userID, cvID, func(rec *model.CVRecord) error {
		if err := rec.Transition(model.CVStatusCompleted); err != nil {
			return apperror.New(apperror.CodeInvalidState, "CV cannot be optimized", err)
		}
		rec.OptimizedData = optimized
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, event.TypeOptimized, rec)
	return optimized, nil
}

// Match compares the CV with a job description. The result is not stored.
func (uc *CVUsecase) Match(ctx context.Context, userID, cvID, jobDescription string) (*model.JobMatchResult, error) {
	if strings.TrimSpace(cvID) == "" {
		return nil, apperror.NewInvalidInput("CV ID is required")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, apperror.NewInvalidInput("Job description is required")
	}
	rec, err := uc.Get(ctx, userID, cvID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rec.OriginalText) == "" {
		return nil, apperror.NewInvalidState("CV text not available for job matching")
	}

	result, err := uc.llm.MatchJob(ctx, rec.OriginalText, jobDescription)
	if err != nil {
		return nil, apperror.New(apperror.CodeMatch, "Failed to match CV with job", err)
	}
	return result, nil
}

func (uc *CVUsecase) Insights(ctx context.Context, userID, cvID string) (*model.CareerInsight, error) {
	rec, err := uc.Get(ctx, userID, cvID)
	if err != nil {
		return nil, err
	}
	if rec.ParsedData == nil {
		return nil, apperror.NewInvalidState("CV must be parsed before generating career insights")
	}

	insights, err := uc.llm.CareerInsights(ctx, rec.ParsedData)
	if err != nil {
		return nil, apperror.New(apperror.CodeInsights, "Failed to generate career insights", err)
	}
	return insights, nil
}

func (uc *CVUsecase) Delete(ctx context.Context, userID, cvID string) error {
	if strings.TrimSpace(cvID) == "" {
		return apperror.NewInvalidInput("CV ID is required")
	}
	unlock, err := uc.locks.acquire(ctx, cvID)
	if err != nil {
		return apperror.NewInternal("Request cancelled while waiting for CV", err)
	}
	defer unlock()

	rec, err := uc.Get(ctx, userID, cvID)
	if err != nil {
		return err
	}
	if err := uc.repo.DeleteAll(ctx, cvID); err != nil {
		return apperror.NewInternal("Failed to delete CV", err)
	}
	uc.log.Info("cv deleted", zap.String("cv_id", cvID))
	uc.publish(ctx, event.TypeDeleted, rec)
	return nil
}

func (uc *CVUsecase) publish(ctx context.Context, typ string, rec *model.CVRecord) {
	if err := uc.publisher.Publish(ctx, event.NewCVStatusEvent(typ, rec)); err != nil {
		uc.log.Warn("failed to publish cv event", zap.String("type", typ), zap.String("cv_id", rec.ID), zap.Error(err))
	}
}
