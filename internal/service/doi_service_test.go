package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/repository"
)

// faultyContentRepo 在真实仓储之上注入单个方法的故障
type faultyContentRepo struct {
	repository.ContentRepository
	completeErr error
	getErr      error
}

func (r *faultyContentRepo) CompleteDOIRegistration(id uint, doi, message string) (bool, error) {
	if r.completeErr != nil {
		return false, r.completeErr
	}
	return r.ContentRepository.CompleteDOIRegistration(id, doi, message)
}

func (r *faultyContentRepo) GetByID(id uint) (*models.Content, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.ContentRepository.GetByID(id)
}

func TestRegisterDOIReleasesClaimWhenPersistFails(t *testing.T) {
	env := setupServiceTestEnv(t, "doi_persist_fail")
	content := env.createContent(t, "persist-fail", constants.ContentStatusPublished)
	repo := &faultyContentRepo{ContentRepository: env.contentRepo, completeErr: errors.New("connection reset")}
	depositor := &stubDepositor{}
	doiSvc := NewDOIService(testCrossrefConfig(), repo, depositor)

	result := doiSvc.RegisterDOI(context.Background(), content.ID)
	if result.Success || result.Error != "persist doi failed" {
		t.Fatalf("unexpected result: %+v", result)
	}

	reloaded, err := env.contentRepo.GetByID(content.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.CrossrefStatus != constants.CrossrefStatusFailed || reloaded.CrossrefClaimedAt != nil {
		t.Fatalf("claim should be released as failed, got status=%s claimed_at=%v", reloaded.CrossrefStatus, reloaded.CrossrefClaimedAt)
	}

	// 占用已释放，立刻重试即可再次提交
	repo.completeErr = nil
	retry := doiSvc.RegisterDOI(context.Background(), content.ID)
	if !retry.Success || atomic.LoadInt32(&depositor.calls) != 2 {
		t.Fatalf("retry should deposit again, result=%+v calls=%d", retry, depositor.calls)
	}
}

func TestRegisterDOIUnclaimedLoadErrorIsNotContention(t *testing.T) {
	env := setupServiceTestEnv(t, "doi_unclaimed_load")
	content := env.createContent(t, "held", constants.ContentStatusPublished)
	now := time.Now()
	if claimed, err := env.contentRepo.ClaimDOIRegistration(content.ID, now, now.Add(-time.Minute)); err != nil || !claimed {
		t.Fatalf("pre-claim failed: claimed=%v err=%v", claimed, err)
	}
	repo := &faultyContentRepo{ContentRepository: env.contentRepo, getErr: errors.New("db unavailable")}
	doiSvc := NewDOIService(testCrossrefConfig(), repo, &stubDepositor{})

	result := doiSvc.RegisterDOI(context.Background(), content.ID)
	if result.Success || result.Error != "load content failed" {
		t.Fatalf("expected load error, got %+v", result)
	}
	if result.Message == "registration already in progress" {
		t.Fatalf("load failure reported as contention")
	}
}
