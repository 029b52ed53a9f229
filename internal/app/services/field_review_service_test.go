package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
)

func newFieldReviewFixture(t *testing.T) (FieldReviewService, *fakeFieldReviewStore) {
	t.Helper()
	student := &models.Student{
		ID:     3,
		UserID: 30,
		User:   &models.User{ID: 30, Email: "student@example.com", FirstName: "Ayesha", LastName: "Khan"},
	}
	officer := &models.User{ID: 2, Email: "officer@example.com", RoleType: models.RoleSubAdmin}
	donor := &models.User{ID: 7, Email: "donor@example.com", RoleType: models.RoleDonor}
	app := &models.Application{ID: 1, StudentID: 3, Status: models.ApplicationStatusProcessing}

	reviews := &fakeFieldReviewStore{}
	svc := NewFieldReviewService(reviews, newFakeApplicationStore(app), newFakeStudentStore(student),
		newFakeUserStore(officer, donor), &fakeNotifier{}, zerolog.Nop())
	return svc, reviews
}

func assignReview(t *testing.T, svc FieldReviewService) *dto.FieldReviewResponse {
	t.Helper()
	resp, err := svc.Assign(context.Background(), Caller{UserID: 1, Role: models.RoleAdmin}, &dto.AssignFieldReviewRequest{
		ApplicationID: 1, StudentID: 3, OfficerUserID: 2,
	})
	require.NoError(t, err)
	return resp
}

func TestFieldReviewAssign(t *testing.T) {
	ctx := context.Background()

	t.Run("admin assigns a field officer", func(t *testing.T) {
		svc, _ := newFieldReviewFixture(t)
		resp := assignReview(t, svc)

		assert.Equal(t, int64(2), resp.OfficerID)
		assert.Equal(t, string(models.FieldReviewStatusPending), resp.Status)
	})

	t.Run("assignee must hold the officer role", func(t *testing.T) {
		svc, _ := newFieldReviewFixture(t)
		_, err := svc.Assign(ctx, Caller{UserID: 1, Role: models.RoleAdmin}, &dto.AssignFieldReviewRequest{
			ApplicationID: 1, StudentID: 3, OfficerUserID: 7,
		})
		assert.ErrorIs(t, err, apperrors.ErrNotAFieldOfficer)
	})

	t.Run("application must belong to the student", func(t *testing.T) {
		svc, _ := newFieldReviewFixture(t)
		_, err := svc.Assign(ctx, Caller{UserID: 1, Role: models.RoleAdmin}, &dto.AssignFieldReviewRequest{
			ApplicationID: 1, StudentID: 99, OfficerUserID: 2,
		})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("officers cannot assign", func(t *testing.T) {
		svc, _ := newFieldReviewFixture(t)
		_, err := svc.Assign(ctx, Caller{UserID: 2, Role: models.RoleSubAdmin}, &dto.AssignFieldReviewRequest{
			ApplicationID: 1, StudentID: 3, OfficerUserID: 2,
		})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("reassignment stacks a new review", func(t *testing.T) {
		svc, reviews := newFieldReviewFixture(t)
		assignReview(t, svc)
		assignReview(t, svc)

		list, err := reviews.ListByOfficer(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestFieldReviewRequestMissingInfo(t *testing.T) {
	ctx := context.Background()
	officer := Caller{UserID: 2, Role: models.RoleSubAdmin}

	t.Run("officer records a structured request", func(t *testing.T) {
		svc, _ := newFieldReviewFixture(t)
		review := assignReview(t, svc)

		resp, err := svc.RequestMissingInfo(ctx, officer, review.ID, &dto.RequestMissingInfoRequest{
			Items: []string{"INCOME_CERTIFICATE", "UTILITY_BILL"},
			Note:  "latest copies please",
		})
		require.NoError(t, err)
		assert.Equal(t, string(models.FieldReviewStatusInfoRequested), resp.Status)
		require.Len(t, resp.Requests, 1)
		assert.Equal(t, []string{"INCOME_CERTIFICATE", "UTILITY_BILL"}, resp.Requests[0].Items)
	})

	t.Run("only the assigned officer may request", func(t *testing.T) {
		svc, _ := newFieldReviewFixture(t)
		review := assignReview(t, svc)

		_, err := svc.RequestMissingInfo(ctx, Caller{UserID: 8, Role: models.RoleSubAdmin}, review.ID, &dto.RequestMissingInfoRequest{
			Items: []string{"PHOTO"},
		})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}

func TestFieldReviewComplete(t *testing.T) {
	ctx := context.Background()
	officer := Caller{UserID: 2, Role: models.RoleSubAdmin}

	t.Run("completion stores the recommendation", func(t *testing.T) {
		svc, _ := newFieldReviewFixture(t)
		review := assignReview(t, svc)

		resp, err := svc.Complete(ctx, officer, review.ID, &dto.CompleteFieldReviewRequest{
			Recommendation: string(models.RecommendationApprove),
			Notes:          "household verified in person",
		})
		require.NoError(t, err)
		assert.Equal(t, string(models.FieldReviewStatusCompleted), resp.Status)
		require.NotNil(t, resp.Recommendation)
		assert.Equal(t, string(models.RecommendationApprove), *resp.Recommendation)
	})

	t.Run("a completed review cannot be reopened", func(t *testing.T) {
		svc, _ := newFieldReviewFixture(t)
		review := assignReview(t, svc)

		_, err := svc.Complete(ctx, officer, review.ID, &dto.CompleteFieldReviewRequest{
			Recommendation: string(models.RecommendationReject),
		})
		require.NoError(t, err)

		_, err = svc.Complete(ctx, officer, review.ID, &dto.CompleteFieldReviewRequest{
			Recommendation: string(models.RecommendationApprove),
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

		_, err = svc.RequestMissingInfo(ctx, officer, review.ID, &dto.RequestMissingInfoRequest{Items: []string{"PHOTO"}})
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})

	t.Run("unknown recommendation is rejected", func(t *testing.T) {
		svc, _ := newFieldReviewFixture(t)
		review := assignReview(t, svc)

		_, err := svc.Complete(ctx, officer, review.ID, &dto.CompleteFieldReviewRequest{Recommendation: "MAYBE"})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestFieldReviewQueues(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFieldReviewFixture(t)
	assignReview(t, svc)

	t.Run("officer reads own queue", func(t *testing.T) {
		resp, err := svc.ListByOfficer(ctx, Caller{UserID: 2, Role: models.RoleSubAdmin}, 2)
		require.NoError(t, err)
		assert.Len(t, resp.Reviews, 1)
	})

	t.Run("officers cannot read another queue", func(t *testing.T) {
		_, err := svc.ListByOfficer(ctx, Caller{UserID: 8, Role: models.RoleSubAdmin}, 2)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("staff read the latest review by application", func(t *testing.T) {
		resp, err := svc.GetByApplication(ctx, Caller{UserID: 2, Role: models.RoleSubAdmin}, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.ApplicationID)

		_, err = svc.GetByApplication(ctx, Caller{UserID: 7, Role: models.RoleDonor}, 1)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}
