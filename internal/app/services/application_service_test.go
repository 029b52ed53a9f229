package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
)

type fakeMissingTypes struct {
	missing []string
}

func (f *fakeMissingTypes) MissingTypes(ctx context.Context, studentID, applicationID int64) ([]string, error) {
	return f.missing, nil
}

func newApplicationFixture(t *testing.T, missing []string) (ApplicationService, *fakeApplicationStore) {
	t.Helper()
	student := &models.Student{
		ID:     3,
		UserID: 30,
		User:   &models.User{ID: 30, Email: "student@example.com", FirstName: "Ayesha", LastName: "Khan"},
	}
	apps := newFakeApplicationStore()
	svc := NewApplicationService(apps, newFakeStudentStore(student), &fakeMissingTypes{missing: missing},
		fakeTx{}, &fakeNotifier{}, zerolog.Nop())
	return svc, apps
}

func submitApplication(t *testing.T, svc ApplicationService) *dto.ApplicationResponse {
	t.Helper()
	fx := 280.0
	resp, err := svc.Create(context.Background(), Caller{UserID: 30, Role: models.RoleStudent}, &dto.CreateApplicationRequest{
		Term:        "Fall 2026",
		AmountLocal: 280000,
		Currency:    "PKR",
		FxRate:      &fx,
	})
	require.NoError(t, err)
	return resp
}

func TestApplicationCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("student submits and starts pending", func(t *testing.T) {
		svc, _ := newApplicationFixture(t, nil)
		resp := submitApplication(t, svc)

		assert.Equal(t, string(models.ApplicationStatusPending), resp.Status)
		assert.Equal(t, int64(3), resp.StudentID)
		assert.Nil(t, resp.AmountUSD)
	})

	t.Run("submitted fx rate and notes are persisted", func(t *testing.T) {
		svc, store := newApplicationFixture(t, nil)
		fx := 280.0
		resp, err := svc.Create(ctx, Caller{UserID: 30, Role: models.RoleStudent}, &dto.CreateApplicationRequest{
			Term:        "Fall 2026",
			AmountLocal: 280000,
			Currency:    "PKR",
			FxRate:      &fx,
			Notes:       "fee invoice attached",
		})
		require.NoError(t, err)

		stored, err := store.GetByID(ctx, resp.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.FxRate)
		assert.Equal(t, fx, *stored.FxRate)
		assert.Equal(t, "fee invoice attached", stored.Notes)
	})

	t.Run("only students may submit", func(t *testing.T) {
		svc, _ := newApplicationFixture(t, nil)
		_, err := svc.Create(ctx, Caller{UserID: 7, Role: models.RoleDonor}, &dto.CreateApplicationRequest{
			Term: "Fall 2026", AmountLocal: 1000, Currency: "USD",
		})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}

func TestApplicationStatusTransitions(t *testing.T) {
	ctx := context.Background()
	admin := Caller{UserID: 1, Role: models.RoleAdmin}

	t.Run("approval snapshots the USD amount", func(t *testing.T) {
		svc, _ := newApplicationFixture(t, nil)
		app := submitApplication(t, svc)

		resp, err := svc.UpdateStatus(ctx, admin, app.ID, &dto.UpdateApplicationStatusRequest{
			Status: string(models.ApplicationStatusApproved),
		})
		require.NoError(t, err)

		assert.Equal(t, string(models.ApplicationStatusApproved), resp.Status)
		require.NotNil(t, resp.AmountUSD)
		assert.Equal(t, 1000.0, *resp.AmountUSD)
		assert.NotNil(t, resp.ApprovedAt)
		assert.False(t, resp.ForceApproved)
	})

	t.Run("fx rate override wins over the submitted rate", func(t *testing.T) {
		svc, _ := newApplicationFixture(t, nil)
		app := submitApplication(t, svc)

		override := 140.0
		resp, err := svc.UpdateStatus(ctx, admin, app.ID, &dto.UpdateApplicationStatusRequest{
			Status: string(models.ApplicationStatusApproved),
			FxRate: &override,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.AmountUSD)
		assert.Equal(t, 2000.0, *resp.AmountUSD)
	})

	t.Run("missing documents block approval", func(t *testing.T) {
		svc, _ := newApplicationFixture(t, []string{"INCOME_CERTIFICATE"})
		app := submitApplication(t, svc)

		_, err := svc.UpdateStatus(ctx, admin, app.ID, &dto.UpdateApplicationStatusRequest{
			Status: string(models.ApplicationStatusApproved),
		})
		require.ErrorIs(t, err, apperrors.ErrIncompleteDocuments)
		assert.Equal(t, []string{"INCOME_CERTIFICATE"}, apperrors.MissingDocuments(err))
	})

	t.Run("force approve bypasses the document gate", func(t *testing.T) {
		svc, _ := newApplicationFixture(t, []string{"INCOME_CERTIFICATE"})
		app := submitApplication(t, svc)

		resp, err := svc.UpdateStatus(ctx, admin, app.ID, &dto.UpdateApplicationStatusRequest{
			Status:       string(models.ApplicationStatusApproved),
			ForceApprove: true,
		})
		require.NoError(t, err)
		assert.True(t, resp.ForceApproved)
		require.NotNil(t, resp.AmountUSD)
		assert.Equal(t, 1000.0, *resp.AmountUSD)
		assert.Contains(t, resp.Notes, fmt.Sprintf("Document gate bypassed by user %d", admin.UserID))
	})

	t.Run("illegal transition is rejected with both states", func(t *testing.T) {
		svc, _ := newApplicationFixture(t, nil)
		app := submitApplication(t, svc)

		_, err := svc.UpdateStatus(ctx, admin, app.ID, &dto.UpdateApplicationStatusRequest{
			Status: string(models.ApplicationStatusApproved),
		})
		require.NoError(t, err)

		_, err = svc.UpdateStatus(ctx, admin, app.ID, &dto.UpdateApplicationStatusRequest{
			Status: string(models.ApplicationStatusRejected),
		})
		require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

		var ce *apperrors.CustomError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "APPROVED", ce.Details["from"])
		assert.Equal(t, "REJECTED", ce.Details["to"])
	})

	t.Run("setting the same status is a no-op update", func(t *testing.T) {
		svc, _ := newApplicationFixture(t, nil)
		app := submitApplication(t, svc)

		note := "resubmitted with new invoice"
		resp, err := svc.UpdateStatus(ctx, admin, app.ID, &dto.UpdateApplicationStatusRequest{
			Status: string(models.ApplicationStatusPending),
			Notes:  &note,
		})
		require.NoError(t, err)
		assert.Equal(t, string(models.ApplicationStatusPending), resp.Status)
		assert.Equal(t, note, resp.Notes)
	})

	t.Run("reset to pending clears the approval snapshot", func(t *testing.T) {
		svc, _ := newApplicationFixture(t, nil)
		app := submitApplication(t, svc)

		_, err := svc.UpdateStatus(ctx, admin, app.ID, &dto.UpdateApplicationStatusRequest{
			Status:       string(models.ApplicationStatusApproved),
			ForceApprove: true,
		})
		require.NoError(t, err)

		resp, err := svc.UpdateStatus(ctx, admin, app.ID, &dto.UpdateApplicationStatusRequest{
			Status: string(models.ApplicationStatusPending),
		})
		require.NoError(t, err)
		assert.Equal(t, string(models.ApplicationStatusPending), resp.Status)
		assert.Nil(t, resp.ApprovedAt)
		assert.False(t, resp.ForceApproved)
		assert.Nil(t, resp.AmountUSD)
	})

	t.Run("unknown status is rejected before the transaction", func(t *testing.T) {
		svc, _ := newApplicationFixture(t, nil)
		app := submitApplication(t, svc)

		_, err := svc.UpdateStatus(ctx, admin, app.ID, &dto.UpdateApplicationStatusRequest{Status: "SHIPPED"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	})

	t.Run("non-admins cannot drive the state machine", func(t *testing.T) {
		svc, _ := newApplicationFixture(t, nil)
		app := submitApplication(t, svc)

		_, err := svc.UpdateStatus(ctx, Caller{UserID: 2, Role: models.RoleSubAdmin}, app.ID, &dto.UpdateApplicationStatusRequest{
			Status: string(models.ApplicationStatusProcessing),
		})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}

func TestApplicationRead(t *testing.T) {
	ctx := context.Background()

	t.Run("student sees only their own application", func(t *testing.T) {
		svc, _ := newApplicationFixture(t, nil)
		app := submitApplication(t, svc)

		_, err := svc.GetByID(ctx, Caller{UserID: 30, Role: models.RoleStudent}, app.ID)
		require.NoError(t, err)

		_, err = svc.GetByID(ctx, Caller{UserID: 99, Role: models.RoleStudent}, app.ID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("student listing is scoped regardless of filter", func(t *testing.T) {
		svc, _ := newApplicationFixture(t, nil)
		submitApplication(t, svc)

		other := int64(999)
		resp, err := svc.List(ctx, Caller{UserID: 30, Role: models.RoleStudent}, &dto.ApplicationFilterRequest{
			StudentID: &other,
		})
		require.NoError(t, err)
		require.Len(t, resp.Applications, 1)
		assert.Equal(t, int64(3), resp.Applications[0].StudentID)
	})
}
