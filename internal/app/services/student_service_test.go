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

func newStudentFixture(t *testing.T, apps ...*models.Application) (StudentService, *fakeStudentStore) {
	t.Helper()
	student := &models.Student{
		ID:         3,
		UserID:     30,
		University: "NUST",
		Program:    "BS Computer Science",
		FundedUSD:  600,
		User:       &models.User{ID: 30, FirstName: "Ayesha", LastName: "Khan"},
	}
	students := newFakeStudentStore(student)
	svc := NewStudentService(students, newFakeApplicationStore(apps...), zerolog.Nop())
	return svc, students
}

func TestStudentGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("need derives from the approved application", func(t *testing.T) {
		svc, _ := newStudentFixture(t, approvedApplication(1, 3, 1000))

		resp, err := svc.GetByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 1000.0, resp.NeedUSD)
		assert.Equal(t, 600.0, resp.FundedUSD)
		assert.Equal(t, "Ayesha", resp.FirstName)
	})

	t.Run("need is zero without an approved application", func(t *testing.T) {
		svc, _ := newStudentFixture(t)

		resp, err := svc.GetByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 0.0, resp.NeedUSD)
	})

	t.Run("unknown student", func(t *testing.T) {
		svc, _ := newStudentFixture(t)
		_, err := svc.GetByID(ctx, 99)
		assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	})
}

func TestStudentGetOwn(t *testing.T) {
	ctx := context.Background()
	svc, _ := newStudentFixture(t, approvedApplication(1, 3, 1000))

	resp, err := svc.GetOwn(ctx, Caller{UserID: 30, Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.ID)
}

func TestStudentUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("owning student patches their profile", func(t *testing.T) {
		svc, students := newStudentFixture(t)

		program := "MS Data Science"
		resp, err := svc.UpdateProfile(ctx, Caller{UserID: 30, Role: models.RoleStudent}, 3, &dto.UpdateStudentRequest{
			Program: &program,
		})
		require.NoError(t, err)
		assert.Equal(t, program, resp.Program)
		assert.Equal(t, "NUST", resp.University)

		stored, err := students.GetByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, program, stored.Program)
	})

	t.Run("funding fields are untouched by a profile update", func(t *testing.T) {
		svc, students := newStudentFixture(t)

		program := "MS Data Science"
		_, err := svc.UpdateProfile(ctx, Caller{UserID: 1, Role: models.RoleAdmin}, 3, &dto.UpdateStudentRequest{
			Program: &program,
		})
		require.NoError(t, err)

		stored, err := students.GetByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 600.0, stored.FundedUSD)
	})

	t.Run("another student is rejected", func(t *testing.T) {
		svc, _ := newStudentFixture(t)

		program := "MS Data Science"
		_, err := svc.UpdateProfile(ctx, Caller{UserID: 99, Role: models.RoleStudent}, 3, &dto.UpdateStudentRequest{
			Program: &program,
		})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}

func TestStudentList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newStudentFixture(t, approvedApplication(1, 3, 1000))

	resp, err := svc.List(ctx, &dto.StudentFilterRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Students, 1)
	assert.Equal(t, 1000.0, resp.Students[0].NeedUSD)

	sponsored := true
	resp, err = svc.List(ctx, &dto.StudentFilterRequest{Sponsored: &sponsored})
	require.NoError(t, err)
	assert.Empty(t, resp.Students)
}
