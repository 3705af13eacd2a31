package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scedev/parkpermit/internal/app/models"
	"github.com/scedev/parkpermit/internal/app/models/dto"
	"github.com/scedev/parkpermit/internal/pkg/apperrors"
	"github.com/scedev/parkpermit/internal/pkg/auth"
)

// fakeUserStore is an in-memory userStore.
type fakeUserStore struct {
	users  []*models.User
	nextID int64
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserStore) GetAll(_ context.Context) ([]*models.User, error) {
	return f.users, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) UpdateFields(ctx context.Context, username string, email *string, isAdmin *bool) (*models.User, error) {
	user, err := f.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if email != nil {
		user.Email = *email
	}
	if isAdmin != nil {
		user.IsAdmin = *isAdmin
	}
	return user, nil
}

func (f *fakeUserStore) Delete(_ context.Context, id int64) error {
	for i, u := range f.users {
		if u.ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

func TestCreateUserHashesPassword(t *testing.T) {
	store := &fakeUserStore{}
	svc := NewRosterService(store, &fakeNotifier{})

	user, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "idan",
		Email:    "idan@sce.edu",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	assert.False(t, user.IsAdmin, "new accounts must not start as administrators")
	assert.NotEqual(t, "hunter2hunter2", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "hunter2hunter2"))
}

func TestCreateUserSendsWelcomeEmail(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewRosterService(&fakeUserStore{}, notifier)

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "idan",
		Email:    "idan@sce.edu",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"idan@sce.edu"}, notifier.welcomeEmails)
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	svc := NewRosterService(&fakeUserStore{}, &fakeNotifier{})

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "idan",
		Email:    "idan@sce.edu",
		Password: "short",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateUserRejectsNonCampusEmail(t *testing.T) {
	svc := NewRosterService(&fakeUserStore{}, &fakeNotifier{})

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "idan",
		Email:    "idan@gmail.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := &fakeUserStore{}
	svc := NewRosterService(store, &fakeNotifier{})

	req := dto.CreateUserRequest{Username: "idan", Email: "idan@sce.edu", Password: "hunter2hunter2"}
	_, err := svc.CreateUser(context.Background(), req)
	require.NoError(t, err)

	req.Username = "idan2"
	_, err = svc.CreateUser(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestPromoteUserIsIdempotent(t *testing.T) {
	store := &fakeUserStore{users: []*models.User{{ID: 1, Username: "idan", Email: "idan@sce.edu"}}}
	svc := NewRosterService(store, &fakeNotifier{})

	user, err := svc.PromoteUser(context.Background(), "idan")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)

	user, err = svc.PromoteUser(context.Background(), "idan")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
}

func TestUpdateUserPartialPatch(t *testing.T) {
	store := &fakeUserStore{users: []*models.User{{ID: 1, Username: "idan", Email: "idan@sce.edu", IsAdmin: true}}}
	svc := NewRosterService(store, &fakeNotifier{})

	newEmail := "idan.levi@sce.edu"
	user, err := svc.UpdateUser(context.Background(), "idan", dto.UpdateUserRequest{Email: &newEmail})
	require.NoError(t, err)

	assert.Equal(t, newEmail, user.Email)
	assert.True(t, user.IsAdmin, "untouched fields must keep their value")

	_, err = svc.UpdateUser(context.Background(), "idan", dto.UpdateUserRequest{})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDeleteUser(t *testing.T) {
	store := &fakeUserStore{users: []*models.User{{ID: 7, Username: "idan"}}}
	svc := NewRosterService(store, &fakeNotifier{})

	require.NoError(t, svc.DeleteUser(context.Background(), 7))
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), 7), apperrors.ErrUserNotFound)
}
