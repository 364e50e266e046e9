package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/delivery/http/helpers"
	"roombook/internal/delivery/http/middleware"
	"roombook/internal/domain"
)

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	registerErr error
	registered  *domain.User
	loginToken  string
	loginUser   *domain.User
	loginErr    error
	refreshed   string
	refreshErr  error
	members     []*domain.Member
	total       int
	gotParams   domain.PaginationParams
	member      *domain.Member
	updated     *domain.User
	gotPatch    domain.UserPatch
	err         error
}

func (f *fakeUserService) Verify(ctx context.Context, token string) (string, string, error) {
	return testUserID, token, nil
}

func (f *fakeUserService) Register(ctx context.Context, user *domain.User, password string) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	user.ID = testUserID
	f.registered = user
	return nil
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.loginToken, f.loginUser, nil
}

func (f *fakeUserService) RefreshToken(ctx context.Context, token string) (string, error) {
	return f.refreshed, f.refreshErr
}

func (f *fakeUserService) ListVisible(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Member, int, error) {
	f.gotParams = params
	return f.members, f.total, f.err
}

func (f *fakeUserService) GetVisible(ctx context.Context, id, userID string) (*domain.Member, error) {
	return f.member, f.err
}

func (f *fakeUserService) Update(ctx context.Context, id, userID string, patch domain.UserPatch) (*domain.User, error) {
	f.gotPatch = patch
	return f.updated, f.err
}

func (f *fakeUserService) Delete(ctx context.Context, id, userID string) error {
	return f.err
}

func TestUserController_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodyCode   string
		wantBodySubstr string
	}{
		{
			name:       "success",
			body:       `{"email":"ada@example.com","password":"correct-horse","first_name":"Ada","last_name":"Lovelace","country":"UK"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:           "invalid email",
			body:           `{"email":"ada","password":"correct-horse","first_name":"Ada","last_name":"Lovelace"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "invalid email format",
		},
		{
			name:           "short password",
			body:           `{"email":"ada@example.com","password":"short","first_name":"Ada","last_name":"Lovelace"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "at least 8",
		},
		{
			name:           "missing names",
			body:           `{"email":"ada@example.com","password":"correct-horse"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "first_name is required",
		},
		{
			name:         "duplicate email",
			body:         `{"email":"ada@example.com","password":"correct-horse","first_name":"Ada","last_name":"Lovelace"}`,
			fakeErr:      domain.ErrDuplicateEmail,
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{registerErr: tt.fakeErr}
			ctrl := NewUserController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "http://test/users/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.Register(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var u domain.User
			envelope := decodeEnvelope(t, rr, &u)
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				assert.Equal(t, testUserID, u.ID)
				assert.Equal(t, "Ada", u.FirstName)
				assert.Equal(t, "UK", u.Country)
				assert.NotContains(t, rr.Body.String(), "correct-horse")
				return
			}
			require.NotNil(t, envelope.Error)
			if tt.wantBodyCode != "" {
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
			if tt.wantBodySubstr != "" {
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestUserController_Login(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		body         string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{name: "success", body: `{"email":"ada@example.com","password":"correct-horse"}`, wantStatus: http.StatusOK},
		{name: "missing password", body: `{"email":"ada@example.com"}`, wantStatus: http.StatusBadRequest, wantBodyCode: helpers.ErrCodeBadRequest},
		{
			name:         "bad credentials",
			body:         `{"email":"ada@example.com","password":"wrong-horse"}`,
			fakeErr:      fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized),
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{
				loginToken: "token-xyz",
				loginUser:  &domain.User{ID: testUserID, Email: "ada@example.com", FirstName: "Ada", CreatedAt: now, UpdatedAt: now},
				loginErr:   tt.fakeErr,
			}
			ctrl := NewUserController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "http://test/users/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.Login(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var resp LoginResponse
			envelope := decodeEnvelope(t, rr, &resp)
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				assert.Equal(t, "token-xyz", resp.JWT)
				require.NotNil(t, resp.User)
				assert.Equal(t, testUserID, resp.User.ID)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestUserController_RefreshToken(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctrl := NewUserController(testLogger, &fakeUserService{refreshed: "token-2"})
		rr := httptest.NewRecorder()
		ctrl.RefreshToken(rr, httptest.NewRequest(http.MethodPost, "http://test/users/token-refresh", bytes.NewBufferString(`{"jwt":"token-1"}`)))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp TokenResponse
		decodeEnvelope(t, rr, &resp)
		assert.Equal(t, "token-2", resp.JWT)
	})

	t.Run("expired", func(t *testing.T) {
		ctrl := NewUserController(testLogger, &fakeUserService{refreshErr: domain.ErrUnauthorized})
		rr := httptest.NewRecorder()
		ctrl.RefreshToken(rr, httptest.NewRequest(http.MethodPost, "http://test/users/token-refresh", bytes.NewBufferString(`{"jwt":"token-1"}`)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		ctrl := NewUserController(testLogger, &fakeUserService{})
		rr := httptest.NewRecorder()
		ctrl.RefreshToken(rr, httptest.NewRequest(http.MethodPost, "http://test/users/token-refresh", bytes.NewBufferString(`{}`)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUserController_List(t *testing.T) {
	fake := &fakeUserService{
		members: []*domain.Member{{User: &domain.User{ID: testUserID, FirstName: "Ada"}, SpaceIDs: []string{testSpaceID}}},
		total:   21,
	}
	ctrl := NewUserController(testLogger, fake)
	rr := httptest.NewRecorder()
	ctrl.List(rr, authed(httptest.NewRequest(http.MethodGet, "http://test/users?page=2&page_size=20", nil)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: 20}, fake.gotParams)
	var resp UserListResponse
	decodeEnvelope(t, rr, &resp)
	assert.Equal(t, 21, resp.UserCount)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "Ada", resp.Users[0].FirstName)
	assert.Equal(t, []string{testSpaceID}, resp.Users[0].SpaceIDs)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
}

func TestUserController_Get(t *testing.T) {
	tests := []struct {
		name          string
		contextUserID string
		pathID        string
		fakeErr       error
		wantStatus    int
		wantBodyCode  string
	}{
		{name: "success", contextUserID: testUserID, pathID: testUserID, wantStatus: http.StatusOK},
		{name: "no user in context", pathID: testUserID, wantStatus: http.StatusUnauthorized, wantBodyCode: helpers.ErrCodeUnauthorized},
		{name: "invalid id", contextUserID: testUserID, pathID: "me", wantStatus: http.StatusBadRequest, wantBodyCode: helpers.ErrCodeBadRequest},
		{name: "not visible", contextUserID: testUserID, pathID: testUserID, fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantBodyCode: helpers.ErrCodeNotFound},
		{name: "service error", contextUserID: testUserID, pathID: testUserID, fakeErr: assert.AnError, wantStatus: http.StatusInternalServerError, wantBodyCode: helpers.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{member: &domain.Member{User: &domain.User{ID: testUserID, Email: "ada@example.com"}, SpaceIDs: []string{}}, err: tt.fakeErr}
			ctrl := NewUserController(testLogger, fake)

			req := httptest.NewRequest(http.MethodGet, "http://test/users/"+tt.pathID, nil)
			req.SetPathValue("userID", tt.pathID)
			if tt.contextUserID != "" {
				req = req.WithContext(middleware.SetUserID(req.Context(), tt.contextUserID))
			}
			rr := httptest.NewRecorder()

			ctrl.Get(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var m domain.Member
			envelope := decodeEnvelope(t, rr, &m)
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				require.NotNil(t, m.User)
				assert.Equal(t, "ada@example.com", m.Email)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestUserController_Update(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodyCode   string
		wantBodySubstr string
	}{
		{name: "success update name", body: `{"first_name":"Augusta"}`, wantStatus: http.StatusOK},
		{name: "invalid json", body: `{invalid`, wantStatus: http.StatusBadRequest, wantBodyCode: helpers.ErrCodeBadRequest, wantBodySubstr: "invalid"},
		{name: "invalid email format", body: `{"email":"not-an-email"}`, wantStatus: http.StatusBadRequest, wantBodyCode: helpers.ErrCodeBadRequest, wantBodySubstr: "email"},
		{name: "duplicate email", body: `{"email":"taken@example.com"}`, fakeErr: domain.ErrDuplicateEmail, wantStatus: http.StatusConflict, wantBodyCode: helpers.ErrCodeConflict},
		{name: "someone else", body: `{"first_name":"x"}`, fakeErr: domain.ErrForbidden, wantStatus: http.StatusForbidden, wantBodyCode: helpers.ErrCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{updated: &domain.User{ID: testUserID, FirstName: "Augusta"}, err: tt.fakeErr}
			ctrl := NewUserController(testLogger, fake)

			req := authed(httptest.NewRequest(http.MethodPut, "http://test/users/"+testUserID, bytes.NewBufferString(tt.body)))
			req.SetPathValue("userID", testUserID)
			rr := httptest.NewRecorder()

			ctrl.Update(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr, nil)
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				require.NotNil(t, fake.gotPatch.FirstName)
				assert.Equal(t, "Augusta", *fake.gotPatch.FirstName)
				assert.Nil(t, fake.gotPatch.Email)
				return
			}
			require.NotNil(t, envelope.Error)
			if tt.wantBodyCode != "" {
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
			if tt.wantBodySubstr != "" {
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestUserController_Delete(t *testing.T) {
	ctrl := NewUserController(testLogger, &fakeUserService{})
	req := authed(httptest.NewRequest(http.MethodDelete, "http://test/users/"+testUserID, nil))
	req.SetPathValue("userID", testUserID)
	rr := httptest.NewRecorder()
	ctrl.Delete(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	ctrl = NewUserController(testLogger, &fakeUserService{err: domain.ErrForbidden})
	rr = httptest.NewRecorder()
	ctrl.Delete(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
